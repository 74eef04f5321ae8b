package clients

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

const Collection = "clients"

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone keeps only digits so lookups are exact on the number itself.
func NormalizePhone(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// ValidBirthDate reports whether value is empty or a YYYY-MM-DD date in the past.
func ValidBirthDate(value string, now time.Time) bool {
	if value == "" {
		return true
	}
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return false
	}
	return !parsed.After(now)
}

// Service manages the per-tenant client book.
type Service interface {
	List(ctx context.Context, tenant string) ([]models.Client, error)
	FindByPhone(ctx context.Context, tenant, phone string) (*models.Client, error)
	Upsert(ctx context.Context, tenant string, client models.Client) (*models.Client, error)
}

type service struct {
	clients *collections.Collection[models.Client]
	now     func() time.Time
}

func NewService(store collections.Store, locks *collections.Locks) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	return &service{
		clients: collections.NewCollection[models.Client](store, Collection, locks),
		now:     time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, tenant string) ([]models.Client, error) {
	items, err := s.clients.List(ctx, tenant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

// FindByPhone returns nil when no client matches the normalised phone exactly.
func (s *service) FindByPhone(ctx context.Context, tenant, phone string) (*models.Client, error) {
	key := NormalizePhone(phone)
	if key == "" {
		return nil, nil
	}
	items, err := s.clients.List(ctx, tenant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	for i := range items {
		if items[i].Phone == key {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Upsert inserts or replaces the client keyed by phone. The latest write wins
// for every field except the creation time.
func (s *service) Upsert(ctx context.Context, tenant string, client models.Client) (*models.Client, error) {
	client.Phone = NormalizePhone(client.Phone)
	client.Name = strings.TrimSpace(client.Name)
	if client.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if client.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !ValidBirthDate(client.BirthDate, s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "birth date must be YYYY-MM-DD and not in the future")
	}

	var saved models.Client
	_, err := s.clients.Update(ctx, tenant, func(items []models.Client) ([]models.Client, error) {
		for i := range items {
			if items[i].Phone == client.Phone {
				client.CreatedAt = items[i].CreatedAt
				items[i] = client
				saved = client
				return items, nil
			}
		}
		client.CreatedAt = s.now().UTC()
		saved = client
		return append(items, client), nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save clients")
	}
	return &saved, nil
}
