package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

const (
	Document = "settings"

	DefaultLowStockThreshold = 5
	DefaultCurrency          = "BRL"
)

// DefaultTimeSlots is 09:00 through 18:00 every 30 minutes.
func DefaultTimeSlots() []string {
	slots := make([]string, 0, 19)
	start := time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2000, 1, 1, 18, 0, 0, 0, time.UTC)
	for t := start; !t.After(end); t = t.Add(30 * time.Minute) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots
}

// Defaults returns the settings used before the owner saves anything.
func Defaults(tenant string) models.Settings {
	return models.Settings{
		BusinessName:      tenant,
		TimeSlots:         DefaultTimeSlots(),
		LowStockThreshold: DefaultLowStockThreshold,
		Currency:          DefaultCurrency,
	}
}

// ValidSlot reports whether value is a zero padded HH:MM time.
func ValidSlot(value string) bool {
	if len(value) != 5 {
		return false
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

type Service interface {
	Get(ctx context.Context, tenant string) (models.Settings, error)
	Update(ctx context.Context, tenant string, next models.Settings) (models.Settings, error)
	HasSlot(ctx context.Context, tenant, slot string) (bool, error)
}

type service struct {
	doc *collections.Document[models.Settings]
}

func NewService(store collections.Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	return &service{doc: collections.NewDocument[models.Settings](store, Document)}, nil
}

// Get returns the stored settings with defaults filled in for empty fields.
func (s *service) Get(ctx context.Context, tenant string) (models.Settings, error) {
	stored, ok, err := s.doc.Get(ctx, tenant)
	if err != nil {
		return models.Settings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	if !ok {
		return Defaults(tenant), nil
	}
	return withDefaults(tenant, stored), nil
}

// Update replaces the settings document. Time slots are deduplicated and sorted.
func (s *service) Update(ctx context.Context, tenant string, next models.Settings) (models.Settings, error) {
	next.BusinessName = strings.TrimSpace(next.BusinessName)
	if next.LowStockThreshold < 0 {
		return models.Settings{}, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must not be negative")
	}
	if next.Currency != "" && len(next.Currency) != 3 {
		return models.Settings{}, pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3 letter code")
	}
	next.Currency = strings.ToUpper(next.Currency)

	seen := make(map[string]struct{}, len(next.TimeSlots))
	slots := make([]string, 0, len(next.TimeSlots))
	for _, slot := range next.TimeSlots {
		slot = strings.TrimSpace(slot)
		if !ValidSlot(slot) {
			return models.Settings{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid time slot %q", slot))
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	next.TimeSlots = slots

	next = withDefaults(tenant, next)
	if err := s.doc.Put(ctx, tenant, next); err != nil {
		return models.Settings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return next, nil
}

func (s *service) HasSlot(ctx context.Context, tenant, slot string) (bool, error) {
	current, err := s.Get(ctx, tenant)
	if err != nil {
		return false, err
	}
	for _, candidate := range current.TimeSlots {
		if candidate == slot {
			return true, nil
		}
	}
	return false, nil
}

func withDefaults(tenant string, in models.Settings) models.Settings {
	if in.BusinessName == "" {
		in.BusinessName = tenant
	}
	if len(in.TimeSlots) == 0 {
		in.TimeSlots = DefaultTimeSlots()
	}
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	return in
}
