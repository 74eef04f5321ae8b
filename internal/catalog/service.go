package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// Service exposes catalog management for one tenant at a time.
type Service interface {
	ListServices(ctx context.Context, tenant string, activeOnly bool) ([]models.Service, error)
	GetService(ctx context.Context, tenant, id string) (*models.Service, error)
	CreateService(ctx context.Context, tenant string, input ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, tenant, id string, input ServiceInput) (*models.Service, error)
	DeleteService(ctx context.Context, tenant, id string) error

	ListProducts(ctx context.Context, tenant string) ([]models.Product, error)
	GetProduct(ctx context.Context, tenant, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, tenant string, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, tenant, id string, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, tenant, id string) error
	AdjustStock(ctx context.Context, tenant, id string, delta int) (*models.Product, error)
	ConsumeStock(ctx context.Context, tenant string, quantities map[string]int) error
	LowStock(ctx context.Context, tenant string, threshold int) ([]models.Product, error)

	ListEmployees(ctx context.Context, tenant string, activeOnly bool) ([]models.Employee, error)
	GetEmployee(ctx context.Context, tenant, id string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, tenant string, input EmployeeInput) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, tenant, id string, input EmployeeInput) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, tenant, id string) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ServiceInput carries the editable service fields.
type ServiceInput struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	DurationMinutes int
	Category        string
	ImageURL        string
	Active          *bool
}

func (in ServiceInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "service name is required")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if in.DurationMinutes < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must not be negative")
	}
	return nil
}

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}

// EmployeeInput carries the editable employee fields.
type EmployeeInput struct {
	Name           string
	Role           string
	PhotoURL       string
	Phone          string
	CommissionRate decimal.Decimal
	Active         *bool
}

func (in EmployeeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "employee name is required")
	}
	if in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
	}
	return nil
}

func notFound(kind string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, kind+" not found")
}

func storageErr(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func (s *service) ListServices(ctx context.Context, tenant string, activeOnly bool) ([]models.Service, error) {
	items, err := s.repo.Services.List(ctx, tenant)
	if err != nil {
		return nil, storageErr(err, "list services")
	}
	if !activeOnly {
		return items, nil
	}
	out := make([]models.Service, 0, len(items))
	for _, item := range items {
		if item.Active {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *service) GetService(ctx context.Context, tenant, id string) (*models.Service, error) {
	items, err := s.repo.Services.List(ctx, tenant)
	if err != nil {
		return nil, storageErr(err, "list services")
	}
	idx := indexOf(items, id, serviceID)
	if idx < 0 {
		return nil, notFound("service")
	}
	return &items[idx], nil
}

func (s *service) CreateService(ctx context.Context, tenant string, input ServiceInput) (*models.Service, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	created := models.Service{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Price:           input.Price,
		DurationMinutes: input.DurationMinutes,
		Category:        input.Category,
		ImageURL:        input.ImageURL,
		Active:          boolOr(input.Active, true),
	}
	if _, err := s.repo.Services.Update(ctx, tenant, func(items []models.Service) ([]models.Service, error) {
		return append(items, created), nil
	}); err != nil {
		return nil, storageErr(err, "save services")
	}
	return &created, nil
}

func (s *service) UpdateService(ctx context.Context, tenant, id string, input ServiceInput) (*models.Service, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var updated models.Service
	_, err := s.repo.Services.Update(ctx, tenant, func(items []models.Service) ([]models.Service, error) {
		idx := indexOf(items, id, serviceID)
		if idx < 0 {
			return nil, notFound("service")
		}
		current := items[idx]
		current.Name = strings.TrimSpace(input.Name)
		current.Description = input.Description
		current.Price = input.Price
		current.DurationMinutes = input.DurationMinutes
		current.Category = input.Category
		current.ImageURL = input.ImageURL
		current.Active = boolOr(input.Active, current.Active)
		items[idx] = current
		updated = current
		return items, nil
	})
	if err != nil {
		return nil, storageErr(err, "save services")
	}
	return &updated, nil
}

func (s *service) DeleteService(ctx context.Context, tenant, id string) error {
	_, err := s.repo.Services.Update(ctx, tenant, func(items []models.Service) ([]models.Service, error) {
		idx := indexOf(items, id, serviceID)
		if idx < 0 {
			return nil, notFound("service")
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return storageErr(err, "save services")
	}
	return nil
}
