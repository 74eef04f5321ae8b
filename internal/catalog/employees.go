package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

func (s *service) ListEmployees(ctx context.Context, tenant string, activeOnly bool) ([]models.Employee, error) {
	items, err := s.repo.Employees.List(ctx, tenant)
	if err != nil {
		return nil, storageErr(err, "list employees")
	}
	if !activeOnly {
		return items, nil
	}
	out := make([]models.Employee, 0, len(items))
	for _, item := range items {
		if item.Active {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *service) GetEmployee(ctx context.Context, tenant, id string) (*models.Employee, error) {
	items, err := s.repo.Employees.List(ctx, tenant)
	if err != nil {
		return nil, storageErr(err, "list employees")
	}
	idx := indexOf(items, id, employeeID)
	if idx < 0 {
		return nil, notFound("employee")
	}
	return &items[idx], nil
}

func (s *service) CreateEmployee(ctx context.Context, tenant string, input EmployeeInput) (*models.Employee, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	created := models.Employee{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(input.Name),
		Role:           input.Role,
		PhotoURL:       input.PhotoURL,
		Phone:          input.Phone,
		CommissionRate: input.CommissionRate,
		Active:         boolOr(input.Active, true),
	}
	if _, err := s.repo.Employees.Update(ctx, tenant, func(items []models.Employee) ([]models.Employee, error) {
		return append(items, created), nil
	}); err != nil {
		return nil, storageErr(err, "save employees")
	}
	return &created, nil
}

func (s *service) UpdateEmployee(ctx context.Context, tenant, id string, input EmployeeInput) (*models.Employee, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var updated models.Employee
	_, err := s.repo.Employees.Update(ctx, tenant, func(items []models.Employee) ([]models.Employee, error) {
		idx := indexOf(items, id, employeeID)
		if idx < 0 {
			return nil, notFound("employee")
		}
		current := items[idx]
		current.Name = strings.TrimSpace(input.Name)
		current.Role = input.Role
		current.PhotoURL = input.PhotoURL
		current.Phone = input.Phone
		current.CommissionRate = input.CommissionRate
		current.Active = boolOr(input.Active, current.Active)
		items[idx] = current
		updated = current
		return items, nil
	})
	if err != nil {
		return nil, storageErr(err, "save employees")
	}
	return &updated, nil
}

func (s *service) DeleteEmployee(ctx context.Context, tenant, id string) error {
	_, err := s.repo.Employees.Update(ctx, tenant, func(items []models.Employee) ([]models.Employee, error) {
		idx := indexOf(items, id, employeeID)
		if idx < 0 {
			return nil, notFound("employee")
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return storageErr(err, "save employees")
	}
	return nil
}
