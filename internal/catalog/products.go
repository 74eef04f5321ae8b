package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

func (s *service) ListProducts(ctx context.Context, tenant string) ([]models.Product, error) {
	items, err := s.repo.Products.List(ctx, tenant)
	if err != nil {
		return nil, storageErr(err, "list products")
	}
	return items, nil
}

func (s *service) GetProduct(ctx context.Context, tenant, id string) (*models.Product, error) {
	items, err := s.repo.Products.List(ctx, tenant)
	if err != nil {
		return nil, storageErr(err, "list products")
	}
	idx := indexOf(items, id, productID)
	if idx < 0 {
		return nil, notFound("product")
	}
	return &items[idx], nil
}

func (s *service) CreateProduct(ctx context.Context, tenant string, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	created := models.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
	}
	if _, err := s.repo.Products.Update(ctx, tenant, func(items []models.Product) ([]models.Product, error) {
		return append(items, created), nil
	}); err != nil {
		return nil, storageErr(err, "save products")
	}
	return &created, nil
}

func (s *service) UpdateProduct(ctx context.Context, tenant, id string, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var updated models.Product
	_, err := s.repo.Products.Update(ctx, tenant, func(items []models.Product) ([]models.Product, error) {
		idx := indexOf(items, id, productID)
		if idx < 0 {
			return nil, notFound("product")
		}
		current := items[idx]
		current.Name = strings.TrimSpace(input.Name)
		current.Description = input.Description
		current.Price = input.Price
		current.Stock = input.Stock
		current.Category = input.Category
		current.ImageURL = input.ImageURL
		items[idx] = current
		updated = current
		return items, nil
	})
	if err != nil {
		return nil, storageErr(err, "save products")
	}
	return &updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, tenant, id string) error {
	_, err := s.repo.Products.Update(ctx, tenant, func(items []models.Product) ([]models.Product, error) {
		idx := indexOf(items, id, productID)
		if idx < 0 {
			return nil, notFound("product")
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return storageErr(err, "save products")
	}
	return nil
}

// AdjustStock applies a manual stock correction.
func (s *service) AdjustStock(ctx context.Context, tenant, id string, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}
	var updated models.Product
	_, err := s.repo.Products.Update(ctx, tenant, func(items []models.Product) ([]models.Product, error) {
		idx := indexOf(items, id, productID)
		if idx < 0 {
			return nil, notFound("product")
		}
		items[idx].Stock += delta
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, storageErr(err, "save products")
	}
	return &updated, nil
}

// ConsumeStock decrements stock for sold units. Unknown ids are skipped and
// stock may go negative.
func (s *service) ConsumeStock(ctx context.Context, tenant string, quantities map[string]int) error {
	if len(quantities) == 0 {
		return nil
	}
	_, err := s.repo.Products.Update(ctx, tenant, func(items []models.Product) ([]models.Product, error) {
		for i := range items {
			if qty, ok := quantities[items[i].ID]; ok && qty > 0 {
				items[i].Stock -= qty
			}
		}
		return items, nil
	})
	if err != nil {
		return storageErr(err, "save products")
	}
	return nil
}

// LowStock lists products at or below threshold.
func (s *service) LowStock(ctx context.Context, tenant string, threshold int) ([]models.Product, error) {
	items, err := s.ListProducts(ctx, tenant)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, item := range items {
		if item.Stock <= threshold {
			out = append(out, item)
		}
	}
	return out, nil
}
