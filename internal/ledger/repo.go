package ledger

import (
	"context"

	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

const Collection = "transactions"

// Repository persists the append-only transaction list of each tenant.
type Repository interface {
	Append(ctx context.Context, tenant string, tx models.Transaction) error
	List(ctx context.Context, tenant string) ([]models.Transaction, error)
}

type repository struct {
	items *collections.Collection[models.Transaction]
}

// NewRepository returns a ledger repository backed by the collection store.
func NewRepository(store collections.Store, locks *collections.Locks) Repository {
	return &repository{items: collections.NewCollection[models.Transaction](store, Collection, locks)}
}

func (r *repository) Append(ctx context.Context, tenant string, tx models.Transaction) error {
	_, err := r.items.Update(ctx, tenant, func(items []models.Transaction) ([]models.Transaction, error) {
		return append(items, tx), nil
	})
	return err
}

func (r *repository) List(ctx context.Context, tenant string) ([]models.Transaction, error) {
	return r.items.List(ctx, tenant)
}
