package catalog

import (
	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

const (
	CollectionServices  = "services"
	CollectionProducts  = "products"
	CollectionEmployees = "employees"
)

// Repository groups the tenant scoped catalog collections.
type Repository struct {
	Services  *collections.Collection[models.Service]
	Products  *collections.Collection[models.Product]
	Employees *collections.Collection[models.Employee]
}

func NewRepository(store collections.Store, locks *collections.Locks) *Repository {
	return &Repository{
		Services:  collections.NewCollection[models.Service](store, CollectionServices, locks),
		Products:  collections.NewCollection[models.Product](store, CollectionProducts, locks),
		Employees: collections.NewCollection[models.Employee](store, CollectionEmployees, locks),
	}
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func serviceID(s models.Service) string   { return s.ID }
func productID(p models.Product) string   { return p.ID }
func employeeID(e models.Employee) string { return e.ID }
