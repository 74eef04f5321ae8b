package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/internal/catalog"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

func boolPtr(v bool) *bool { return &v }

func TestPublicCatalogListsOnlyActiveItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateService(ctx, testTenant, catalog.ServiceInput{Name: "Corte", Price: decimal.NewFromInt(50), DurationMinutes: 45})
	require.NoError(t, err)
	_, err = f.catalog.CreateService(ctx, testTenant, catalog.ServiceInput{Name: "Luzes", Price: decimal.NewFromInt(200), Active: boolPtr(false)})
	require.NoError(t, err)
	_, err = f.catalog.CreateEmployee(ctx, testTenant, catalog.EmployeeInput{Name: "Carla"})
	require.NoError(t, err)
	_, err = f.catalog.CreateProduct(ctx, testTenant, catalog.ProductInput{Name: "Shampoo", Price: decimal.NewFromInt(20), Stock: 2})
	require.NoError(t, err)
	_, err = f.catalog.CreateProduct(ctx, testTenant, catalog.ProductInput{Name: "Mascara", Price: decimal.NewFromInt(35), Stock: 40})
	require.NoError(t, err)

	rec := serve(t, PublicCatalog(f.catalog, f.settings, f.logg), http.MethodGet, "/catalog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Business  businessInfo      `json:"business"`
		Services  []models.Service  `json:"services"`
		Employees []models.Employee `json:"employees"`
		Products  []struct {
			Name     string `json:"name"`
			LowStock bool   `json:"low_stock"`
		} `json:"products"`
		TimeSlots []string `json:"time_slots"`
	}
	decodeData(t, rec, &body)

	require.Len(t, body.Services, 1)
	assert.Equal(t, "Corte", body.Services[0].Name)
	require.Len(t, body.Employees, 1)
	assert.Equal(t, testTenant, body.Business.Name)
	assert.NotEmpty(t, body.TimeSlots)
	require.Len(t, body.Products, 2)
	lowStock := map[string]bool{}
	for _, p := range body.Products {
		lowStock[p.Name] = p.LowStock
	}
	assert.True(t, lowStock["Shampoo"])
	assert.False(t, lowStock["Mascara"])
}

func TestPublicCatalogRequiresTenant(t *testing.T) {
	f := newFixture(t)
	req, rec := newUnscopedRequest(http.MethodGet, "/catalog")
	PublicCatalog(f.catalog, f.settings, f.logg).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminServiceCRUD(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, AdminCreateService(f.catalog, f.logg), http.MethodPost, "/services",
		`{"name":"Escova","price":"40.50","duration_minutes":30}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Service
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.True(t, decimal.RequireFromString("40.50").Equal(created.Price))

	rec = serve(t, AdminUpdateService(f.catalog, f.logg), http.MethodPut, "/services/"+created.ID,
		`{"name":"Escova longa","price":55,"duration_minutes":50,"active":false}`, map[string]string{"serviceId": created.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Service
	decodeData(t, rec, &updated)
	assert.Equal(t, "Escova longa", updated.Name)
	assert.False(t, updated.Active)

	rec = serve(t, AdminDeleteService(f.catalog, f.logg), http.MethodDelete, "/services/"+created.ID, "", map[string]string{"serviceId": created.ID})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, AdminGetService(f.catalog, f.logg), http.MethodGet, "/services/"+created.ID, "", map[string]string{"serviceId": created.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCreateServiceValidation(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, AdminCreateService(f.catalog, f.logg), http.MethodPost, "/services", `{"price":10}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	rec = serve(t, AdminCreateService(f.catalog, f.logg), http.MethodPost, "/services", `{"name":"Corte","unknown":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminStockAdjustAndLowStock(t *testing.T) {
	f := newFixture(t)
	product, err := f.catalog.CreateProduct(context.Background(), testTenant, catalog.ProductInput{Name: "Gel", Price: decimal.NewFromInt(15), Stock: 10})
	require.NoError(t, err)

	rec := serve(t, AdminAdjustStock(f.catalog, f.logg), http.MethodPost, "/products/"+product.ID+"/stock",
		`{"delta":-8}`, map[string]string{"productId": product.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	var adjusted models.Product
	decodeData(t, rec, &adjusted)
	assert.Equal(t, 2, adjusted.Stock)

	rec = serve(t, AdminLowStock(f.catalog, f.settings, f.logg), http.MethodGet, "/products/low-stock", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var low struct {
		Threshold int              `json:"threshold"`
		Items     []models.Product `json:"items"`
	}
	decodeData(t, rec, &low)
	assert.Equal(t, 5, low.Threshold)
	require.Len(t, low.Items, 1)

	rec = serve(t, AdminLowStock(f.catalog, f.settings, f.logg), http.MethodGet, "/products/low-stock?threshold=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &low)
	assert.Empty(t, low.Items)
}

func TestAdminEmployeesCRUD(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, AdminCreateEmployee(f.catalog, f.logg), http.MethodPost, "/employees",
		`{"name":"Carla","role":"Cabeleireira","commission_rate":"0.4"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Employee
	decodeData(t, rec, &created)

	rec = serve(t, AdminListEmployees(f.catalog, f.logg), http.MethodGet, "/employees", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Employee
	decodeData(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
}

func TestCatalogHandlersWithoutService(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	rec := serve(t, AdminListProducts(nil, logg), http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
