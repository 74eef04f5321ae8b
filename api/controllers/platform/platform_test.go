package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	tenantsvc "github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/internal/usage"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
	"github.com/angelmondragon/salonbook-backend/pkg/types"
)

type env struct {
	logg *logger.Logger
	repo tenantsvc.Repository
	svc  tenantsvc.Service
	gate *usage.Gate
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.ApplySQLiteSchema(context.Background(), conn))

	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	repo := tenantsvc.NewRepository(conn)
	limit := 2
	require.NoError(t, repo.UpsertPlan(context.Background(), &models.Plan{Code: enums.PlanCodeFree, Name: "Free", BasePrice: decimal.Zero, ActionLimit: &limit}))
	require.NoError(t, repo.UpsertPlan(context.Background(), &models.Plan{Code: enums.PlanCodePro, Name: "Pro", BasePrice: decimal.NewFromInt(99)}))

	svc, err := tenantsvc.NewService(repo)
	require.NoError(t, err)
	gate, err := usage.NewGate(repo, nil, logg, usage.Options{})
	require.NoError(t, err)
	return &env{logg: logg, repo: repo, svc: svc, gate: gate}
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestCreateAndGetTenant(t *testing.T) {
	e := newEnv(t)

	rec := do(t, CreateTenant(e.svc, e.logg), http.MethodPost, "/tenants",
		`{"slug":"Studio-Bella","owner_name":"Ana","email":"ana@example.com","plan":"free","mrr":"0"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created tenantsvc.TenantDTO
	decode(t, rec, &created)
	assert.Equal(t, "studio-bella", created.Slug)
	assert.True(t, created.Usage.Limited)

	rec = do(t, GetTenant(e.svc, e.logg), http.MethodGet, "/tenants/studio-bella", "", map[string]string{"tenant": "Studio-Bella"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, CreateTenant(e.svc, e.logg), http.MethodPost, "/tenants",
		`{"slug":"studio-bella","owner_name":"Ana","email":"ana@example.com","plan":"free"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, CreateTenant(e.svc, e.logg), http.MethodPost, "/tenants",
		`{"slug":"other","owner_name":"Ana","email":"not-an-email","plan":"free"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTenantAndFilters(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.CreateTenant(context.Background(), tenantsvc.CreateTenantInput{Slug: "bella", OwnerName: "Ana", Email: "a@b.c", Plan: "free"})
	require.NoError(t, err)

	rec := do(t, UpdateTenant(e.svc, e.logg), http.MethodPatch, "/tenants/bella",
		`{"plan":"pro","status":"suspended","mrr":"99"}`, map[string]string{"tenant": "bella"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated tenantsvc.TenantDTO
	decode(t, rec, &updated)
	assert.Equal(t, enums.PlanCodePro, updated.Plan)
	assert.Equal(t, enums.TenantStatusSuspended, updated.Status)
	assert.False(t, updated.Usage.Limited)

	rec = do(t, ListTenants(e.svc, e.logg), http.MethodGet, "/tenants?status=suspended", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []tenantsvc.TenantDTO
	decode(t, rec, &items)
	assert.Len(t, items, 1)

	rec = do(t, ListTenants(e.svc, e.logg), http.MethodGet, "/tenants?plan=gold", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetTenantUsage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.CreateTenant(ctx, tenantsvc.CreateTenantInput{Slug: "bella", OwnerName: "Ana", Email: "a@b.c", Plan: "free"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		allowed, err := e.gate.CheckAndConsume(ctx, "bella", enums.ActionKindAppointment)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	rec := do(t, ResetTenantUsage(e.svc, e.gate, e.logg), http.MethodPost, "/tenants/bella/reset-usage", "", map[string]string{"tenant": "bella"})
	require.Equal(t, http.StatusOK, rec.Code)
	var dto tenantsvc.TenantDTO
	decode(t, rec, &dto)
	assert.Equal(t, 0, dto.Usage.Used)
	assert.False(t, dto.Usage.Exhausted)

	rec = do(t, ResetTenantUsage(e.svc, e.gate, e.logg), http.MethodPost, "/tenants/ghost/reset-usage", "", map[string]string{"tenant": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlansLifecycle(t *testing.T) {
	e := newEnv(t)

	rec := do(t, UpsertPlan(e.svc, e.logg), http.MethodPut, "/plans/basic",
		`{"name":"Basic","base_price":"49","features":["Agenda"],"action_limit":100}`, map[string]string{"code": "basic"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, ListPlans(e.svc, e.logg), http.MethodGet, "/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plans []models.Plan
	decode(t, rec, &plans)
	assert.Len(t, plans, 3)

	_, err := e.svc.CreateTenant(context.Background(), tenantsvc.CreateTenantInput{Slug: "bella", OwnerName: "Ana", Email: "a@b.c", Plan: "basic"})
	require.NoError(t, err)

	rec = do(t, DeletePlan(e.svc, e.logg), http.MethodDelete, "/plans/basic", "", map[string]string{"code": "basic"})
	require.Equal(t, http.StatusConflict, rec.Code)
	var errEnv types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errEnv))
	assert.Equal(t, "CONFLICT", errEnv.Error.Code)

	rec = do(t, DeletePlan(e.svc, e.logg), http.MethodDelete, "/plans/pro", "", map[string]string{"code": "pro"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOverview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mrr := decimal.NewFromInt(99)
	_, err := e.svc.CreateTenant(ctx, tenantsvc.CreateTenantInput{Slug: "bella", OwnerName: "Ana", Email: "a@b.c", Plan: "pro", MRR: &mrr})
	require.NoError(t, err)
	_, err = e.svc.CreateTenant(ctx, tenantsvc.CreateTenantInput{Slug: "chic", OwnerName: "Bia", Email: "b@b.c", Plan: "free"})
	require.NoError(t, err)

	rec := do(t, Overview(e.svc, e.logg), http.MethodGet, "/overview", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview tenantsvc.Overview
	decode(t, rec, &overview)
	assert.Equal(t, 2, overview.TotalTenants)
	assert.True(t, mrr.Equal(overview.TotalMRR))
}
