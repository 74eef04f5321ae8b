package controllers

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
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/api/middleware"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/salonbook-backend/internal/checkout"
	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/internal/settings"
	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
	"github.com/angelmondragon/salonbook-backend/pkg/types"
)

const testTenant = "studio-bella"

type stubGate struct {
	allowed bool
	calls   []enums.ActionKind
}

func (g *stubGate) CheckAndConsume(_ context.Context, _ string, kind enums.ActionKind) (bool, error) {
	g.calls = append(g.calls, kind)
	return g.allowed, nil
}

type fixture struct {
	logg         *logger.Logger
	gate         *stubGate
	catalog      catalog.Service
	settings     settings.Service
	appointments appointments.Service
	clients      clients.Service
	ledger       ledger.Service
	checkout     checkoutsvc.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.ApplySQLiteSchema(context.Background(), conn))

	store := collections.NewGormStore(conn)
	locks := collections.NewLocks()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	f := &fixture{logg: logg, gate: &stubGate{allowed: true}}
	f.catalog, err = catalog.NewService(catalog.NewRepository(store, locks))
	require.NoError(t, err)
	f.settings, err = settings.NewService(store)
	require.NoError(t, err)
	f.appointments, err = appointments.NewService(store, locks)
	require.NoError(t, err)
	f.clients, err = clients.NewService(store, locks)
	require.NoError(t, err)
	f.ledger, err = ledger.NewService(ledger.NewRepository(store, locks), f.gate, nil, nil)
	require.NoError(t, err)
	f.checkout, err = checkoutsvc.NewService(f.appointments, f.catalog, f.ledger, logg)
	require.NoError(t, err)
	return f
}

// serve runs h with the tenant already resolved and the given chi URL params.
func serve(t *testing.T, h http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
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
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = middleware.WithTenant(ctx, testTenant)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func newUnscopedRequest(method, target string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chi.NewRouteContext())), httptest.NewRecorder()
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}
