package controllers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/internal/usage"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

func TestAdminRecordTransaction(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, AdminRecordTransaction(f.ledger, f.logg), http.MethodPost, "/transactions",
		`{"title":"Aluguel","amount":"1200","type":"expense","category":"rent","date":"2099-01-05"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var tx models.Transaction
	decodeData(t, rec, &tx)
	assert.Equal(t, enums.TransactionTypeExpense, tx.Type)
	assert.True(t, decimal.NewFromInt(1200).Equal(tx.Amount))
	assert.Equal(t, []enums.ActionKind{enums.ActionKindTransaction}, f.gate.calls)
}

func TestAdminRecordTransactionQuotaExceeded(t *testing.T) {
	f := newFixture(t)
	f.gate.allowed = false

	rec := serve(t, AdminRecordTransaction(f.ledger, f.logg), http.MethodPost, "/transactions",
		`{"title":"Venda","amount":"30","type":"income","category":"product_sale"}`, nil)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "QUOTA_EXCEEDED", apiErr.Code)
	details, ok := apiErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, details["upgrade_required"])
	assert.Equal(t, "transaction", details["action"])

	listed, err := f.ledger.List(context.Background(), testTenant, ledger.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, listed.Items)
}

func TestAdminRecordTransactionRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	cases := []string{
		`{"title":"X","amount":"10","type":"gift","category":"rent"}`,
		`{"title":"X","amount":"10","type":"income","category":"lottery"}`,
		`{"title":"X","amount":"0","type":"income","category":"other"}`,
		`{"title":"X","amount":"0","type":"income","category":"other","appointment_id":"appt-1"}`,
		`{"amount":"10","type":"income","category":"other"}`,
	}
	for _, body := range cases {
		rec := serve(t, AdminRecordTransaction(f.ledger, f.logg), http.MethodPost, "/transactions", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, f.gate.calls)
}

func TestAdminListTransactionsPages(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.ledger.Record(context.Background(), testTenant, ledger.RecordInput{
			Title:    fmt.Sprintf("Venda %d", i),
			Amount:   decimal.NewFromInt(10),
			Type:     enums.TransactionTypeIncome,
			Category: enums.TransactionCategoryProductSale,
			Date:     "2099-01-05",
		})
		require.NoError(t, err)
	}

	rec := serve(t, AdminListTransactions(f.ledger, f.logg), http.MethodGet, "/transactions?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page ledger.ListResult
	decodeData(t, rec, &page)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.Cursor)

	rec = serve(t, AdminListTransactions(f.ledger, f.logg), http.MethodGet, "/transactions?limit=2&cursor="+page.Cursor, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var next ledger.ListResult
	decodeData(t, rec, &next)
	assert.Len(t, next.Items, 1)
	assert.Empty(t, next.Cursor)

	rec = serve(t, AdminListTransactions(f.ledger, f.logg), http.MethodGet, "/transactions?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminFinanceSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Record(ctx, testTenant, ledger.RecordInput{Title: "Corte", Amount: decimal.NewFromInt(100), Type: enums.TransactionTypeIncome, Category: enums.TransactionCategoryService, Date: "2099-01-05"})
	require.NoError(t, err)
	_, err = f.ledger.Record(ctx, testTenant, ledger.RecordInput{Title: "Luz", Amount: decimal.NewFromInt(40), Type: enums.TransactionTypeExpense, Category: enums.TransactionCategoryUtilities, Date: "2099-01-06"})
	require.NoError(t, err)

	rec := serve(t, AdminFinanceSummary(f.ledger, f.logg), http.MethodGet, "/summary?from=2099-01-01&to=2099-01-31", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary ledger.Summary
	decodeData(t, rec, &summary)
	assert.True(t, decimal.NewFromInt(60).Equal(summary.Balance))
	assert.Equal(t, 2, summary.Count)

	rec = serve(t, AdminFinanceSummary(f.ledger, f.logg), http.MethodGet, "/summary?from=2099-02-01&to=2099-01-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminDashboardForDate(t *testing.T) {
	f := newFixture(t)
	seedAppointment(t, f, "11999990000")
	dash, err := ledger.NewDashboardService(f.appointments, f.ledger, nil)
	require.NoError(t, err)

	rec := serve(t, AdminDashboard(dash, f.logg), http.MethodGet, "/dashboard?date=2099-01-10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body ledger.Dashboard
	decodeData(t, rec, &body)
	assert.Equal(t, 1, body.AppointmentsToday)
	assert.Equal(t, 1, body.ScheduledToday)

	rec = serve(t, AdminDashboard(dash, f.logg), http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type stubUsage struct {
	snapshot *usage.Snapshot
}

func (s stubUsage) Usage(context.Context, string) (*usage.Snapshot, error) {
	return s.snapshot, nil
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, AdminGetSettings(f.settings, f.logg), http.MethodGet, "/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current models.Settings
	decodeData(t, rec, &current)
	assert.Equal(t, testTenant, current.BusinessName)
	assert.Equal(t, 5, current.LowStockThreshold)

	rec = serve(t, AdminUpdateSettings(f.settings, f.logg), http.MethodPut, "/settings",
		`{"business_name":"Studio Bella","time_slots":["14:00","09:00","09:00"],"low_stock_threshold":3,"currency":"brl"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Settings
	decodeData(t, rec, &updated)
	assert.Equal(t, []string{"09:00", "14:00"}, updated.TimeSlots)
	assert.Equal(t, "BRL", updated.Currency)

	rec = serve(t, AdminUpdateSettings(f.settings, f.logg), http.MethodPut, "/settings",
		`{"business_name":"Studio Bella","time_slots":["25:00"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUsage(t *testing.T) {
	f := newFixture(t)
	limit := 10
	rec := serve(t, AdminUsage(stubUsage{snapshot: &usage.Snapshot{Tenant: testTenant, Plan: "free", Limited: true, Used: 4, Limit: &limit}}, f.logg), http.MethodGet, "/usage", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap usage.Snapshot
	decodeData(t, rec, &snap)
	assert.Equal(t, 4, snap.Used)
	require.NotNil(t, snap.Limit)
	assert.Equal(t, 10, *snap.Limit)
}
