package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/api/controllers/tenantcontext"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
)

// DashboardReader builds the owner's daily dashboard.
type DashboardReader interface {
	Today(ctx context.Context, tenant string) (*ledger.Dashboard, error)
	For(ctx context.Context, tenant, date string) (*ledger.Dashboard, error)
}

const maxTitleLen = 120

type transactionRequest struct {
	Title         string          `json:"title" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"money"`
	Type          string          `json:"type" validate:"required,oneof=income expense"`
	Category      string          `json:"category" validate:"required"`
	Date          string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	AppointmentID string          `json:"appointment_id"`
}

func (r transactionRequest) toInput() (ledger.RecordInput, error) {
	if !r.Amount.IsPositive() {
		return ledger.RecordInput{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	kind, err := enums.ParseTransactionType(strings.TrimSpace(r.Type))
	if err != nil {
		return ledger.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
	}
	category, err := enums.ParseTransactionCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return ledger.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction category")
	}
	return ledger.RecordInput{
		Title:         validators.SanitizeString(r.Title, maxTitleLen),
		Amount:        r.Amount,
		Type:          kind,
		Category:      category,
		Date:          r.Date,
		AppointmentID: r.AppointmentID,
	}, nil
}

func periodFromQuery(r *http.Request) (ledger.Period, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return ledger.Period{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return ledger.Period{}, err
	}
	return ledger.Period{From: from, To: to}, nil
}

// AdminRecordTransaction writes a manual ledger line. The line counts against
// the plan like any other transaction.
func AdminRecordTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Record(r.Context(), tenant, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Allowed {
			responses.WriteError(r.Context(), logg, w, responses.QuotaExceeded(tenant, enums.ActionKindTransaction))
			return
		}
		responses.WriteCreated(w, result.Transaction)
	}
}

// AdminListTransactions pages through the ledger newest first.
func AdminListTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := periodFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		result, err := svc.List(r.Context(), tenant, ledger.ListParams{
			Type:     enums.TransactionType(strings.TrimSpace(q.Get("type"))),
			Category: enums.TransactionCategory(strings.TrimSpace(q.Get("category"))),
			Period:   period,
			Limit:    limit,
			Cursor:   strings.TrimSpace(q.Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminFinanceSummary(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := periodFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), tenant, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminDashboard reports today unless ?date= picks another day.
func AdminDashboard(svc DashboardReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dashboard *ledger.Dashboard
		if date == "" {
			dashboard, err = svc.Today(r.Context(), tenant)
		} else {
			dashboard, err = svc.For(r.Context(), tenant, date)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}
