package platform

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	tenantsvc "github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// UsageResetter zeroes a tenant's metered action counter.
type UsageResetter interface {
	Reset(ctx context.Context, tenantSlug string) error
}

type createTenantRequest struct {
	Slug      string           `json:"slug" validate:"required"`
	OwnerName string           `json:"owner_name" validate:"required"`
	Email     string           `json:"email" validate:"required,email"`
	Plan      string           `json:"plan" validate:"required"`
	Status    string           `json:"status,omitempty"`
	MRR       *decimal.Decimal `json:"mrr,omitempty" validate:"omitempty,money"`
	City      string           `json:"city,omitempty"`
	State     string           `json:"state,omitempty"`
}

type updateTenantRequest struct {
	OwnerName *string          `json:"owner_name,omitempty"`
	Email     *string          `json:"email,omitempty" validate:"omitempty,email"`
	Plan      *string          `json:"plan,omitempty"`
	Status    *string          `json:"status,omitempty"`
	MRR       *decimal.Decimal `json:"mrr,omitempty" validate:"omitempty,money"`
	City      *string          `json:"city,omitempty"`
	State     *string          `json:"state,omitempty"`
}

func tenantSlug(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "tenant")))
}

func ListTenants(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}

		var query tenantsvc.ListTenantsQuery
		if raw := strings.TrimSpace(r.URL.Query().Get("plan")); raw != "" {
			plan, err := enums.ParsePlanCode(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan"))
				return
			}
			query.Plan = &plan
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseTenantStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			query.Status = &status
		}

		items, err := svc.ListTenants(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GetTenant(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}
		tenant, err := svc.GetTenant(r.Context(), tenantSlug(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

func CreateTenant(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}

		var payload createTenantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tenant, err := svc.CreateTenant(r.Context(), tenantsvc.CreateTenantInput{
			Slug:      payload.Slug,
			OwnerName: payload.OwnerName,
			Email:     payload.Email,
			Plan:      payload.Plan,
			Status:    payload.Status,
			MRR:       payload.MRR,
			City:      payload.City,
			State:     payload.State,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithTenant(r.Context(), tenant.Slug), "platform.tenant_created")
		}
		responses.WriteCreated(w, tenant)
	}
}

// UpdateTenant changes only the fields present in the body.
func UpdateTenant(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}

		var payload updateTenantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tenant, err := svc.UpdateTenant(r.Context(), tenantSlug(r), tenantsvc.UpdateTenantInput{
			OwnerName: payload.OwnerName,
			Email:     payload.Email,
			Plan:      payload.Plan,
			Status:    payload.Status,
			MRR:       payload.MRR,
			City:      payload.City,
			State:     payload.State,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

// ResetTenantUsage zeroes the counter and returns the refreshed tenant.
func ResetTenantUsage(svc tenantsvc.Service, gate UsageResetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}
		slug := tenantSlug(r)
		if err := gate.Reset(r.Context(), slug); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tenant, err := svc.GetTenant(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tenant)
	}
}

func Overview(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant service unavailable"))
			return
		}
		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
