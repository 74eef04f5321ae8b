package platform

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	tenantsvc "github.com/angelmondragon/salonbook-backend/internal/tenants"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type planRequest struct {
	Name         string          `json:"name" validate:"required"`
	BasePrice    decimal.Decimal `json:"base_price" validate:"money"`
	PricePerUser decimal.Decimal `json:"price_per_user" validate:"money"`
	MinUsers     int             `json:"min_users" validate:"gte=0"`
	Features     []string        `json:"features"`
	Recommended  bool            `json:"recommended"`
	ActionLimit  *int            `json:"action_limit,omitempty" validate:"omitempty,gte=0"`
}

func ListPlans(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}
		plans, err := svc.ListPlans(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plans)
	}
}

// UpsertPlan creates or replaces the plan addressed by {code}.
func UpsertPlan(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		var payload planRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.UpsertPlan(r.Context(), tenantsvc.PlanInput{
			Code:         chi.URLParam(r, "code"),
			Name:         payload.Name,
			BasePrice:    payload.BasePrice,
			PricePerUser: payload.PricePerUser,
			MinUsers:     payload.MinUsers,
			Features:     payload.Features,
			Recommended:  payload.Recommended,
			ActionLimit:  payload.ActionLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

func DeletePlan(svc tenantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}
		if err := svc.DeletePlan(r.Context(), chi.URLParam(r, "code")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
