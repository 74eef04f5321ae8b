package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/salonbook-backend/api/controllers/tenantcontext"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/settings"
	"github.com/angelmondragon/salonbook-backend/internal/usage"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// UsageReader reports a tenant's position against its plan.
type UsageReader interface {
	Usage(ctx context.Context, tenantSlug string) (*usage.Snapshot, error)
}

type settingsRequest struct {
	BusinessName      string   `json:"business_name" validate:"required"`
	Phone             string   `json:"phone"`
	Address           string   `json:"address"`
	Instagram         string   `json:"instagram"`
	OpeningHours      string   `json:"opening_hours"`
	TimeSlots         []string `json:"time_slots" validate:"omitempty,dive,datetime=15:04"`
	LowStockThreshold int      `json:"low_stock_threshold" validate:"gte=0"`
	Currency          string   `json:"currency" validate:"omitempty,len=3"`
}

func AdminGetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		current, err := svc.Get(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// AdminUpdateSettings replaces the settings document as a whole.
func AdminUpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), tenant, models.Settings{
			BusinessName:      payload.BusinessName,
			Phone:             payload.Phone,
			Address:           payload.Address,
			Instagram:         payload.Instagram,
			OpeningHours:      payload.OpeningHours,
			TimeSlots:         payload.TimeSlots,
			LowStockThreshold: payload.LowStockThreshold,
			Currency:          payload.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func AdminUsage(gate UsageReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "usage service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot, err := gate.Usage(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
