package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salonbook-backend/api/controllers/tenantcontext"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type clientRequest struct {
	Phone     string `json:"phone" validate:"required"`
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type clientDetail struct {
	models.Client
	Appointments []models.Appointment `json:"appointments"`
}

func AdminListClients(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminGetClient returns the client behind a phone number together with their
// appointment history.
func AdminGetClient(svc clients.Service, appts appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || appts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phone := clients.NormalizePhone(chi.URLParam(r, "phone"))
		client, err := svc.FindByPhone(r.Context(), tenant, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "client not found"))
			return
		}
		history, err := appts.List(r.Context(), tenant, appointments.ListQuery{ClientPhone: phone})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, clientDetail{Client: *client, Appointments: history})
	}
}

// AdminUpsertClient creates or replaces a client keyed by phone.
func AdminUpsertClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "client service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.Upsert(r.Context(), tenant, models.Client{
			Phone:     payload.Phone,
			Name:      payload.Name,
			BirthDate: payload.BirthDate,
			Email:     payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}
