package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salonbook-backend/api/controllers/tenantcontext"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	checkoutsvc "github.com/angelmondragon/salonbook-backend/internal/checkout"
	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/pkg/checkout"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type clientCancelRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type checkoutRequest struct {
	Items []checkout.Line `json:"items" validate:"omitempty,dive"`
}

func appointmentsHandler(svc appointments.Service, logg *logger.Logger, fn func(w http.ResponseWriter, r *http.Request, tenant string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fn(w, r, tenant)
	}
}

// PublicMyAppointments lists a client's appointments by the phone they booked with.
func PublicMyAppointments(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentsHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		phone := clients.NormalizePhone(r.URL.Query().Get("phone"))
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is required"))
			return
		}
		items, err := svc.List(r.Context(), tenant, appointments.ListQuery{ClientPhone: phone})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	})
}

// PublicCancelAppointment lets a client cancel their own scheduled appointment.
func PublicCancelAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentsHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload clientCancelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appt, err := svc.Cancel(r.Context(), tenant, chi.URLParam(r, "appointmentId"), appointments.CancelRequest{
			By:    enums.CancelledByClient,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	})
}

func AdminListAppointments(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentsHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := appointments.ListQuery{
			Date:        date,
			EmployeeID:  strings.TrimSpace(r.URL.Query().Get("employee_id")),
			ClientPhone: clients.NormalizePhone(r.URL.Query().Get("phone")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAppointmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			query.Status = status
		}
		items, err := svc.List(r.Context(), tenant, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	})
}

func AdminGetAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentsHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		appt, err := svc.Get(r.Context(), tenant, chi.URLParam(r, "appointmentId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	})
}

func AdminCancelAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return appointmentsHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		appt, err := svc.Cancel(r.Context(), tenant, chi.URLParam(r, "appointmentId"), appointments.CancelRequest{
			By: enums.CancelledByAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	})
}

// AdminCheckoutAppointment completes a scheduled appointment with the products
// sold at the counter. A plan denial on the income line is not an error: the
// result carries income_recorded=false.
func AdminCheckoutAppointment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		tenant, err := tenantcontext.ResolveTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Finalize(r.Context(), tenant, chi.URLParam(r, "appointmentId"), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
