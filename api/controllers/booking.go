package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salonbook-backend/api/controllers/tenantcontext"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/booking"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// BookingFlow is the client booking surface driven over HTTP.
type BookingFlow interface {
	Start(ctx context.Context, tenant, serviceID string) (*booking.Draft, error)
	Get(ctx context.Context, tenant, draftID string) (*booking.Draft, error)
	SelectProfessional(ctx context.Context, tenant, draftID, employeeID string) (*booking.Draft, error)
	Schedule(ctx context.Context, tenant, draftID, date, at string) (*booking.Draft, error)
	Continue(ctx context.Context, tenant, draftID string) (*booking.Draft, error)
	ViewProducts(ctx context.Context, tenant, draftID string) (*booking.Draft, error)
	SkipProducts(ctx context.Context, tenant, draftID string) (*booking.Draft, error)
	Back(ctx context.Context, tenant, draftID string) (*booking.Draft, error)
	Increment(ctx context.Context, tenant, draftID, productID string) (*booking.Draft, error)
	Decrement(ctx context.Context, tenant, draftID, productID string) (*booking.Draft, error)
	SetPhone(ctx context.Context, tenant, draftID, phone string) (*booking.Draft, error)
	SetName(ctx context.Context, tenant, draftID, name string) (*booking.Draft, error)
	SetBirthDate(ctx context.Context, tenant, draftID, birthDate string) (*booking.Draft, error)
	Confirm(ctx context.Context, tenant, draftID string) (*booking.ConfirmResult, error)
	Done(ctx context.Context, tenant, draftID string) error
	Abandon(ctx context.Context, tenant, draftID string) error
}

const maxClientNameLen = 80

type startBookingRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
}

type professionalRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
}

type scheduleRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}

// bookingDetailsRequest applies whichever identity fields are present, phone
// first so a known client can be recognised before name and birth date.
type bookingDetailsRequest struct {
	Phone     *string `json:"phone,omitempty"`
	Name      *string `json:"name,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

func bookingHandler(flow BookingFlow, logg *logger.Logger, fn func(w http.ResponseWriter, r *http.Request, tenant string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if flow == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
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

// draftStep adapts the single-argument flow transitions.
func draftStep(flow BookingFlow, logg *logger.Logger, step func(ctx context.Context, tenant, draftID string) (*booking.Draft, error)) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		draft, err := step(r.Context(), tenant, chi.URLParam(r, "draftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	})
}

func StartBooking(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload startBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, err := flow.Start(r.Context(), tenant, payload.ServiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, draft)
	})
}

func GetBooking(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	if flow == nil {
		return draftStep(nil, logg, nil)
	}
	return draftStep(flow, logg, flow.Get)
}

func SelectBookingProfessional(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload professionalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, err := flow.SelectProfessional(r.Context(), tenant, chi.URLParam(r, "draftId"), payload.EmployeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	})
}

func ScheduleBooking(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload scheduleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, err := flow.Schedule(r.Context(), tenant, chi.URLParam(r, "draftId"), payload.Date, payload.Time)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	})
}

// BookingTransition serves the body-less step actions: continue, view or
// skip products, and back.
func BookingTransition(flow BookingFlow, logg *logger.Logger, action string) http.HandlerFunc {
	if flow == nil {
		return draftStep(nil, logg, nil)
	}
	steps := map[string]func(ctx context.Context, tenant, draftID string) (*booking.Draft, error){
		"continue":      flow.Continue,
		"view-products": flow.ViewProducts,
		"skip-products": flow.SkipProducts,
		"back":          flow.Back,
	}
	step, ok := steps[action]
	if !ok {
		panic("unknown booking transition " + action)
	}
	return draftStep(flow, logg, step)
}

// BookingCartChange increments or decrements one product line.
func BookingCartChange(flow BookingFlow, logg *logger.Logger, increment bool) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		draftID := chi.URLParam(r, "draftId")
		productID := chi.URLParam(r, "productId")
		change := flow.Decrement
		if increment {
			change = flow.Increment
		}
		draft, err := change(r.Context(), tenant, draftID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	})
}

func UpdateBookingDetails(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		var payload bookingDetailsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draftID := chi.URLParam(r, "draftId")

		var (
			draft *booking.Draft
			err   error
		)
		if payload.Phone != nil {
			if draft, err = flow.SetPhone(r.Context(), tenant, draftID, *payload.Phone); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.Name != nil {
			if draft, err = flow.SetName(r.Context(), tenant, draftID, validators.SanitizeString(*payload.Name, maxClientNameLen)); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.BirthDate != nil {
			if draft, err = flow.SetBirthDate(r.Context(), tenant, draftID, *payload.BirthDate); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if draft == nil {
			if draft, err = flow.Get(r.Context(), tenant, draftID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, draft)
	})
}

// ConfirmBooking commits the draft. A plan denial surfaces as 402 with
// upgrade_required so the page can show the upgrade prompt.
func ConfirmBooking(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		result, err := flow.Confirm(r.Context(), tenant, chi.URLParam(r, "draftId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Allowed {
			responses.WriteError(r.Context(), logg, w, responses.QuotaExceeded(tenant, enums.ActionKindAppointment))
			return
		}
		responses.WriteCreated(w, result)
	})
}

func FinishBooking(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		if err := flow.Done(r.Context(), tenant, chi.URLParam(r, "draftId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func AbandonBooking(flow BookingFlow, logg *logger.Logger) http.HandlerFunc {
	return bookingHandler(flow, logg, func(w http.ResponseWriter, r *http.Request, tenant string) {
		if err := flow.Abandon(r.Context(), tenant, chi.URLParam(r, "draftId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
