package appointments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

const Collection = "appointments"

// ListQuery filters appointment listings. Zero values match everything.
type ListQuery struct {
	Date        string
	Status      enums.AppointmentStatus
	EmployeeID  string
	ClientPhone string
}

func (q ListQuery) matches(a models.Appointment) bool {
	if q.Date != "" && a.Date != q.Date {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.EmployeeID != "" && a.EmployeeID != q.EmployeeID {
		return false
	}
	if q.ClientPhone != "" && a.ClientID != clients.NormalizePhone(q.ClientPhone) {
		return false
	}
	return true
}

// CancelRequest identifies who is cancelling. Client cancellations must carry
// the phone the appointment was booked with.
type CancelRequest struct {
	By    enums.CancelledBy
	Phone string
}

// Service manages the appointment book of a tenant.
type Service interface {
	List(ctx context.Context, tenant string, query ListQuery) ([]models.Appointment, error)
	Get(ctx context.Context, tenant, id string) (*models.Appointment, error)
	Create(ctx context.Context, tenant string, appt models.Appointment) (*models.Appointment, error)
	Cancel(ctx context.Context, tenant, id string, req CancelRequest) (*models.Appointment, error)
	Complete(ctx context.Context, tenant, id string, extra []models.Product) (*models.Appointment, error)
}

type service struct {
	items *collections.Collection[models.Appointment]
	now   func() time.Time
}

func NewService(store collections.Store, locks *collections.Locks) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	return &service{
		items: collections.NewCollection[models.Appointment](store, Collection, locks),
		now:   time.Now,
	}, nil
}

// List returns matching appointments ordered by date then time.
func (s *service) List(ctx context.Context, tenant string, query ListQuery) ([]models.Appointment, error) {
	if query.Status != "" && !query.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", query.Status))
	}
	items, err := s.items.List(ctx, tenant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	out := make([]models.Appointment, 0, len(items))
	for _, item := range items {
		if query.matches(item) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *service) Get(ctx context.Context, tenant, id string) (*models.Appointment, error) {
	items, err := s.items.List(ctx, tenant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
}

// Create stores a new scheduled appointment. Callers are expected to have
// passed the usage gate already.
func (s *service) Create(ctx context.Context, tenant string, appt models.Appointment) (*models.Appointment, error) {
	if appt.ServiceID == "" || appt.EmployeeID == "" || appt.ClientID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service, professional and client are required")
	}
	if _, err := time.Parse(time.DateOnly, appt.Date); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	if appt.Time == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time is required")
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Products == nil {
		appt.Products = []models.Product{}
	}
	appt.Status = enums.AppointmentStatusScheduled
	appt.CreatedAt = s.now().UTC()
	appt.RecomputeTotal()

	if _, err := s.items.Update(ctx, tenant, func(items []models.Appointment) ([]models.Appointment, error) {
		return append(items, appt), nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save appointments")
	}
	return &appt, nil
}

// Cancel moves a scheduled appointment to cancelled. Terminal appointments
// cannot be cancelled again.
func (s *service) Cancel(ctx context.Context, tenant, id string, req CancelRequest) (*models.Appointment, error) {
	if req.By != enums.CancelledByClient && req.By != enums.CancelledByAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancelled_by must be client or admin")
	}
	phone := clients.NormalizePhone(req.Phone)
	if req.By == enums.CancelledByClient && phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	return s.mutate(ctx, tenant, id, func(appt *models.Appointment) error {
		if req.By == enums.CancelledByClient && appt.ClientID != phone {
			return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		if appt.Status != enums.AppointmentStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only scheduled appointments can be cancelled")
		}
		now := s.now().UTC()
		appt.Status = enums.AppointmentStatusCancelled
		appt.CancelledAt = &now
		appt.CancelledBy = req.By
		return nil
	})
}

// Complete appends the consumed products, recomputes the total and marks the
// appointment completed. Only scheduled appointments can be completed.
func (s *service) Complete(ctx context.Context, tenant, id string, extra []models.Product) (*models.Appointment, error) {
	return s.mutate(ctx, tenant, id, func(appt *models.Appointment) error {
		if appt.Status != enums.AppointmentStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("appointment is %s", appt.Status))
		}
		appt.Products = append(appt.Products, extra...)
		appt.RecomputeTotal()
		now := s.now().UTC()
		appt.Status = enums.AppointmentStatusCompleted
		appt.CompletedAt = &now
		return nil
	})
}

func (s *service) mutate(ctx context.Context, tenant, id string, fn func(*models.Appointment) error) (*models.Appointment, error) {
	var updated models.Appointment
	_, err := s.items.Update(ctx, tenant, func(items []models.Appointment) ([]models.Appointment, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if err := fn(&items[i]); err != nil {
				return nil, err
			}
			updated = items[i]
			return items, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save appointments")
	}
	return &updated, nil
}
