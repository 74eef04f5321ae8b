package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salonbook-backend/pkg/checkout"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type catalogReader interface {
	GetService(ctx context.Context, tenant, id string) (*models.Service, error)
	GetEmployee(ctx context.Context, tenant, id string) (*models.Employee, error)
	GetProduct(ctx context.Context, tenant, id string) (*models.Product, error)
	ListProducts(ctx context.Context, tenant string) ([]models.Product, error)
	ConsumeStock(ctx context.Context, tenant string, quantities map[string]int) error
}

type slotSource interface {
	Get(ctx context.Context, tenant string) (models.Settings, error)
}

type clientBook interface {
	FindByPhone(ctx context.Context, tenant, phone string) (*models.Client, error)
	Upsert(ctx context.Context, tenant string, client models.Client) (*models.Client, error)
}

type appointmentWriter interface {
	Create(ctx context.Context, tenant string, appt models.Appointment) (*models.Appointment, error)
}

type gate interface {
	CheckAndConsume(ctx context.Context, tenantSlug string, kind enums.ActionKind) (bool, error)
}

// Deps groups the collaborators of the booking service.
type Deps struct {
	Drafts       DraftStore
	Catalog      catalogReader
	Settings     slotSource
	Clients      clientBook
	Appointments appointmentWriter
	Gate         gate
	Logger       *logger.Logger
	Location     *time.Location
}

// ConfirmResult reports the outcome of committing a draft. Allowed=false
// means the tenant's plan is exhausted and the draft was discarded.
type ConfirmResult struct {
	Allowed     bool                `json:"allowed"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Draft       *Draft              `json:"draft,omitempty"`
}

// Service drives client bookings across requests.
type Service struct {
	drafts       DraftStore
	catalog      catalogReader
	settings     slotSource
	clients      clientBook
	appointments appointmentWriter
	gate         gate
	logg         *logger.Logger
	loc          *time.Location
	now          func() time.Time
	newID        func() string
}

func NewService(deps Deps) (*Service, error) {
	switch {
	case deps.Drafts == nil:
		return nil, fmt.Errorf("draft store required")
	case deps.Catalog == nil:
		return nil, fmt.Errorf("catalog required")
	case deps.Settings == nil:
		return nil, fmt.Errorf("settings required")
	case deps.Clients == nil:
		return nil, fmt.Errorf("client book required")
	case deps.Appointments == nil:
		return nil, fmt.Errorf("appointment service required")
	case deps.Gate == nil:
		return nil, fmt.Errorf("usage gate required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		drafts:       deps.Drafts,
		catalog:      deps.Catalog,
		settings:     deps.Settings,
		clients:      deps.Clients,
		appointments: deps.Appointments,
		gate:         deps.Gate,
		logg:         deps.Logger,
		loc:          loc,
		now:          time.Now,
		newID:        uuid.NewString,
	}, nil
}

func (s *Service) today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

// Start opens a draft for an active service.
func (s *Service) Start(ctx context.Context, tenant, serviceID string) (*Draft, error) {
	svc, err := s.catalog.GetService(ctx, tenant, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	draft := NewDraft(s.newID(), tenant, *svc, s.today(), s.now())
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save draft")
	}
	return draft, nil
}

func (s *Service) Get(ctx context.Context, tenant, draftID string) (*Draft, error) {
	return s.load(ctx, tenant, draftID)
}

// SelectProfessional accepts an employee id or "any". "any" is never looked up.
func (s *Service) SelectProfessional(ctx context.Context, tenant, draftID, employeeID string) (*Draft, error) {
	var employee *models.Employee
	if employeeID != models.AnyProfessionalID {
		found, err := s.catalog.GetEmployee(ctx, tenant, employeeID)
		if err != nil {
			return nil, err
		}
		if !found.Active {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		employee = found
	}
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.SelectProfessional(employee)
	})
}

func (s *Service) Schedule(ctx context.Context, tenant, draftID, date, at string) (*Draft, error) {
	cfg, err := s.settings.Get(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.Schedule(date, at, cfg.TimeSlots, s.today())
	})
}

func (s *Service) Continue(ctx context.Context, tenant, draftID string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, (*Draft).Continue)
}

func (s *Service) ViewProducts(ctx context.Context, tenant, draftID string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, (*Draft).ViewProducts)
}

func (s *Service) SkipProducts(ctx context.Context, tenant, draftID string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, (*Draft).SkipProducts)
}

func (s *Service) Back(ctx context.Context, tenant, draftID string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, (*Draft).Back)
}

func (s *Service) Increment(ctx context.Context, tenant, draftID, productID string) (*Draft, error) {
	if _, err := s.catalog.GetProduct(ctx, tenant, productID); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.Increment(productID)
	})
}

func (s *Service) Decrement(ctx context.Context, tenant, draftID, productID string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.Decrement(productID)
	})
}

// SetPhone resolves identity on every change.
func (s *Service) SetPhone(ctx context.Context, tenant, draftID, phone string) (*Draft, error) {
	match, err := s.clients.FindByPhone(ctx, tenant, phone)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.SetPhone(phone, match)
	})
}

func (s *Service) SetName(ctx context.Context, tenant, draftID, name string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.SetName(name)
	})
}

func (s *Service) SetBirthDate(ctx context.Context, tenant, draftID, birthDate string) (*Draft, error) {
	return s.apply(ctx, tenant, draftID, func(d *Draft) error {
		return d.SetBirthDate(birthDate, s.now().In(s.loc))
	})
}

// Confirm commits the draft as a scheduled appointment through the usage gate.
func (s *Service) Confirm(ctx context.Context, tenant, draftID string) (*ConfirmResult, error) {
	draft, err := s.load(ctx, tenant, draftID)
	if err != nil {
		return nil, err
	}
	if err := draft.ValidateForConfirm(); err != nil {
		return nil, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"tenant": tenant, "draft_id": draftID})

	if !draft.ExistingClient {
		if _, err := s.clients.Upsert(ctx, tenant, models.Client{
			Phone:     draft.Phone,
			Name:      draft.Name,
			BirthDate: draft.BirthDate,
		}); err != nil {
			return nil, err
		}
	}

	products := []models.Product{}
	if len(draft.Cart) > 0 {
		catalog, err := s.catalog.ListProducts(ctx, tenant)
		if err != nil {
			return nil, err
		}
		products, err = checkout.Expand(draft.Cart, catalog)
		if err != nil {
			return nil, err
		}
	}
	appt := draft.BuildAppointment(s.newID(), products)

	allowed, err := s.gate.CheckAndConsume(ctx, tenant, enums.ActionKindAppointment)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if err := s.drafts.Delete(ctx, tenant, draftID); err != nil {
			s.logg.Error(ctx, "booking.draft_discard_failed", err)
		}
		s.logg.Warn(ctx, "booking.denied_by_plan")
		return &ConfirmResult{Allowed: false}, nil
	}

	created, err := s.appointments.Create(ctx, tenant, appt)
	if err != nil {
		return nil, err
	}
	if len(draft.Cart) > 0 {
		if err := s.catalog.ConsumeStock(ctx, tenant, checkout.Quantities(draft.Cart)); err != nil {
			s.logg.Error(ctx, "booking.stock_update_failed", err)
		}
	}

	draft.MarkConfirmed(created.ID)
	if err := s.drafts.Save(ctx, draft); err != nil {
		s.logg.Error(ctx, "booking.draft_save_failed", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "appointment_id", created.ID), "booking.confirmed")
	return &ConfirmResult{Allowed: true, Appointment: created, Draft: draft}, nil
}

// Done discards the draft. Only confirmed drafts can be closed this way.
func (s *Service) Done(ctx context.Context, tenant, draftID string) error {
	draft, err := s.load(ctx, tenant, draftID)
	if err != nil {
		return err
	}
	if err := draft.require(StepConfirmed); err != nil {
		return err
	}
	return s.discard(ctx, tenant, draftID)
}

// Abandon discards a draft at any step.
func (s *Service) Abandon(ctx context.Context, tenant, draftID string) error {
	if _, err := s.load(ctx, tenant, draftID); err != nil {
		return err
	}
	return s.discard(ctx, tenant, draftID)
}

func (s *Service) discard(ctx context.Context, tenant, draftID string) error {
	if err := s.drafts.Delete(ctx, tenant, draftID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete draft")
	}
	return nil
}

func (s *Service) load(ctx context.Context, tenant, draftID string) (*Draft, error) {
	draft, err := s.drafts.Load(ctx, tenant, draftID)
	if errors.Is(err, ErrDraftNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking draft not found or expired")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	return draft, nil
}

func (s *Service) apply(ctx context.Context, tenant, draftID string, fn func(*Draft) error) (*Draft, error) {
	draft, err := s.load(ctx, tenant, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save draft")
	}
	return draft, nil
}
