package checkout

import (
	"context"
	"fmt"

	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/pkg/checkout"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

type appointmentStore interface {
	Get(ctx context.Context, tenant, id string) (*models.Appointment, error)
	Complete(ctx context.Context, tenant, id string, extra []models.Product) (*models.Appointment, error)
}

type productCatalog interface {
	ListProducts(ctx context.Context, tenant string) ([]models.Product, error)
	ConsumeStock(ctx context.Context, tenant string, quantities map[string]int) error
}

type incomeRecorder interface {
	Record(ctx context.Context, tenant string, input ledger.RecordInput) (*ledger.RecordResult, error)
}

// Service closes a scheduled appointment at the front desk.
type Service interface {
	Finalize(ctx context.Context, tenant, appointmentID string, cart []checkout.Line) (*Result, error)
}

// Result is the completed appointment plus the income line when the plan
// allowed it. IncomeRecorded=false with a nil Transaction means the
// appointment was completed but no revenue was written.
type Result struct {
	Appointment    *models.Appointment `json:"appointment"`
	Transaction    *models.Transaction `json:"transaction,omitempty"`
	IncomeRecorded bool                `json:"income_recorded"`
}

type service struct {
	appointments appointmentStore
	products     productCatalog
	ledger       incomeRecorder
	logg         *logger.Logger
}

// NewService builds the checkout service.
func NewService(appts appointmentStore, products productCatalog, ledgerSvc incomeRecorder, logg *logger.Logger) (Service, error) {
	if appts == nil {
		return nil, fmt.Errorf("appointment service required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{appointments: appts, products: products, ledger: ledgerSvc, logg: logg}, nil
}

func (s *service) Finalize(ctx context.Context, tenant, appointmentID string, cart []checkout.Line) (*Result, error) {
	if appointmentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment id required")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"tenant": tenant, "appointment_id": appointmentID})

	current, err := s.appointments.Get(ctx, tenant, appointmentID)
	if err != nil {
		return nil, err
	}
	if current.Status != enums.AppointmentStatusScheduled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("appointment is %s", current.Status))
	}

	extra := []models.Product{}
	if len(cart) > 0 {
		catalog, err := s.products.ListProducts(ctx, tenant)
		if err != nil {
			return nil, err
		}
		extra, err = checkout.Expand(cart, catalog)
		if err != nil {
			return nil, err
		}
	}

	completed, err := s.appointments.Complete(ctx, tenant, appointmentID, extra)
	if err != nil {
		return nil, err
	}
	result := &Result{Appointment: completed}

	if len(cart) > 0 {
		if err := s.products.ConsumeStock(ctx, tenant, checkout.Quantities(cart)); err != nil {
			s.logg.Error(ctx, "checkout.stock_update_failed", err)
		}
	}

	recorded, err := s.ledger.Record(ctx, tenant, ledger.RecordInput{
		Title:         fmt.Sprintf("%s - %s", completed.ServiceName, completed.ClientName),
		Amount:        completed.TotalPrice,
		Type:          enums.TransactionTypeIncome,
		Category:      enums.TransactionCategoryService,
		AppointmentID: completed.ID,
	})
	switch {
	case err != nil:
		s.logg.Error(ctx, "checkout.income_record_failed", err)
	case !recorded.Allowed:
		s.logg.Warn(ctx, "checkout.income_denied_by_plan")
	default:
		result.Transaction = recorded.Transaction
		result.IncomeRecorded = true
	}

	s.logg.Info(ctx, "checkout.completed")
	return result, nil
}
