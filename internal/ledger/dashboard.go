package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

type appointmentLister interface {
	List(ctx context.Context, tenant string, query appointments.ListQuery) ([]models.Appointment, error)
}

// Dashboard is the owner's at-a-glance view of one business day.
type Dashboard struct {
	Date              string          `json:"date"`
	AppointmentsToday int             `json:"appointments_today"`
	ScheduledToday    int             `json:"scheduled_today"`
	CompletedToday    int             `json:"completed_today"`
	CancelledToday    int             `json:"cancelled_today"`
	MonthIncome       decimal.Decimal `json:"month_income"`
	MonthExpense      decimal.Decimal `json:"month_expense"`
	MonthBalance      decimal.Decimal `json:"month_balance"`
}

// DashboardService builds dashboards from the appointment book and the ledger.
type DashboardService struct {
	appointments appointmentLister
	ledger       Service
	loc          *time.Location
	now          func() time.Time
}

func NewDashboardService(appts appointmentLister, ledger Service, loc *time.Location) (*DashboardService, error) {
	if appts == nil {
		return nil, fmt.Errorf("appointment service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{appointments: appts, ledger: ledger, loc: loc, now: time.Now}, nil
}

// Today reports the current business day in the configured timezone.
func (d *DashboardService) Today(ctx context.Context, tenant string) (*Dashboard, error) {
	return d.For(ctx, tenant, d.now().In(d.loc).Format(time.DateOnly))
}

// For reports the given YYYY-MM-DD day and its calendar month.
func (d *DashboardService) For(ctx context.Context, tenant, date string) (*Dashboard, error) {
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	appts, err := d.appointments.List(ctx, tenant, appointments.ListQuery{Date: date})
	if err != nil {
		return nil, err
	}
	out := &Dashboard{Date: date, AppointmentsToday: len(appts)}
	for _, appt := range appts {
		switch appt.Status {
		case enums.AppointmentStatusScheduled:
			out.ScheduledToday++
		case enums.AppointmentStatusCompleted:
			out.CompletedToday++
		case enums.AppointmentStatusCancelled:
			out.CancelledToday++
		}
	}

	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	summary, err := d.ledger.Summary(ctx, tenant, Period{From: first.Format(time.DateOnly), To: last.Format(time.DateOnly)})
	if err != nil {
		return nil, err
	}
	out.MonthIncome = summary.Income
	out.MonthExpense = summary.Expense
	out.MonthBalance = summary.Balance
	return out, nil
}
