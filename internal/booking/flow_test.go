package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

var (
	flowNow  = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	slots    = []string{"09:00", "09:30", "10:00"}
	haircut  = models.Service{ID: "svc-cut", Name: "Haircut", Price: decimal.NewFromInt(50), Active: true}
	employee = models.Employee{ID: "emp-1", Name: "Ana", PhotoURL: "https://img/ana.png", Active: true}
)

func draftAtIdentity(t *testing.T, viewProducts bool) *Draft {
	t.Helper()
	d := NewDraft("d1", "bella", haircut, "2026-03-10", flowNow)
	require.NoError(t, d.SelectProfessional(&employee))
	require.NoError(t, d.Schedule("", "10:00", slots, "2026-03-10"))
	require.NoError(t, d.Continue())
	if viewProducts {
		require.NoError(t, d.ViewProducts())
		require.NoError(t, d.Continue())
	} else {
		require.NoError(t, d.SkipProducts())
	}
	require.Equal(t, StepIdentity, d.Step)
	return d
}

func TestNewDraftDefaultsToToday(t *testing.T) {
	d := NewDraft("d1", "bella", haircut, "2026-03-10", flowNow)
	assert.Equal(t, StepProfessional, d.Step)
	assert.Equal(t, "2026-03-10", d.Date)
	assert.Equal(t, "Haircut", d.Service.Name)
	assert.NotNil(t, d.Cart)
}

func TestAnyProfessionalIsPseudoEmployee(t *testing.T) {
	d := NewDraft("d1", "bella", haircut, "2026-03-10", flowNow)
	require.NoError(t, d.SelectProfessional(nil))
	require.NotNil(t, d.Professional)
	assert.Equal(t, models.AnyProfessionalID, d.Professional.ID)
	assert.Equal(t, AnyProfessionalName, d.Professional.Name)
	assert.Equal(t, StepSchedule, d.Step)
}

func TestScheduleGuards(t *testing.T) {
	d := NewDraft("d1", "bella", haircut, "", flowNow)
	require.NoError(t, d.SelectProfessional(&employee))

	err := d.Continue()
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "continue needs date and time")

	err = d.Schedule("2026-03-11", "11:15", slots, "2026-03-10")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "time must be a slot")

	err = d.Schedule("2026-03-09", "", slots, "2026-03-10")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "past date")

	require.NoError(t, d.Schedule("2026-03-11", "", slots, "2026-03-10"))
	assert.True(t, pkgerrors.IsCode(d.Continue(), pkgerrors.CodeValidation))
	require.NoError(t, d.Schedule("", "09:30", slots, "2026-03-10"))
	require.NoError(t, d.Continue())
	assert.Equal(t, StepProductFork, d.Step)
}

func TestActionsRejectedOutOfStep(t *testing.T) {
	d := NewDraft("d1", "bella", haircut, "2026-03-10", flowNow)
	assert.True(t, pkgerrors.IsCode(d.Increment("p1"), pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.IsCode(d.Back(), pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.IsCode(d.ValidateForConfirm(), pkgerrors.CodeStateConflict))
	assert.True(t, pkgerrors.IsCode(d.ViewProducts(), pkgerrors.CodeStateConflict))
}

func TestCartIncrementDecrementRemovesLine(t *testing.T) {
	d := NewDraft("d1", "bella", haircut, "2026-03-10", flowNow)
	require.NoError(t, d.SelectProfessional(&employee))
	require.NoError(t, d.Schedule("", "09:00", slots, ""))
	require.NoError(t, d.Continue())
	require.NoError(t, d.ViewProducts())

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Increment("p1"))
	}
	require.NoError(t, d.Increment("p2"))
	assert.Equal(t, 3, d.Quantity("p1"))

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Decrement("p1"))
	}
	assert.Equal(t, 0, d.Quantity("p1"))
	require.Len(t, d.Cart, 1)
	assert.Equal(t, "p2", d.Cart[0].ProductID)

	require.NoError(t, d.Decrement("missing"))
	require.NoError(t, d.Continue())
	assert.Equal(t, StepIdentity, d.Step)
}

func TestBackRules(t *testing.T) {
	viewed := draftAtIdentity(t, true)
	require.NoError(t, viewed.Back())
	assert.Equal(t, StepProducts, viewed.Step)
	require.NoError(t, viewed.Back())
	assert.Equal(t, StepProductFork, viewed.Step)
	require.NoError(t, viewed.Back())
	assert.Equal(t, StepSchedule, viewed.Step)
	require.NoError(t, viewed.Back())
	assert.Equal(t, StepProfessional, viewed.Step)

	skipped := draftAtIdentity(t, false)
	require.NoError(t, skipped.Back())
	assert.Equal(t, StepProductFork, skipped.Step)
}

func TestPhoneResolutionOnEveryChange(t *testing.T) {
	d := draftAtIdentity(t, false)
	known := &models.Client{Phone: "11999990000", Name: "Maria", BirthDate: "1990-05-01"}

	require.NoError(t, d.SetPhone("1199999", nil))
	assert.False(t, d.ExistingClient)
	require.NoError(t, d.SetName("Typed Name"))
	require.NoError(t, d.SetBirthDate("1985-01-01", flowNow))

	require.NoError(t, d.SetPhone("(11) 99999-0000", known))
	assert.True(t, d.ExistingClient)
	assert.Equal(t, "11999990000", d.Phone)
	assert.Equal(t, "Maria", d.Name)
	assert.Equal(t, "1990-05-01", d.BirthDate)
	assert.True(t, pkgerrors.IsCode(d.SetName("Other"), pkgerrors.CodeStateConflict))

	require.NoError(t, d.SetPhone("1199999000", nil))
	assert.False(t, d.ExistingClient)
	assert.Empty(t, d.Name, "autofilled values are cleared when the match is lost")
	assert.Empty(t, d.BirthDate)
}

func TestValidateForConfirm(t *testing.T) {
	d := draftAtIdentity(t, false)
	err := d.ValidateForConfirm()
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, []string{"phone", "name", "birth_date"}, details["missing"])

	require.NoError(t, d.SetPhone("11999990000", nil))
	require.NoError(t, d.SetName("Maria"))
	assert.Error(t, d.ValidateForConfirm())
	assert.True(t, pkgerrors.IsCode(d.SetBirthDate("2030-01-01", flowNow), pkgerrors.CodeValidation))
	require.NoError(t, d.SetBirthDate("1990-05-01", flowNow))
	assert.NoError(t, d.ValidateForConfirm())

	existing := draftAtIdentity(t, false)
	require.NoError(t, existing.SetPhone("11999990000", &models.Client{Phone: "11999990000", Name: "Maria"}))
	assert.NoError(t, existing.ValidateForConfirm(), "existing clients need no birth date")
}

func TestBuildAppointmentTotals(t *testing.T) {
	d := draftAtIdentity(t, true)
	require.NoError(t, d.SetPhone("11999990000", &models.Client{Name: "Maria"}))
	product := models.Product{ID: "p1", Name: "Shampoo", Price: decimal.NewFromInt(20)}

	appt := d.BuildAppointment("a1", []models.Product{product, product})
	assert.Equal(t, "emp-1", appt.EmployeeID)
	assert.Equal(t, "https://img/ana.png", appt.EmployeePhoto)
	assert.Equal(t, "11999990000", appt.ClientID)
	assert.True(t, appt.TotalPrice.Equal(decimal.NewFromInt(90)))

	d.MarkConfirmed("a1")
	assert.Equal(t, StepConfirmed, d.Step)
	assert.True(t, pkgerrors.IsCode(d.Back(), pkgerrors.CodeStateConflict))
}
