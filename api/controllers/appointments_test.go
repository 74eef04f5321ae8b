package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/internal/catalog"
	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

func seedAppointment(t *testing.T, f *fixture, phone string) *models.Appointment {
	t.Helper()
	appt, err := f.appointments.Create(context.Background(), testTenant, models.Appointment{
		ServiceID:   "svc-1",
		ServiceName: "Corte",
		EmployeeID:  models.AnyProfessionalID,
		ClientID:    phone,
		ClientName:  "Maria",
		Date:        "2099-01-10",
		Time:        "10:00",
		Price:       decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	return appt
}

type checkoutResponse struct {
	Appointment    models.Appointment  `json:"appointment"`
	Transaction    *models.Transaction `json:"transaction"`
	IncomeRecorded bool                `json:"income_recorded"`
}

func TestPublicMyAppointmentsByPhone(t *testing.T) {
	f := newFixture(t)
	seedAppointment(t, f, "11999990000")
	seedAppointment(t, f, "11888880000")

	rec := serve(t, PublicMyAppointments(f.appointments, f.logg), http.MethodGet, "/appointments?phone=(11)%2099999-0000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Appointment
	decodeData(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "11999990000", items[0].ClientID)

	rec = serve(t, PublicMyAppointments(f.appointments, f.logg), http.MethodGet, "/appointments", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicCancelChecksOwnership(t *testing.T) {
	f := newFixture(t)
	appt := seedAppointment(t, f, "11999990000")
	params := map[string]string{"appointmentId": appt.ID}

	rec := serve(t, PublicCancelAppointment(f.appointments, f.logg), http.MethodPost, "/cancel", `{"phone":"11000000000"}`, params)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, PublicCancelAppointment(f.appointments, f.logg), http.MethodPost, "/cancel", `{"phone":"11999990000"}`, params)
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled models.Appointment
	decodeData(t, rec, &cancelled)
	assert.Equal(t, enums.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, enums.CancelledByClient, cancelled.CancelledBy)

	rec = serve(t, AdminCancelAppointment(f.appointments, f.logg), http.MethodPost, "/cancel", "", params)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminListAppointmentsFilters(t *testing.T) {
	f := newFixture(t)
	seedAppointment(t, f, "11999990000")

	rec := serve(t, AdminListAppointments(f.appointments, f.logg), http.MethodGet, "/appointments?date=2099-01-10&status=scheduled", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Appointment
	decodeData(t, rec, &items)
	assert.Len(t, items, 1)

	rec = serve(t, AdminListAppointments(f.appointments, f.logg), http.MethodGet, "/appointments?status=lost", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, AdminListAppointments(f.appointments, f.logg), http.MethodGet, "/appointments?date=10/01/2099", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCheckoutRecordsIncome(t *testing.T) {
	f := newFixture(t)
	product, err := f.catalog.CreateProduct(context.Background(), testTenant, catalog.ProductInput{Name: "Shampoo", Price: decimal.NewFromInt(20), Stock: 5})
	require.NoError(t, err)
	appt := seedAppointment(t, f, "11999990000")
	params := map[string]string{"appointmentId": appt.ID}

	rec := serve(t, AdminCheckoutAppointment(f.checkout, f.logg), http.MethodPost, "/checkout",
		`{"items":[{"product_id":"`+product.ID+`","quantity":2}]}`, params)
	require.Equal(t, http.StatusOK, rec.Code)

	var result checkoutResponse
	decodeData(t, rec, &result)
	assert.Equal(t, enums.AppointmentStatusCompleted, result.Appointment.Status)
	assert.True(t, decimal.NewFromInt(90).Equal(result.Appointment.TotalPrice))
	assert.True(t, result.IncomeRecorded)
	require.NotNil(t, result.Transaction)
	assert.True(t, decimal.NewFromInt(90).Equal(result.Transaction.Amount))

	listed, err := f.ledger.List(context.Background(), testTenant, ledger.ListParams{})
	require.NoError(t, err)
	assert.Len(t, listed.Items, 1)

	stocked, err := f.catalog.GetProduct(context.Background(), testTenant, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stocked.Stock)

	rec = serve(t, AdminCheckoutAppointment(f.checkout, f.logg), http.MethodPost, "/checkout", `{"items":[]}`, params)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminCheckoutDeniedIncomeStillCompletes(t *testing.T) {
	f := newFixture(t)
	f.gate.allowed = false
	appt := seedAppointment(t, f, "11999990000")

	rec := serve(t, AdminCheckoutAppointment(f.checkout, f.logg), http.MethodPost, "/checkout", `{}`, map[string]string{"appointmentId": appt.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	var result checkoutResponse
	decodeData(t, rec, &result)
	assert.Equal(t, enums.AppointmentStatusCompleted, result.Appointment.Status)
	assert.False(t, result.IncomeRecorded)
	assert.Nil(t, result.Transaction)
}

func TestAdminGetClientWithHistory(t *testing.T) {
	f := newFixture(t)
	_, err := f.clients.Upsert(context.Background(), testTenant, models.Client{Phone: "11999990000", Name: "Maria"})
	require.NoError(t, err)
	seedAppointment(t, f, "11999990000")

	rec := serve(t, AdminGetClient(f.clients, f.appointments, f.logg), http.MethodGet, "/clients/11999990000", "", map[string]string{"phone": "11999990000"})
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Name         string               `json:"name"`
		Appointments []models.Appointment `json:"appointments"`
	}
	decodeData(t, rec, &detail)
	assert.Equal(t, "Maria", detail.Name)
	assert.Len(t, detail.Appointments, 1)

	rec = serve(t, AdminGetClient(f.clients, f.appointments, f.logg), http.MethodGet, "/clients/1", "", map[string]string{"phone": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUpsertClient(t *testing.T) {
	f := newFixture(t)

	rec := serve(t, AdminUpsertClient(f.clients, f.logg), http.MethodPut, "/clients",
		`{"phone":"(11) 97777-0000","name":"Joana","birth_date":"1990-04-02"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var client models.Client
	decodeData(t, rec, &client)
	assert.Equal(t, "11977770000", client.Phone)

	rec = serve(t, AdminUpsertClient(f.clients, f.logg), http.MethodPut, "/clients", `{"phone":"1","name":"X","birth_date":"02/04/1990"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, AdminListClients(f.clients, f.logg), http.MethodGet, "/clients", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Client
	decodeData(t, rec, &items)
	assert.Len(t, items, 1)
}
