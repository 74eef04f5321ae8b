package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// AnyProfessionalID marks a booking that accepts whichever professional is free.
const AnyProfessionalID = "any"

// Appointment products hold one full product snapshot per unit sold.
type Appointment struct {
	ID            string                  `json:"id"`
	ServiceID     string                  `json:"service_id"`
	ServiceName   string                  `json:"service_name"`
	EmployeeID    string                  `json:"employee_id"`
	EmployeeName  string                  `json:"employee_name"`
	EmployeePhoto string                  `json:"employee_photo,omitempty"`
	ClientID      string                  `json:"client_id"`
	ClientName    string                  `json:"client_name"`
	Date          string                  `json:"date"`
	Time          string                  `json:"time"`
	Price         decimal.Decimal         `json:"price"`
	Products      []Product               `json:"products"`
	TotalPrice    decimal.Decimal         `json:"total_price"`
	Status        enums.AppointmentStatus `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CancelledBy   enums.CancelledBy       `json:"cancelled_by,omitempty"`
}

// ProductsTotal sums the price of every product snapshot.
func (a Appointment) ProductsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Products {
		total = total.Add(p.Price)
	}
	return total
}

// RecomputeTotal sets TotalPrice to the base price plus all products.
func (a *Appointment) RecomputeTotal() {
	a.TotalPrice = a.Price.Add(a.ProductsTotal())
}
