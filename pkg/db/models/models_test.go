package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlanIsLimited(t *testing.T) {
	limit := func(v int) *int { return &v }

	cases := []struct {
		name string
		plan Plan
		want bool
	}{
		{name: "free without limit", plan: Plan{BasePrice: decimal.Zero}, want: true},
		{name: "free with limit", plan: Plan{BasePrice: decimal.Zero, ActionLimit: limit(50)}, want: true},
		{name: "paid without limit", plan: Plan{BasePrice: decimal.NewFromInt(99)}, want: false},
		{name: "paid with zero limit", plan: Plan{BasePrice: decimal.NewFromInt(99), ActionLimit: limit(0)}, want: false},
		{name: "paid with limit", plan: Plan{BasePrice: decimal.NewFromInt(99), ActionLimit: limit(500)}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.plan.IsLimited(); got != tc.want {
				t.Fatalf("IsLimited() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAppointmentRecomputeTotal(t *testing.T) {
	shampoo := Product{ID: "p1", Price: decimal.NewFromInt(20)}
	appt := Appointment{
		Price:    decimal.NewFromInt(50),
		Products: []Product{shampoo, shampoo},
	}
	appt.RecomputeTotal()
	if !appt.TotalPrice.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected total 90, got %s", appt.TotalPrice)
	}
}
