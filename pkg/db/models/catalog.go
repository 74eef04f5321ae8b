package models

import "github.com/shopspring/decimal"

// Service is a bookable salon service.
type Service struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	Category        string          `json:"category,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	Active          bool            `json:"active"`
}

// Product is a retail item that can be added to a booking or a checkout.
// Stock can go negative; it is informational only.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Employee is a professional that can be booked.
type Employee struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Role           string          `json:"role,omitempty"`
	PhotoURL       string          `json:"photo_url,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Active         bool            `json:"active"`
}
