package models

import "time"

// Client is keyed by the normalised phone number.
type Client struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
