package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Transaction is an immutable income or expense line in a tenant ledger.
type Transaction struct {
	ID            string                    `json:"id"`
	Title         string                    `json:"title"`
	Amount        decimal.Decimal           `json:"amount"`
	Type          enums.TransactionType     `json:"type"`
	Category      enums.TransactionCategory `json:"category"`
	Status        enums.TransactionStatus   `json:"status"`
	Date          string                    `json:"date"`
	AppointmentID string                    `json:"appointment_id,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}
