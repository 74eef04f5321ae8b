package notifications

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

// Event is the finance event handed to external sinks.
type Event struct {
	Tenant      string                `json:"tenant"`
	Type        enums.TransactionType `json:"type"`
	Category    string                `json:"category"`
	Amount      json.Number           `json:"amount"`
	Date        string                `json:"date"`
	Description string                `json:"description"`
}

// FromTransaction builds the event for a recorded ledger line. Category is
// the display label and date is the creation instant in RFC3339.
func FromTransaction(tenant string, tx models.Transaction, description string) Event {
	at := tx.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	if description == "" {
		description = tx.Title
	}
	return Event{
		Tenant:      tenant,
		Type:        tx.Type,
		Category:    tx.Category.Label(),
		Amount:      json.Number(tx.Amount.String()),
		Date:        at.UTC().Format(time.RFC3339),
		Description: description,
	}
}

func (e Event) fields() map[string]any {
	return map[string]any{
		"tenant":      e.Tenant,
		"event_type":  string(e.Type),
		"category":    e.Category,
		"amount":      e.Amount.String(),
		"description": e.Description,
	}
}
