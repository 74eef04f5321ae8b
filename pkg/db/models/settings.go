package models

// Settings is the single per-tenant configuration document.
type Settings struct {
	BusinessName      string   `json:"business_name"`
	Phone             string   `json:"phone,omitempty"`
	Address           string   `json:"address,omitempty"`
	Instagram         string   `json:"instagram,omitempty"`
	OpeningHours      string   `json:"opening_hours,omitempty"`
	TimeSlots         []string `json:"time_slots"`
	LowStockThreshold int      `json:"low_stock_threshold"`
	Currency          string   `json:"currency"`
}
