package types

import "github.com/angelmondragon/salonbook-backend/pkg/enums"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of every failed request. RequestID echoes the
// X-Request-Id header so front-desk reports can be traced.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// QuotaDenial is the detail payload of a 402 raised by the usage gate.
type QuotaDenial struct {
	UpgradeRequired bool             `json:"upgrade_required"`
	Action          enums.ActionKind `json:"action"`
	Tenant          string           `json:"tenant,omitempty"`
}
