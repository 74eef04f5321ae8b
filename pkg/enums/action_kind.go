package enums

import "fmt"

// ActionKind names the quota-relevant writes metered per tenant.
type ActionKind string

const (
	ActionKindAppointment ActionKind = "appointment"
	ActionKindTransaction ActionKind = "transaction"
)

var validActionKinds = []ActionKind{
	ActionKindAppointment,
	ActionKindTransaction,
}

// String implements fmt.Stringer.
func (a ActionKind) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActionKind.
func (a ActionKind) IsValid() bool {
	for _, candidate := range validActionKinds {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActionKind converts raw input into an ActionKind.
func ParseActionKind(value string) (ActionKind, error) {
	for _, candidate := range validActionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid action kind %q", value)
}
