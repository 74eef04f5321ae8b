package enums

import (
	"fmt"
	"strings"
)

// PlanCode is the closed set of subscription tiers a tenant can be on.
type PlanCode string

const (
	PlanCodeFree       PlanCode = "free"
	PlanCodeBasic      PlanCode = "basic"
	PlanCodePro        PlanCode = "pro"
	PlanCodeEnterprise PlanCode = "enterprise"
)

var validPlanCodes = []PlanCode{
	PlanCodeFree,
	PlanCodeBasic,
	PlanCodePro,
	PlanCodeEnterprise,
}

// planAliases maps display names used by older tenant records onto codes.
var planAliases = map[string]PlanCode{
	"free":         PlanCodeFree,
	"gratis":       PlanCodeFree,
	"grátis":       PlanCodeFree,
	"gratuito":     PlanCodeFree,
	"basic":        PlanCodeBasic,
	"basico":       PlanCodeBasic,
	"básico":       PlanCodeBasic,
	"pro":          PlanCodePro,
	"profissional": PlanCodePro,
	"professional": PlanCodePro,
	"enterprise":   PlanCodeEnterprise,
	"empresarial":  PlanCodeEnterprise,
}

// String implements fmt.Stringer.
func (p PlanCode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanCode.
func (p PlanCode) IsValid() bool {
	for _, candidate := range validPlanCodes {
		if candidate == p {
			return true
		}
	}
	return false
}

// PlanCodes returns the known codes in tier order.
func PlanCodes() []PlanCode {
	out := make([]PlanCode, len(validPlanCodes))
	copy(out, validPlanCodes)
	return out
}

// ParsePlanCode accepts either a canonical code or a known display name.
func ParsePlanCode(value string) (PlanCode, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if code, ok := planAliases[key]; ok {
		return code, nil
	}
	return "", fmt.Errorf("invalid plan code %q", value)
}
