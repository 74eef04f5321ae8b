package usage

import "github.com/angelmondragon/salonbook-backend/pkg/db/models"

// Snapshot describes where a tenant stands against its plan.
type Snapshot struct {
	Tenant    string `json:"tenant"`
	Plan      string `json:"plan"`
	Limited   bool   `json:"limited"`
	Used      int    `json:"used"`
	Limit     *int   `json:"limit,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
	Exhausted bool   `json:"exhausted"`
}

// EffectiveLimit returns the bound enforced for a limited plan. A missing or
// non-positive limit means the plan is metered without a ceiling.
func EffectiveLimit(plan models.Plan) *int {
	if plan.ActionLimit == nil || *plan.ActionLimit <= 0 {
		return nil
	}
	limit := *plan.ActionLimit
	return &limit
}

// Describe builds a snapshot. A nil plan is reported as unlimited.
func Describe(tenant models.Tenant, plan *models.Plan) Snapshot {
	snap := Snapshot{
		Tenant: tenant.Slug,
		Plan:   string(tenant.Plan),
		Used:   tenant.ActionCount,
	}
	if plan == nil || !plan.IsLimited() {
		return snap
	}
	snap.Limited = true
	if limit := EffectiveLimit(*plan); limit != nil {
		remaining := *limit - tenant.ActionCount
		if remaining < 0 {
			remaining = 0
		}
		snap.Limit = limit
		snap.Remaining = &remaining
		snap.Exhausted = remaining == 0
	}
	return snap
}
