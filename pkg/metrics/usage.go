package metrics

import "github.com/prometheus/client_golang/prometheus"

// UsageMetrics tracks plan enforcement decisions and per-tenant consumption.
type UsageMetrics struct {
	decisions *prometheus.CounterVec
	consumed  *prometheus.GaugeVec
	limit     *prometheus.GaugeVec
}

func NewUsageMetrics(reg prometheus.Registerer) *UsageMetrics {
	if reg == nil {
		return &UsageMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salonbook_usage_decisions_total",
		Help: "Usage gate decisions by action kind and outcome.",
	}, []string{"action", "decision"})
	consumed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "salonbook_tenant_actions_consumed",
		Help: "Metered actions consumed by each tenant.",
	}, []string{"tenant", "plan"})
	limit := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "salonbook_tenant_action_limit",
		Help: "Configured action limit for each limited tenant.",
	}, []string{"tenant", "plan"})
	reg.MustRegister(decisions, consumed, limit)
	return &UsageMetrics{decisions: decisions, consumed: consumed, limit: limit}
}

func (u *UsageMetrics) IncDecision(action, decision string) {
	if u == nil || u.decisions == nil {
		return
	}
	u.decisions.WithLabelValues(normalizeLabel(action), normalizeLabel(decision)).Inc()
}

// SetTenantUsage publishes the latest counter snapshot. A limit below zero
// clears the limit series for unbounded tenants.
func (u *UsageMetrics) SetTenantUsage(tenant, plan string, consumed, limit int) {
	if u == nil || u.consumed == nil {
		return
	}
	u.consumed.WithLabelValues(normalizeLabel(tenant), normalizeLabel(plan)).Set(float64(consumed))
	if limit < 0 {
		u.limit.DeleteLabelValues(normalizeLabel(tenant), normalizeLabel(plan))
		return
	}
	u.limit.WithLabelValues(normalizeLabel(tenant), normalizeLabel(plan)).Set(float64(limit))
}
