package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotifyMetrics counts finance events handed to each sink.
type NotifyMetrics struct {
	deliveries *prometheus.CounterVec
}

func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	if reg == nil {
		return &NotifyMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salonbook_notify_deliveries_total",
		Help: "Finance event deliveries by sink and outcome.",
	}, []string{"sink", "outcome"})
	reg.MustRegister(deliveries)
	return &NotifyMetrics{deliveries: deliveries}
}

func (n *NotifyMetrics) IncDelivery(sink, outcome string) {
	if n == nil || n.deliveries == nil {
		return
	}
	n.deliveries.WithLabelValues(normalizeLabel(sink), normalizeLabel(outcome)).Inc()
}
