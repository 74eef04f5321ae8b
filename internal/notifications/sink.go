package notifications

import (
	"context"

	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
)

// Sink receives finance events. Implementations never block the caller on
// network I/O and never report delivery failures back.
type Sink interface {
	Notify(ctx context.Context, event Event)
}

// Delivery outcomes reported to metrics.
const (
	OutcomeQueued    = "queued"
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Multi fans an event out to every sink.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, event Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, event)
		}
	}
}

// LogSink records events locally and drops them. It stands in for the
// webhook when endpoint, key or project id is missing.
type LogSink struct {
	logg    *logger.Logger
	metrics *metrics.NotifyMetrics
}

func NewLogSink(logg *logger.Logger, m *metrics.NotifyMetrics) *LogSink {
	return &LogSink{logg: logg, metrics: m}
}

func (s *LogSink) Notify(ctx context.Context, event Event) {
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, event.fields()), "notify.sink_unconfigured_dropped")
	}
	s.metrics.IncDelivery("log", OutcomeDropped)
}

// Compose builds the API's fan-out. The webhook is the primary sink; when it
// is nil a LogSink takes its place. Extra sinks always receive events.
func Compose(webhook *WebhookSink, logg *logger.Logger, m *metrics.NotifyMetrics, extra ...Sink) Multi {
	sinks := make(Multi, 0, len(extra)+1)
	if webhook != nil {
		sinks = append(sinks, webhook)
	} else {
		sinks = append(sinks, NewLogSink(logg, m))
	}
	return append(sinks, extra...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
