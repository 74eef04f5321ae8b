package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
)

const (
	pubsubSinkName        = "pubsub"
	defaultPublishTimeout = 10 * time.Second
)

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubSink publishes finance events to a topic. The publish result is
// awaited off the request path.
type PubSubSink struct {
	pub     publisher
	logg    *logger.Logger
	metrics *metrics.NotifyMetrics
	timeout time.Duration
}

func NewPubSubSink(p *gcppubsub.Publisher, logg *logger.Logger, m *metrics.NotifyMetrics) (*PubSubSink, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return newPubSubSink(&gcpPublisher{Publisher: p}, logg, m)
}

func newPubSubSink(pub publisher, logg *logger.Logger, m *metrics.NotifyMetrics) (*PubSubSink, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &PubSubSink{pub: pub, logg: logg, metrics: m, timeout: defaultPublishTimeout}, nil
}

func (s *PubSubSink) Notify(ctx context.Context, event Event) {
	ctx = s.logg.WithFields(context.WithoutCancel(ctx), event.fields())
	data, err := json.Marshal(event)
	if err != nil {
		s.metrics.IncDelivery(pubsubSinkName, OutcomeFailed)
		s.logg.Error(ctx, "notify.pubsub_encode_failed", err)
		return
	}
	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"tenant":     event.Tenant,
			"event_type": string(event.Type),
		},
	}
	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	result := s.pub.Publish(publishCtx, msg)
	if result == nil {
		cancel()
		s.metrics.IncDelivery(pubsubSinkName, OutcomeFailed)
		s.logg.Warn(ctx, "notify.pubsub_nil_result")
		return
	}
	go func() {
		defer cancel()
		if _, err := result.Get(publishCtx); err != nil {
			s.metrics.IncDelivery(pubsubSinkName, OutcomeFailed)
			s.logg.Error(ctx, "notify.pubsub_publish_failed", err)
			return
		}
		s.metrics.IncDelivery(pubsubSinkName, OutcomeDelivered)
	}()
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
