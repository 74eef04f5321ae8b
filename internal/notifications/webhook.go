package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
)

const webhookSinkName = "webhook"

type webhookPayload struct {
	ProjectID string `json:"project_id"`
	Event
}

// WebhookSink posts events to the configured endpoint from a single background
// worker fed by a bounded queue. A full queue drops the event.
type WebhookSink struct {
	cfg     config.NotifyConfig
	client  *http.Client
	limiter *rate.Limiter
	logg    *logger.Logger
	metrics *metrics.NotifyMetrics

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
	start  sync.Once
}

func NewWebhookSink(cfg config.NotifyConfig, client *http.Client, logg *logger.Logger, m *metrics.NotifyMetrics) (*WebhookSink, error) {
	if !cfg.Configured() {
		return nil, errors.New("notify endpoint, api key and project id are required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &WebhookSink{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		logg:    logg,
		metrics: m,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}, nil
}

// Start launches the delivery worker. The worker exits once Close has been
// called and the queue is drained.
func (w *WebhookSink) Start(ctx context.Context) {
	w.start.Do(func() {
		go w.run(ctx)
	})
}

func (w *WebhookSink) Notify(ctx context.Context, event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.drop(ctx, event, "notify.sink_closed")
		return
	}
	select {
	case w.queue <- event:
		w.metrics.IncDelivery(webhookSinkName, OutcomeQueued)
	default:
		w.drop(ctx, event, "notify.queue_full")
	}
}

// Close stops accepting events and waits for queued ones to be sent, or for
// ctx to expire.
func (w *WebhookSink) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	w.Start(context.Background())
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining notify queue: %w", ctx.Err())
	}
}

func (w *WebhookSink) run(ctx context.Context) {
	defer close(w.done)
	for event := range w.queue {
		if err := w.limiter.Wait(ctx); err != nil {
			w.drop(ctx, event, "notify.rate_wait_aborted")
			continue
		}
		w.deliver(ctx, event)
	}
}

func (w *WebhookSink) deliver(ctx context.Context, event Event) {
	ctx = w.logg.WithFields(ctx, event.fields())
	if err := w.post(ctx, event); err != nil {
		w.metrics.IncDelivery(webhookSinkName, OutcomeFailed)
		w.logg.Error(ctx, "notify.webhook_failed", err)
		return
	}
	w.metrics.IncDelivery(webhookSinkName, OutcomeDelivered)
	w.logg.Debug(ctx, "notify.webhook_delivered")
}

func (w *WebhookSink) post(ctx context.Context, event Event) error {
	body, err := json.Marshal(webhookPayload{ProjectID: w.cfg.ProjectID, Event: event})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	req.Header.Set("X-Project-ID", w.cfg.ProjectID)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookSink) drop(ctx context.Context, event Event, reason string) {
	w.metrics.IncDelivery(webhookSinkName, OutcomeDropped)
	w.logg.Warn(w.logg.WithFields(ctx, event.fields()), reason)
}

// drainTimeout is the fallback used when the caller gives no shutdown budget.
const drainTimeout = 10 * time.Second

// Shutdown closes the sink using the configured shutdown timeout.
func (w *WebhookSink) Shutdown() error {
	timeout := w.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = drainTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return w.Close(ctx)
}
