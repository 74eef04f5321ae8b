package usage

import (
	"context"
	"fmt"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
)

type store interface {
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	FindPlan(ctx context.Context, code enums.PlanCode) (*models.Plan, error)
	TryConsume(ctx context.Context, slug string, limit *int) (bool, error)
	ResetUsage(ctx context.Context, slug string) (bool, error)
}

// Decision labels reported for every gate call.
const (
	DecisionAllowed    = "allowed"
	DecisionDenied     = "denied"
	DecisionUnmetered  = "unmetered"
	DecisionFailOpen   = "fail_open"
	DecisionFailClosed = "fail_closed"
)

// Options tunes gate policy.
type Options struct {
	// FailClosed denies actions for tenants or plans that cannot be resolved.
	FailClosed bool
}

// Gate enforces plan action limits on quota relevant writes.
type Gate struct {
	store   store
	metrics *metrics.UsageMetrics
	logg    *logger.Logger
	opts    Options
}

func NewGate(st store, m *metrics.UsageMetrics, logg *logger.Logger, opts Options) (*Gate, error) {
	if st == nil {
		return nil, fmt.Errorf("tenant store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Gate{store: st, metrics: m, logg: logg, opts: opts}, nil
}

// CheckAndConsume reports whether tenantSlug may perform one more action of
// the given kind, consuming one unit when its plan is metered. Limit denials
// return false with a nil error; only storage failures return an error.
func (g *Gate) CheckAndConsume(ctx context.Context, tenantSlug string, kind enums.ActionKind) (bool, error) {
	if !kind.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown action kind %q", kind))
	}
	ctx = g.logg.WithFields(ctx, map[string]any{"tenant": tenantSlug, "action": string(kind)})

	tenant, err := g.store.FindBySlug(ctx, tenantSlug)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	if tenant == nil {
		return g.unresolved(ctx, kind, "tenant_not_found"), nil
	}

	plan, err := g.store.FindPlan(ctx, tenant.Plan)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan == nil {
		return g.unresolved(g.logg.WithField(ctx, "plan", string(tenant.Plan)), kind, "plan_not_found"), nil
	}

	if !plan.IsLimited() {
		g.record(ctx, kind, DecisionUnmetered)
		return true, nil
	}

	ok, err := g.store.TryConsume(ctx, tenant.Slug, EffectiveLimit(*plan))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume action")
	}
	if !ok {
		g.record(ctx, kind, DecisionDenied)
		g.logg.Warn(ctx, "usage.limit_reached")
		return false, nil
	}
	g.record(ctx, kind, DecisionAllowed)
	return true, nil
}

// Usage returns the current counter snapshot for a tenant.
func (g *Gate) Usage(ctx context.Context, tenantSlug string) (*Snapshot, error) {
	tenant, err := g.store.FindBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	if tenant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	plan, err := g.store.FindPlan(ctx, tenant.Plan)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	snap := Describe(*tenant, plan)
	return &snap, nil
}

// Reset zeroes the tenant's action counter.
func (g *Gate) Reset(ctx context.Context, tenantSlug string) error {
	ok, err := g.store.ResetUsage(ctx, tenantSlug)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset usage")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
	}
	g.logg.Info(g.logg.WithField(ctx, "tenant", tenantSlug), "usage.reset")
	return nil
}

func (g *Gate) unresolved(ctx context.Context, kind enums.ActionKind, reason string) bool {
	ctx = g.logg.WithField(ctx, "reason", reason)
	if g.opts.FailClosed {
		g.record(ctx, kind, DecisionFailClosed)
		g.logg.Warn(ctx, "usage.unresolved_denied")
		return false
	}
	g.record(ctx, kind, DecisionFailOpen)
	g.logg.Warn(ctx, "usage.unresolved_allowed")
	return true
}

func (g *Gate) record(ctx context.Context, kind enums.ActionKind, decision string) {
	g.metrics.IncDecision(string(kind), decision)
	g.logg.Debug(g.logg.WithField(ctx, "decision", decision), "usage.decision")
}
