package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/internal/usage"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
)

// nearQuotaRatio flags limited tenants that have consumed this share of their plan.
const nearQuotaRatio = 0.8

type UsageReportJobParams struct {
	Logger  *logger.Logger
	Tenants tenantUsageSource
	Metrics *metrics.UsageMetrics
}

type tenantUsageSource interface {
	List(ctx context.Context, query tenants.ListTenantsQuery) ([]models.Tenant, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// UsageReport summarises one pass over the tenant base.
type UsageReport struct {
	Tenants   int
	Limited   int
	NearQuota int
	Exhausted int
}

func NewUsageReportJob(params UsageReportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tenants == nil {
		return nil, fmt.Errorf("tenant source required")
	}
	return &usageReportJob{
		logg:    params.Logger,
		tenants: params.Tenants,
		metrics: params.Metrics,
	}, nil
}

type usageReportJob struct {
	logg    *logger.Logger
	tenants tenantUsageSource
	metrics *metrics.UsageMetrics
	last    UsageReport
}

func (j *usageReportJob) Name() string { return "usage-report" }

func (j *usageReportJob) Run(ctx context.Context) error {
	plans, err := j.tenants.ListPlans(ctx)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}
	byCode := make(map[enums.PlanCode]*models.Plan, len(plans))
	for i := range plans {
		byCode[plans[i].Code] = &plans[i]
	}

	items, err := j.tenants.List(ctx, tenants.ListTenantsQuery{})
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	report := UsageReport{Tenants: len(items)}
	for _, tenant := range items {
		if tenant.Status == enums.TenantStatusCancelled {
			continue
		}
		snap := usage.Describe(tenant, byCode[tenant.Plan])
		limit := -1
		if snap.Limit != nil {
			limit = *snap.Limit
		}
		j.metrics.SetTenantUsage(snap.Tenant, snap.Plan, snap.Used, limit)
		if !snap.Limited {
			continue
		}
		report.Limited++

		tenantCtx := j.logg.WithFields(ctx, map[string]any{
			"tenant": snap.Tenant,
			"plan":   snap.Plan,
			"used":   snap.Used,
			"limit":  limit,
		})
		switch {
		case snap.Exhausted:
			report.Exhausted++
			j.logg.Warn(tenantCtx, "usage.quota_exhausted")
		case limit > 0 && float64(snap.Used) >= nearQuotaRatio*float64(limit):
			report.NearQuota++
			j.logg.Info(tenantCtx, "usage.quota_near")
		}
	}
	j.last = report

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"tenants":    report.Tenants,
		"limited":    report.Limited,
		"near_quota": report.NearQuota,
		"exhausted":  report.Exhausted,
	})
	j.logg.Info(logCtx, "usage report complete")
	return nil
}
