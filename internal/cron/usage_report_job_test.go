package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
)

type fakeTenantSource struct {
	tenants []models.Tenant
	plans   []models.Plan
	err     error
}

func (f fakeTenantSource) List(context.Context, tenants.ListTenantsQuery) ([]models.Tenant, error) {
	return f.tenants, f.err
}

func (f fakeTenantSource) ListPlans(context.Context) ([]models.Plan, error) {
	return f.plans, nil
}

func gauge(mfs []*dto.MetricFamily, name, tenant string) (float64, bool) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "tenant" && label.GetValue() == tenant {
					return metric.GetGauge().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func TestUsageReportJobClassifiesTenants(t *testing.T) {
	limit := 10
	source := fakeTenantSource{
		plans: []models.Plan{
			{Code: enums.PlanCodeFree, BasePrice: decimal.Zero, ActionLimit: &limit},
			{Code: enums.PlanCodePro, BasePrice: decimal.NewFromInt(99)},
		},
		tenants: []models.Tenant{
			{Slug: "full", Plan: enums.PlanCodeFree, Status: enums.TenantStatusActive, ActionCount: 10},
			{Slug: "busy", Plan: enums.PlanCodeFree, Status: enums.TenantStatusActive, ActionCount: 8},
			{Slug: "quiet", Plan: enums.PlanCodeFree, Status: enums.TenantStatusTrial, ActionCount: 1},
			{Slug: "paid", Plan: enums.PlanCodePro, Status: enums.TenantStatusActive, ActionCount: 500},
			{Slug: "gone", Plan: enums.PlanCodeFree, Status: enums.TenantStatusCancelled, ActionCount: 10},
		},
	}
	reg := prometheus.NewRegistry()
	job, err := NewUsageReportJob(UsageReportJobParams{
		Logger:  testLogger(),
		Tenants: source,
		Metrics: metrics.NewUsageMetrics(reg),
	})
	require.NoError(t, err)
	assert.Equal(t, "usage-report", job.Name())

	require.NoError(t, job.Run(context.Background()))
	report := job.(*usageReportJob).last
	assert.Equal(t, UsageReport{Tenants: 5, Limited: 3, NearQuota: 1, Exhausted: 1}, report)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	used, ok := gauge(mfs, "salonbook_tenant_actions_consumed", "busy")
	require.True(t, ok)
	assert.Equal(t, float64(8), used)
	limitValue, ok := gauge(mfs, "salonbook_tenant_action_limit", "busy")
	require.True(t, ok)
	assert.Equal(t, float64(10), limitValue)

	_, ok = gauge(mfs, "salonbook_tenant_action_limit", "paid")
	assert.False(t, ok)
	_, ok = gauge(mfs, "salonbook_tenant_actions_consumed", "gone")
	assert.False(t, ok)
}

func TestUsageReportJobPropagatesListErrors(t *testing.T) {
	job, err := NewUsageReportJob(UsageReportJobParams{
		Logger:  testLogger(),
		Tenants: fakeTenantSource{err: errors.New("db down")},
	})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestNewUsageReportJobValidates(t *testing.T) {
	_, err := NewUsageReportJob(UsageReportJobParams{Tenants: fakeTenantSource{}})
	assert.Error(t, err)
	_, err = NewUsageReportJob(UsageReportJobParams{Logger: testLogger()})
	assert.Error(t, err)
}
