package usage

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

func TestDescribeExhaustedPlan(t *testing.T) {
	limit := 5
	snap := Describe(models.Tenant{Slug: "studio", Plan: "free", ActionCount: 7}, &models.Plan{BasePrice: decimal.Zero, ActionLimit: &limit})
	if !snap.Limited || !snap.Exhausted {
		t.Fatalf("expected limited and exhausted snapshot, got %+v", snap)
	}
	if snap.Remaining == nil || *snap.Remaining != 0 {
		t.Fatalf("remaining should clamp at zero, got %v", snap.Remaining)
	}
}

func TestDescribeUnknownPlanIsUnlimited(t *testing.T) {
	snap := Describe(models.Tenant{Slug: "studio", Plan: "gold", ActionCount: 3}, nil)
	if snap.Limited || snap.Limit != nil {
		t.Fatalf("expected unlimited snapshot, got %+v", snap)
	}
	if snap.Used != 3 {
		t.Fatalf("expected used 3, got %d", snap.Used)
	}
}

func TestEffectiveLimitIgnoresNonPositive(t *testing.T) {
	zero := 0
	if EffectiveLimit(models.Plan{ActionLimit: &zero}) != nil {
		t.Fatal("zero limit should be treated as unbounded")
	}
	ten := 10
	got := EffectiveLimit(models.Plan{ActionLimit: &ten})
	if got == nil || *got != 10 {
		t.Fatalf("expected limit 10, got %v", got)
	}
	*got = 11
	if ten != 10 {
		t.Fatal("EffectiveLimit must copy the limit")
	}
}
