package errors

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestDumpCollectsPostgresFault(t *testing.T) {
	pgErr := &pq.Error{Code: "23505", Constraint: "tenants_slug_key", Table: "tenants", Message: "duplicate key value"}
	err := fmt.Errorf("create tenant: %w", Wrap(CodeConflict, pgErr, "slug taken"))

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code got %s", d.Code)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected three chain entries got %d", len(d.Chain))
	}
	if d.Postgres == nil || d.Postgres.Code != "23505" || d.Postgres.Constraint != "tenants_slug_key" {
		t.Fatalf("unexpected postgres fault %+v", d.Postgres)
	}
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(fmt.Errorf("boom"))
	if d.Postgres != nil || d.Code != "" || d.TopMessage != "boom" {
		t.Fatalf("unexpected dump %+v", d)
	}
	if got := Dump(nil); got.TopMessage != "" {
		t.Fatalf("expected empty dump for nil")
	}
}
