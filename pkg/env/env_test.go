package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("SALONBOOK_TEST_VALUE", "  console ")
	if got := Get("SALONBOOK_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected console got %q", got)
	}
	t.Setenv("SALONBOOK_TEST_VALUE", "   ")
	if got := Get("SALONBOOK_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("expected fallback got %q", got)
	}
}
