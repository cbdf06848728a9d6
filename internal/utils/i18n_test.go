package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "好的" {
		t.Fatalf("fallback to zh failed: %s", got)
	}
	if got := T("en", "health.ok"); got != "ok" {
		t.Fatalf("en lookup failed: %s", got)
	}
	if got := T("zh", "no.such.key"); got != "no.such.key" {
		t.Fatalf("missing key should echo: %s", got)
	}
}
