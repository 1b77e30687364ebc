package query

import (
	"reflect"
	"testing"
)

func TestPlan_Standard(t *testing.T) {
	got := Plan("fintech investors", Standard)
	want := []string{
		"fintech investors email contact",
		"fintech investors investor email",
		"fintech investors contact information",
		"fintech investors team email",
		"fintech investors founder email",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() = %v, want %v", got, want)
	}
}

func TestPlan_QuotedTopic(t *testing.T) {
	got := Plan("  solar  ", Quick)
	want := []string{
		`"solar" contact email`,
		`"solar" startup founder email "@"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() = %v, want %v", got, want)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	a := Plan("biotech", Deep)
	b := Plan("biotech", Deep)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical plans for the same topic")
	}
	if len(a) < 10 {
		t.Errorf("expected deep set to have at least 10 queries, got %d", len(a))
	}
}

func TestPlan_EmptyTopic(t *testing.T) {
	if got := Plan("   ", Standard); got != nil {
		t.Errorf("expected nil for empty topic, got %v", got)
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range []string{"quick", "Standard", "deep", ""} {
		if _, err := Builtin(name); err != nil {
			t.Errorf("Builtin(%q) returned error: %v", name, err)
		}
	}
	if _, err := Builtin("nope"); err == nil {
		t.Error("expected error for unknown set")
	}
}
