package catalog

import (
	"testing"

	"github.com/stadam23/orejita-planner/internal/model"
)

func TestFindMatching_ReturnsEntryWhenDeltaMatches(t *testing.T) {
	table := []DecryptorEntry{
		{TypeID: 34203, RunsModifier: 9, MEModifier: -2, TEModifier: 2, ProbabilityMultiplier: 0.6},
		{TypeID: 34204, RunsModifier: 1, MEModifier: 2, TEModifier: -1, ProbabilityMultiplier: 1.8},
	}
	base := model.NewBlueprint(100, 1, -2, 4)
	configured := model.NewBlueprint(100, 10, -4, 6)

	d, ok := FindMatching(table, 34203, base, configured)
	if !ok {
		t.Fatal("expected a match for decryptor 34203")
	}
	if d.ProbabilityMultiplier != 0.6 {
		t.Fatalf("ProbabilityMultiplier = %v, want 0.6", d.ProbabilityMultiplier)
	}
}

func TestFindMatching_RejectsDeltaMismatch(t *testing.T) {
	table := []DecryptorEntry{
		{TypeID: 34203, RunsModifier: 9, MEModifier: -2, TEModifier: 2, ProbabilityMultiplier: 0.6},
	}
	base := model.NewBlueprint(100, 1, -2, 4)
	// configured doesn't reflect decryptor 34203's delta against base.
	configured := model.NewBlueprint(100, 1, -2, 4)

	if _, ok := FindMatching(table, 34203, base, configured); ok {
		t.Fatal("expected no match when the configured outcome doesn't reflect the decryptor's delta")
	}
	if _, ok := FindMatching(table, 99999, base, model.NewBlueprint(100, 10, -4, 6)); ok {
		t.Fatal("expected no match for an unconfigured decryptor type")
	}
}

func TestApply_AddsDeltasToBase(t *testing.T) {
	base := model.NewBlueprint(100, 1, 2, 3)
	d := DecryptorEntry{TypeID: 1, RunsModifier: 3, MEModifier: -1, TEModifier: 2}

	got := Apply(base, d)
	want := model.NewBlueprint(100, 4, 1, 5)
	if got != want {
		t.Fatalf("Apply() = %+v, want %+v", got, want)
	}
}
