package assignment

import (
	"math/rand"
	"testing"
)

func TestAssign_ExplicitWins(t *testing.T) {
	e := NewEngine([]WeightedCounselor{{UserID: "a", Weight: 1}}, rand.New(rand.NewSource(1)))
	got, err := e.Assign(Input{WorkspaceID: "w", Explicit: "chosen", Suggested: "a"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "chosen" {
		t.Fatalf("expected explicit assignee, got %q", got)
	}
}

func TestAssign_SuggestedHonoredWhenInPool(t *testing.T) {
	e := NewEngine([]WeightedCounselor{{UserID: "a", Weight: 1}, {UserID: "b", Weight: 1}}, rand.New(rand.NewSource(1)))
	got, err := e.Assign(Input{WorkspaceID: "w", Suggested: "b"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "b" {
		t.Fatalf("expected suggested assignee, got %q", got)
	}
}

func TestAssign_SuggestedOutsidePoolFallsBackToWeighted(t *testing.T) {
	e := NewEngine([]WeightedCounselor{{UserID: "a", Weight: 1}}, rand.New(rand.NewSource(1)))
	got, err := e.Assign(Input{WorkspaceID: "w", Suggested: "stranger"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "a" {
		t.Fatalf("expected pool member, got %q", got)
	}
}

func TestAssign_WeightedSelectionRespectsWeights(t *testing.T) {
	e := NewEngine([]WeightedCounselor{
		{UserID: "heavy", Weight: 9},
		{UserID: "light", Weight: 1},
		{UserID: "ignored", Weight: 0},
	}, rand.New(rand.NewSource(42)))

	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		got, err := e.Assign(Input{WorkspaceID: "w"})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		counts[got]++
	}
	if counts["ignored"] != 0 {
		t.Fatalf("zero-weight counselor must never be picked")
	}
	if counts["heavy"] <= counts["light"] {
		t.Fatalf("expected heavy to dominate: %v", counts)
	}
}

func TestAssign_EmptyPool(t *testing.T) {
	e := NewEngine(nil, rand.New(rand.NewSource(1)))
	if _, err := e.Assign(Input{WorkspaceID: "w"}); err == nil {
		t.Fatalf("expected error for empty pool")
	}
}

func TestAssign_RequiresWorkspace(t *testing.T) {
	e := NewEngine([]WeightedCounselor{{UserID: "a", Weight: 1}}, rand.New(rand.NewSource(1)))
	if _, err := e.Assign(Input{}); err == nil {
		t.Fatalf("expected error for missing workspace")
	}
}
