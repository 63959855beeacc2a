package leads

import (
	"context"
	"errors"
	"testing"
)

func seedLead() Lead {
	return Lead{
		LeadID:         "lead-1",
		WorkspaceID:    "w1",
		Name:           "Maya Chen",
		CourseInterest: "BSc Computer Science",
		Status:         LeadStatusNew,
		Score:          55,
	}
}

func TestMemoryRepo_PutGet(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Put(ctx, seedLead()); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(ctx, "w1", "lead-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Maya Chen" || got.Score != 55 {
		t.Fatalf("unexpected lead: %+v", got)
	}
}

func TestMemoryRepo_PutRejectsInvalid(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Put(ctx, Lead{WorkspaceID: "w1"}); !errors.Is(err, ErrInvalidLead) {
		t.Fatalf("expected ErrInvalidLead, got %v", err)
	}
	if err := repo.Put(ctx, Lead{LeadID: "l1"}); !errors.Is(err, ErrInvalidLead) {
		t.Fatalf("expected ErrInvalidLead, got %v", err)
	}
}

func TestMemoryRepo_WorkspaceIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Put(ctx, seedLead()); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := repo.Get(ctx, "other-ws", "lead-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign workspace, got %v", err)
	}
	rows, err := repo.List(ctx, "other-ws")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty list, got %d", len(rows))
	}
}

func TestMemoryRepo_UpdateScore(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Put(ctx, seedLead()); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := repo.UpdateScore(ctx, "w1", "lead-1", 73); err != nil {
		t.Fatalf("update score: %v", err)
	}
	got, _ := repo.Get(ctx, "w1", "lead-1")
	if got.Score != 73 {
		t.Fatalf("expected score 73, got %d", got.Score)
	}

	if err := repo.UpdateScore(ctx, "w1", "nope", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
