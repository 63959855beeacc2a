package drafts

import (
	"context"
	"testing"
)

type payload struct {
	Notes []string `json:"notes"`
	Owner string   `json:"owner,omitempty"`
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := payload{Notes: []string{"a", "b"}, Owner: "u1"}
	if err := s.Put(ctx, "lead-1", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out payload
	ok, err := s.Get(ctx, "lead-1", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out.Notes) != 2 || out.Owner != "u1" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	s := NewMemoryStore()
	var out payload
	ok, err := s.Get(context.Background(), "nope", &out)
	if err != nil || ok {
		t.Fatalf("expected absent, ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore_CorruptReadsAsAbsent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Put(ctx, "lead-1", payload{Owner: "u1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Corrupt("lead-1")

	var out payload
	ok, err := s.Get(ctx, "lead-1", &out)
	if err != nil {
		t.Fatalf("corrupt draft must not error: %v", err)
	}
	if ok {
		t.Fatalf("corrupt draft must read as absent")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Put(ctx, "lead-1", payload{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, "lead-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var out payload
	if ok, _ := s.Get(ctx, "lead-1", &out); ok {
		t.Fatalf("expected deleted")
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "lead-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStore_OverwriteLastWriterWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, "lead-1", payload{Owner: "first"})
	_ = s.Put(ctx, "lead-1", payload{Owner: "second"})

	var out payload
	if ok, _ := s.Get(ctx, "lead-1", &out); !ok || out.Owner != "second" {
		t.Fatalf("expected last write to win, got %+v", out)
	}
}
