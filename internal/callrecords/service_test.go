package callrecords

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSave_FillsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	now := time.Unix(1700000000, 0).UTC()
	svc.clock = func() time.Time { return now }

	rec, err := svc.Save(context.Background(), CallRecord{
		WorkspaceID: "w1",
		LeadID:      "lead-1",
		Notes:       []Note{{NoteID: "n1", Text: "voicemail"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.RecordID == "" {
		t.Fatalf("expected generated record id")
	}
	if !rec.SavedAt.Equal(now) {
		t.Fatalf("expected saved_at %v, got %v", now, rec.SavedAt)
	}
	if rec.Direction != DirectionOutbound {
		t.Fatalf("expected outbound default, got %s", rec.Direction)
	}
	if len(repo.Records()) != 1 {
		t.Fatalf("record not persisted")
	}
}

func TestSave_StructuralValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		rec  CallRecord
	}{
		{"missing workspace", CallRecord{LeadID: "l", Notes: []Note{{Text: "x"}}}},
		{"missing lead", CallRecord{WorkspaceID: "w", Notes: []Note{{Text: "x"}}}},
		{"no disposition or notes", CallRecord{WorkspaceID: "w", LeadID: "l"}},
		{"bad disposition code", CallRecord{WorkspaceID: "w", LeadID: "l", Disposition: &Disposition{Code: "bogus"}}},
		{"negative duration", CallRecord{WorkspaceID: "w", LeadID: "l", DurationSeconds: -1, Notes: []Note{{Text: "x"}}}},
	}
	for _, tc := range cases {
		if _, err := svc.Save(ctx, tc.rec); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", tc.name, err)
		}
	}
}

func TestSave_DispositionAloneSuffices(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.Save(context.Background(), CallRecord{
		WorkspaceID: "w1",
		LeadID:      "lead-1",
		Disposition: &Disposition{Code: DispositionNoAnswer},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestListByLead_WorkspaceIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, ws := range []string{"w1", "w2"} {
		if _, err := svc.Save(ctx, CallRecord{
			WorkspaceID: ws,
			LeadID:      "lead-1",
			Notes:       []Note{{Text: "x"}},
		}); err != nil {
			t.Fatalf("save %s: %v", ws, err)
		}
	}

	rows, err := svc.ListByLead(ctx, "w1", "lead-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].WorkspaceID != "w1" {
		t.Fatalf("workspace isolation broken: %+v", rows)
	}
}

func TestListByRange_Bounds(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	for i, at := range []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)} {
		if _, err := svc.Save(ctx, CallRecord{
			WorkspaceID: "w1",
			LeadID:      "lead-1",
			SavedAt:     at,
			Notes:       []Note{{Text: "x"}},
		}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	rows, err := svc.ListByRange(ctx, "w1", base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Range is half-open: [from, to).
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if _, err := svc.ListByRange(ctx, "w1", base, base); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected invalid range error, got %v", err)
	}
}
