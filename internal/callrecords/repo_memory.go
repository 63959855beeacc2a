package callrecords

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests.
// It enforces workspace isolation on reads.
type MemoryRepo struct {
	mu      sync.Mutex
	records []CallRecord
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, rec CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *MemoryRepo) ListByLead(ctx context.Context, workspaceID, leadID string) ([]CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, 0)
	for _, rec := range r.records {
		if rec.WorkspaceID == workspaceID && rec.LeadID == leadID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListByRange(ctx context.Context, workspaceID string, from, to time.Time) ([]CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, 0)
	for _, rec := range r.records {
		if rec.WorkspaceID != workspaceID {
			continue
		}
		if rec.SavedAt.Before(from) || !rec.SavedAt.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Records returns a copy of everything appended; test helper.
func (r *MemoryRepo) Records() []CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, len(r.records))
	copy(out, r.records)
	return out
}
