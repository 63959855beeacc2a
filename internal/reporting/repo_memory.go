package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"admissions-crm/internal/callrecords"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early development.
// It enforces workspace isolation on reads.
type MemoryRepo struct {
	mu sync.Mutex

	Records []callrecords.CallRecord
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListByRange(ctx context.Context, workspaceID string, from, to time.Time) ([]callrecords.CallRecord, error) {
	if workspaceID == "" {
		return nil, errors.New("workspace_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]callrecords.CallRecord, 0)
	for _, rec := range r.Records {
		if rec.WorkspaceID != workspaceID {
			continue
		}
		if !rec.SavedAt.IsZero() {
			if rec.SavedAt.Before(from) || !rec.SavedAt.Before(to) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
