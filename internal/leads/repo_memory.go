package leads

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
// It enforces workspace isolation on reads.
type MemoryRepo struct {
	mu    sync.Mutex
	leads map[string]Lead // key: lead_id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{leads: map[string]Lead{}}
}

func (r *MemoryRepo) Put(ctx context.Context, l Lead) error {
	if l.LeadID == "" || l.WorkspaceID == "" {
		return ErrInvalidLead
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads[l.LeadID] = l
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, workspaceID, leadID string) (Lead, error) {
	if workspaceID == "" || leadID == "" {
		return Lead{}, ErrInvalidLead
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[leadID]
	if !ok || l.WorkspaceID != workspaceID {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (r *MemoryRepo) List(ctx context.Context, workspaceID string) ([]Lead, error) {
	if workspaceID == "" {
		return nil, ErrInvalidLead
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Lead, 0)
	for _, l := range r.leads {
		if l.WorkspaceID == workspaceID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpdateScore(ctx context.Context, workspaceID, leadID string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[leadID]
	if !ok || l.WorkspaceID != workspaceID {
		return ErrNotFound
	}
	l.Score = score
	r.leads[leadID] = l
	return nil
}
