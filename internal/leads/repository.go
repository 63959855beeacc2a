package leads

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("leads: not found")
	ErrInvalidLead = errors.New("leads: invalid lead")
)

// Repository is the persistence contract for leads.
//
// All reads must enforce workspace filtering.
type Repository interface {
	Put(ctx context.Context, l Lead) error
	Get(ctx context.Context, workspaceID, leadID string) (Lead, error)
	List(ctx context.Context, workspaceID string) ([]Lead, error)

	// UpdateScore persists the last known conversion score for fallback use.
	UpdateScore(ctx context.Context, workspaceID, leadID string, score int) error
}
