package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to workspace users by default.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.WorkspaceID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogSessionSaved records a successful call-session save.
func (s *Service) LogSessionSaved(ctx context.Context, workspaceID, actorUserID, actorRole, leadID, sessionID, recordID string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeSessionSaved,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		LeadID:      leadID,
		SessionID:   sessionID,
		RecordID:    recordID,
		Message:     "call session saved",
	})
}

// LogDraftDiscarded records an operator explicitly throwing away a draft.
func (s *Service) LogDraftDiscarded(ctx context.Context, workspaceID, actorUserID, actorRole, leadID string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeDraftDiscarded,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		LeadID:      leadID,
		Message:     "draft discarded",
	})
}
