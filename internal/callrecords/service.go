package callrecords

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for call records.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, rec CallRecord) error
	ListByLead(ctx context.Context, workspaceID, leadID string) ([]CallRecord, error)
	ListByRange(ctx context.Context, workspaceID string, from, to time.Time) ([]CallRecord, error)
}

var (
	ErrInvalidRecord = errors.New("callrecords: invalid record")
	ErrNotFound      = errors.New("callrecords: not found")
)

// Service validates and persists assembled call records.
//
// The session controller performs save gating (call finished, disposition or
// notes present) before assembly; this service re-checks only structural
// requirements so a buggy caller cannot persist a malformed row.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Save(ctx context.Context, rec CallRecord) (CallRecord, error) {
	if s.repo == nil {
		return CallRecord{}, errors.New("callrecords: repository not configured")
	}
	if rec.WorkspaceID == "" || rec.LeadID == "" {
		return CallRecord{}, ErrInvalidRecord
	}
	if rec.Disposition != nil && !rec.Disposition.Code.Valid() {
		return CallRecord{}, ErrInvalidRecord
	}
	if rec.Disposition == nil && len(rec.Notes) == 0 {
		return CallRecord{}, ErrInvalidRecord
	}
	if rec.DurationSeconds < 0 {
		return CallRecord{}, ErrInvalidRecord
	}

	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = s.clock().UTC()
	}
	if rec.Direction == "" {
		rec.Direction = DirectionOutbound
	}

	if err := s.repo.Append(ctx, rec); err != nil {
		return CallRecord{}, err
	}
	return rec, nil
}

func (s *Service) ListByLead(ctx context.Context, workspaceID, leadID string) ([]CallRecord, error) {
	if workspaceID == "" || leadID == "" {
		return nil, ErrInvalidRecord
	}
	return s.repo.ListByLead(ctx, workspaceID, leadID)
}

func (s *Service) ListByRange(ctx context.Context, workspaceID string, from, to time.Time) ([]CallRecord, error) {
	if workspaceID == "" {
		return nil, ErrInvalidRecord
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return nil, ErrInvalidRecord
	}
	return s.repo.ListByRange(ctx, workspaceID, from, to)
}
