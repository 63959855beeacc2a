package reporting

import (
	"context"
	"errors"
	"time"

	"admissions-crm/internal/callrecords"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce workspace filtering.
// - Implementations should query the immutable call_records source; the
//   callrecords repositories satisfy this interface directly.
type Repository interface {
	ListByRange(ctx context.Context, workspaceID string, from, to time.Time) ([]callrecords.CallRecord, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// connectedDispositions are outcomes where the lead was actually reached.
var connectedDispositions = map[callrecords.DispositionCode]bool{
	callrecords.DispositionConnectedInterested:    true,
	callrecords.DispositionConnectedNotInterested: true,
	callrecords.DispositionCallbackScheduled:      true,
	callrecords.DispositionEscalated:              true,
	callrecords.DispositionResolved:               true,
}

func (s *Service) OutcomeSummary(ctx context.Context, req OutcomeSummaryRequest) (OutcomeSummary, error) {
	if req.WorkspaceID == "" {
		return OutcomeSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return OutcomeSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return OutcomeSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListByRange(ctx, req.WorkspaceID, req.Range.From, req.Range.To)
	if err != nil {
		return OutcomeSummary{}, err
	}

	out := OutcomeSummary{
		WorkspaceID:   req.WorkspaceID,
		AssignedTo:    req.AssignedTo,
		ByDisposition: map[string]int{},
	}
	for _, r := range rows {
		if req.AssignedTo != "" && r.AssignedTo != req.AssignedTo {
			continue
		}
		out.TotalCalls++
		out.TotalDurationSeconds += r.DurationSeconds
		if r.Recording != nil {
			out.RecordedCalls++
		}
		if r.Disposition == nil {
			out.Undispositioned++
			continue
		}
		out.ByDisposition[string(r.Disposition.Code)]++
		if connectedDispositions[r.Disposition.Code] {
			out.ConnectedCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
		out.ConnectRate = float64(out.ConnectedCalls) / float64(out.TotalCalls)
	}
	return out, nil
}

func (s *Service) FollowUpSummary(ctx context.Context, req FollowUpSummaryRequest) (FollowUpSummary, error) {
	if req.WorkspaceID == "" {
		return FollowUpSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return FollowUpSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return FollowUpSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListByRange(ctx, req.WorkspaceID, req.Range.From, req.Range.To)
	if err != nil {
		return FollowUpSummary{}, err
	}

	out := FollowUpSummary{WorkspaceID: req.WorkspaceID}
	for _, r := range rows {
		if r.Disposition != nil {
			if r.Disposition.Code == callrecords.DispositionCallbackScheduled {
				out.Callbacks++
			}
			if f := r.Disposition.FollowUpAt; f != nil && !f.Before(req.Range.From) && f.Before(req.Range.To) {
				out.Due++
			}
		}
		if r.Insights != nil && r.Insights.RiskAssessment == "high" {
			out.HighRisk++
		}
	}
	return out, nil
}
