package httpapi

import (
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/callrecords"
	"admissions-crm/internal/session"
)

// sessionResponse is the wire shape of a session snapshot.
type sessionResponse struct {
	SessionID   string `json:"session_id"`
	WorkspaceID string `json:"workspace_id"`
	LeadID      string `json:"lead_id"`

	State           string     `json:"state"`
	Direction       string     `json:"direction"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	WrapUpRemaining int        `json:"wrap_up_remaining,omitempty"`
	RecordingLive   bool       `json:"recording_live"`

	Notes       []callrecords.Note          `json:"notes"`
	Disposition *callrecords.Disposition    `json:"disposition,omitempty"`
	Recording   *callrecords.Recording      `json:"recording,omitempty"`
	Compliance  callrecords.ComplianceFlags `json:"compliance"`
	AssignedTo  string                      `json:"assigned_to,omitempty"`

	ScriptScenario string       `json:"script_scenario,omitempty"`
	ScriptText     string       `json:"script_text,omitempty"`
	ScriptFallback bool         `json:"script_fallback,omitempty"`
	Insights       *ai.Insights `json:"insights,omitempty"`
}

func snapshotResponse(s session.Snapshot) sessionResponse {
	out := sessionResponse{
		SessionID:       s.SessionID,
		WorkspaceID:     s.WorkspaceID,
		LeadID:          s.LeadID,
		State:           string(s.State),
		Direction:       string(s.Direction),
		DurationSeconds: s.DurationSeconds,
		WrapUpRemaining: s.WrapUpRemaining,
		RecordingLive:   s.RecordingLive,
		Notes:           s.Notes,
		Disposition:     s.Disposition,
		Recording:       s.Recording,
		Compliance:      s.Compliance,
		AssignedTo:      s.AssignedTo,
		ScriptScenario:  string(s.ScriptScenario),
		ScriptText:      s.ScriptText,
		ScriptFallback:  s.ScriptFallback,
		Insights:        s.Insights,
	}
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		out.StartedAt = &t
	}
	if out.Notes == nil {
		out.Notes = []callrecords.Note{}
	}
	return out
}
