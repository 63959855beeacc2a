package callrecords

import "time"

// CallRecord is the immutable outcome of one saved call session.
//
// Multi-tenant invariant: WorkspaceID is required on every row.
//
// Records are append-only: once saved they are never updated or deleted.
// Corrections are modelled as new records referencing the same lead.

type CallRecord struct {
	RecordID    string `json:"record_id" db:"record_id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	LeadID      string `json:"lead_id" db:"lead_id"`
	SessionID   string `json:"session_id" db:"session_id"`

	Direction Direction `json:"direction" db:"direction"`

	StartedAt       time.Time `json:"started_at" db:"started_at"`
	SavedAt         time.Time `json:"saved_at" db:"saved_at"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`

	Disposition *Disposition `json:"disposition,omitempty"`
	Notes       []Note       `json:"notes,omitempty"`
	Recording   *Recording   `json:"recording,omitempty"`

	Insights *InsightsSnapshot `json:"insights,omitempty"`

	Compliance ComplianceFlags `json:"compliance"`
	AssignedTo string          `json:"assigned_to,omitempty" db:"assigned_to"`

	// ScriptScenario/ScriptText capture the last generated script, if any.
	ScriptScenario string `json:"script_scenario,omitempty" db:"script_scenario"`
	ScriptText     string `json:"script_text,omitempty" db:"script_text"`

	// ReferenceScripts is the fixed scenario catalogue available at save time.
	ReferenceScripts []string `json:"reference_scripts,omitempty"`
}

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Note is one operator note. Insertion order is chronological; display order
// (newest-first) is a presentation concern.
type Note struct {
	NoteID    string    `json:"note_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DispositionCode is the categorical outcome of a finished call.
type DispositionCode string

const (
	DispositionConnectedInterested    DispositionCode = "connected-interested"
	DispositionConnectedNotInterested DispositionCode = "connected-not-interested"
	DispositionCallbackScheduled      DispositionCode = "callback-scheduled"
	DispositionLeftVoicemail          DispositionCode = "left-voicemail"
	DispositionNoAnswer               DispositionCode = "no-answer"
	DispositionWrongNumber            DispositionCode = "wrong-number"
	DispositionEscalated              DispositionCode = "escalated"
	DispositionResolved               DispositionCode = "resolved"
)

func (c DispositionCode) Valid() bool {
	switch c {
	case DispositionConnectedInterested, DispositionConnectedNotInterested,
		DispositionCallbackScheduled, DispositionLeftVoicemail,
		DispositionNoAnswer, DispositionWrongNumber,
		DispositionEscalated, DispositionResolved:
		return true
	default:
		return false
	}
}

type Disposition struct {
	Code        DispositionCode `json:"code"`
	Description string          `json:"description,omitempty"`
	NextAction  string          `json:"next_action,omitempty"`
	FollowUpAt  *time.Time      `json:"follow_up_at,omitempty"`
	Priority    string          `json:"priority,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// Recording is finalized at stop time: duration frozen, transcript attached.
type Recording struct {
	RecordingID     string    `json:"recording_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int       `json:"duration_seconds"`
	Transcript      string    `json:"transcript,omitempty"`
	Quality         string    `json:"quality,omitempty"`
	Sentiment       string    `json:"sentiment,omitempty"`
}

type ComplianceFlags struct {
	RecordingDisclosed bool `json:"recording_disclosed"`
	ConsentToContact   bool `json:"consent_to_contact"`
	DoNotCall          bool `json:"do_not_call"`
}

// InsightsSnapshot is the AI analysis state frozen into the record at save
// time. Kept storage-local so persisted rows do not depend on the
// orchestration layer's live types.
type InsightsSnapshot struct {
	ConversionProbability int      `json:"conversion_probability"`
	RecommendedStrategy   string   `json:"recommended_strategy,omitempty"`
	RiskAssessment        string   `json:"risk_assessment,omitempty"`
	FollowUps             []string `json:"follow_ups,omitempty"`
	Fallback              bool     `json:"fallback,omitempty"`
}
