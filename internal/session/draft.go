package session

import (
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/callrecords"
)

// Draft is the point-in-time serialization of composer state, keyed by lead
// in the draft store. It survives accidental composer close and is deleted on
// successful save.
//
// No versioning/migration scheme: a draft that fails to decode is treated as
// absent by the store.
type Draft struct {
	LeadID string `json:"lead_id"`

	Notes      []callrecords.Note          `json:"notes,omitempty"`
	Outcome    *callrecords.Disposition    `json:"outcome,omitempty"`
	Recording  *callrecords.Recording      `json:"recording,omitempty"`
	Compliance callrecords.ComplianceFlags `json:"compliance"`
	AssignedTo string                      `json:"assigned_to,omitempty"`

	ScriptScenario string `json:"script_scenario,omitempty"`
	ScriptText     string `json:"script_text,omitempty"`
	ScriptFallback bool   `json:"script_fallback,omitempty"`

	AI *ai.Insights `json:"ai,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
