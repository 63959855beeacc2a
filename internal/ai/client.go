package ai

import "context"

// Client defines the boundary to the external AI service.
//
// Rules:
// - No AI vendor SDK calls outside this package's adapters.
// - Response shapes are explicit structs with optional fields; a missing field
//   means "unknown" and must never crash a caller.
// - Business logic depends only on this interface, never on the HTTP adapter.
type Client interface {
	Name() string
	HealthCheck(ctx context.Context) error

	PredictBatch(ctx context.Context, req PredictBatchRequest) (PredictBatchResult, error)
	Triage(ctx context.Context, req TriageRequest) (TriageResult, error)
	GenerateCallScript(ctx context.Context, req ScriptRequest) (ScriptResult, error)
	ExplainScore(ctx context.Context, req ExplainRequest) (ExplainResult, error)
}

type PredictBatchRequest struct {
	WorkspaceID string   `json:"workspace_id"`
	LeadIDs     []string `json:"lead_ids"`
}

type PredictBatchResult struct {
	Predictions []Prediction `json:"predictions"`
}

// Prediction carries the model output for one lead.
// Probability is a 0.0-1.0 fraction; display scaling happens downstream.
type Prediction struct {
	LeadID      string  `json:"lead_id"`
	Probability float64 `json:"probability"`
}

// ProbabilityFor returns the fraction for a lead, if present.
func (r PredictBatchResult) ProbabilityFor(leadID string) (float64, bool) {
	for _, p := range r.Predictions {
		if p.LeadID == leadID {
			return p.Probability, true
		}
	}
	return 0, false
}

type TriageRequest struct {
	WorkspaceID string   `json:"workspace_id"`
	LeadIDs     []string `json:"lead_ids"`
}

type TriageResult struct {
	Items   []TriageItem   `json:"items"`
	Summary *TriageSummary `json:"summary,omitempty"`
}

type TriageItem struct {
	ID         string   `json:"id"`
	NextAction string   `json:"next_action,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}

type TriageSummary struct {
	TopReasons []string `json:"top_reasons,omitempty"`
}

// ItemFor returns the triage item for a lead, if present.
func (r TriageResult) ItemFor(leadID string) (TriageItem, bool) {
	for _, it := range r.Items {
		if it.ID == leadID {
			return it, true
		}
	}
	return TriageItem{}, false
}

// ScriptRequest is the full payload for script generation: lead summary,
// guardrails, and call context.
type ScriptRequest struct {
	WorkspaceID string `json:"workspace_id"`

	Lead       LeadSummary   `json:"lead"`
	Guardrails Guardrails    `json:"guardrails"`
	Context    ScriptContext `json:"context"`
}

type LeadSummary struct {
	LeadID         string `json:"lead_id"`
	Name           string `json:"name"`
	CourseInterest string `json:"course_interest,omitempty"`
	Intake         string `json:"intake,omitempty"`
	Source         string `json:"source,omitempty"`
	Status         string `json:"status,omitempty"`
}

type Guardrails struct {
	Tone             string   `json:"tone"`
	MaxWords         int      `json:"max_words"`
	RequiredSections []string `json:"required_sections"`
	ComplianceNotes  []string `json:"compliance_notes,omitempty"`
}

type ScriptContext struct {
	ScenarioID      string   `json:"scenario_id"`
	Strategy        string   `json:"strategy,omitempty"`
	Urgency         string   `json:"urgency,omitempty"`
	ContextualLinks []string `json:"contextual_links,omitempty"`
}

type ScriptResult struct {
	Script   string            `json:"script"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ExplainRequest struct {
	WorkspaceID string `json:"workspace_id"`
	LeadID      string `json:"lead_id"`
}

type ExplainResult struct {
	Message string   `json:"message,omitempty"`
	Factors []Factor `json:"factors,omitempty"`
}

type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight,omitempty"`
}
