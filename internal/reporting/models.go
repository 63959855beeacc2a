package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OutcomeSummaryRequest requests aggregated call-outcome metrics.
// Workspace isolation: WorkspaceID is required.

type OutcomeSummaryRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Range       TimeRange `json:"range"`
	AssignedTo  string    `json:"assigned_to,omitempty"`
}

type OutcomeSummary struct {
	WorkspaceID string `json:"workspace_id"`
	AssignedTo  string `json:"assigned_to,omitempty"`

	TotalCalls int `json:"total_calls"`

	// ByDisposition counts records per disposition code; records saved with
	// notes only (no disposition) land in Undispositioned.
	ByDisposition   map[string]int `json:"by_disposition"`
	Undispositioned int            `json:"undispositioned"`

	ConnectedCalls int `json:"connected_calls"`
	RecordedCalls  int `json:"recorded_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	// ConnectRate is connected / total.
	ConnectRate float64 `json:"connect_rate"`
}

// FollowUpSummaryRequest requests upcoming follow-up commitments.

type FollowUpSummaryRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Range       TimeRange `json:"range"`
}

type FollowUpSummary struct {
	WorkspaceID string `json:"workspace_id"`

	// Due counts records whose disposition carries a follow-up timestamp
	// inside the requested range.
	Due int `json:"due"`

	// Callbacks counts callback-scheduled dispositions specifically.
	Callbacks int `json:"callbacks"`

	// HighRisk counts records whose AI snapshot flagged high risk.
	HighRisk int `json:"high_risk"`
}
