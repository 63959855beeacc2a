package leads

import "time"

// Lead is a workspace-scoped enquiry/applicant record.
//
// Multi-tenant invariant: WorkspaceID is required on every row.
//
// NOTE: This is a domain model only. Scoring pipeline internals live behind
// the AI service boundary; Score here is the last locally known value and is
// used only as a fallback signal when a fresh analysis is unavailable.

type Lead struct {
	LeadID      string `json:"lead_id" db:"lead_id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`

	Name  string `json:"name" db:"name"`
	Email string `json:"email,omitempty" db:"email"`
	Phone string `json:"phone,omitempty" db:"phone"`

	// CourseInterest is the programme the lead enquired about (e.g., "MSc Data Science").
	CourseInterest string `json:"course_interest,omitempty" db:"course_interest"`
	Intake         string `json:"intake,omitempty" db:"intake"`
	Source         string `json:"source,omitempty" db:"source"`

	Status LeadStatus `json:"status" db:"status"`

	// Score is a 0-100 integer set by the last successful analysis, if any.
	Score int `json:"score" db:"score"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusEngaged     LeadStatus = "engaged"
	LeadStatusApplied     LeadStatus = "applied"
	LeadStatusEnrolled    LeadStatus = "enrolled"
	LeadStatusUnreachable LeadStatus = "unreachable"
	LeadStatusDeclined    LeadStatus = "declined"
)
