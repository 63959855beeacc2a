package session

import (
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/callrecords"
)

// Assemble builds the immutable call-record payload from a session snapshot.
//
// Pure function: no validation, no side effects. Calling it twice on the same
// snapshot yields structurally identical output except for the savedAt
// timestamp supplied by the caller. Save gating happens in the controller
// before assembly is attempted.
func Assemble(snap Snapshot, savedAt time.Time) callrecords.CallRecord {
	rec := callrecords.CallRecord{
		WorkspaceID:     snap.WorkspaceID,
		LeadID:          snap.LeadID,
		SessionID:       snap.SessionID,
		Direction:       snap.Direction,
		StartedAt:       snap.StartedAt,
		SavedAt:         savedAt,
		DurationSeconds: snap.DurationSeconds,
		Disposition:     snap.Disposition,
		Notes:           append([]callrecords.Note(nil), snap.Notes...),
		Recording:       snap.Recording,
		Compliance:      snap.Compliance,
		AssignedTo:      snap.AssignedTo,
		ScriptScenario:  string(snap.ScriptScenario),
		ScriptText:      snap.ScriptText,
	}
	if snap.Insights != nil {
		rec.Insights = &callrecords.InsightsSnapshot{
			ConversionProbability: snap.Insights.ConversionProbability,
			RecommendedStrategy:   snap.Insights.RecommendedStrategy,
			RiskAssessment:        string(snap.Insights.RiskAssessment),
			FollowUps:             append([]string(nil), snap.Insights.FollowUps...),
			Fallback:              snap.Insights.Fallback,
		}
	}
	for _, t := range ai.Catalogue() {
		rec.ReferenceScripts = append(rec.ReferenceScripts, string(t.ID))
	}
	return rec
}
