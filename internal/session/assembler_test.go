package session

import (
	"reflect"
	"testing"
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/callrecords"
)

func sampleSnapshot() Snapshot {
	started := time.Unix(1700000000, 0).UTC()
	return Snapshot{
		SessionID:       "s1",
		WorkspaceID:     "w1",
		LeadID:          "lead-1",
		State:           StateWrapUp,
		Direction:       callrecords.DirectionOutbound,
		StartedAt:       started,
		DurationSeconds: 42,
		Notes: []callrecords.Note{
			{NoteID: "n1", Text: "asked about scholarships", CreatedAt: started.Add(10 * time.Second)},
		},
		Disposition: &callrecords.Disposition{Code: callrecords.DispositionConnectedInterested, NextAction: "send brochure"},
		Recording:   &callrecords.Recording{RecordingID: "rec1", StartedAt: started.Add(5 * time.Second), DurationSeconds: 30, Transcript: "hi"},
		Compliance:  callrecords.ComplianceFlags{RecordingDisclosed: true, ConsentToContact: true},
		AssignedTo:  "user-2",

		ScriptScenario: ai.ScenarioApplication,
		ScriptText:     "script body",
		Insights: &ai.Insights{
			ConversionProbability: 73,
			RecommendedStrategy:   "lead with fee waivers",
			RiskAssessment:        ai.RiskMedium,
			FollowUps:             []string{"call back Friday"},
		},
	}
}

func TestAssemble_MapsAllFields(t *testing.T) {
	snap := sampleSnapshot()
	savedAt := time.Unix(1700000100, 0).UTC()

	rec := Assemble(snap, savedAt)
	if rec.WorkspaceID != "w1" || rec.LeadID != "lead-1" || rec.SessionID != "s1" {
		t.Fatalf("identity fields wrong: %+v", rec)
	}
	if rec.SavedAt != savedAt || rec.StartedAt != snap.StartedAt {
		t.Fatalf("timestamps wrong: %+v", rec)
	}
	if rec.DurationSeconds != 42 {
		t.Fatalf("duration wrong: %d", rec.DurationSeconds)
	}
	if rec.Insights == nil || rec.Insights.ConversionProbability != 73 || rec.Insights.RiskAssessment != "medium" {
		t.Fatalf("insights snapshot wrong: %+v", rec.Insights)
	}
	if rec.ScriptScenario != "application" || rec.ScriptText != "script body" {
		t.Fatalf("script fields wrong: %+v", rec)
	}
	if len(rec.ReferenceScripts) != 4 {
		t.Fatalf("expected 4 reference scripts, got %d", len(rec.ReferenceScripts))
	}
}

func TestAssemble_Pure(t *testing.T) {
	snap := sampleSnapshot()
	savedAt := time.Unix(1700000100, 0).UTC()

	a := Assemble(snap, savedAt)
	b := Assemble(snap, savedAt)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("assembly is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestAssemble_NoInsights(t *testing.T) {
	snap := sampleSnapshot()
	snap.Insights = nil
	rec := Assemble(snap, time.Unix(1700000100, 0).UTC())
	if rec.Insights != nil {
		t.Fatalf("expected nil insights, got %+v", rec.Insights)
	}
}

func TestAssemble_CopiesNotes(t *testing.T) {
	snap := sampleSnapshot()
	rec := Assemble(snap, time.Unix(1700000100, 0).UTC())

	snap.Notes[0].Text = "mutated"
	if rec.Notes[0].Text == "mutated" {
		t.Fatalf("assembled record shares note storage with the snapshot")
	}
}
