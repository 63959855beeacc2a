package ai

import (
	"strings"
	"testing"

	"admissions-crm/internal/leads"
)

func TestFallbackScript_MentionsLeadFields(t *testing.T) {
	lead := leads.Lead{LeadID: "l1", Name: "Priya Nair", CourseInterest: "MSc Data Science"}

	for _, tpl := range Catalogue() {
		script := FallbackScript(lead, tpl.ID)
		if !strings.Contains(script, "Priya Nair") {
			t.Fatalf("scenario %s: script missing lead name:\n%s", tpl.ID, script)
		}
		if !strings.Contains(script, "MSc Data Science") {
			t.Fatalf("scenario %s: script missing course interest:\n%s", tpl.ID, script)
		}
	}
}

func TestFallbackScript_DefaultsForMissingFields(t *testing.T) {
	script := FallbackScript(leads.Lead{LeadID: "l1"}, ScenarioApplication)
	if !strings.Contains(script, "there") {
		t.Fatalf("expected name placeholder, got:\n%s", script)
	}
	if !strings.Contains(script, "your chosen programme") {
		t.Fatalf("expected course placeholder, got:\n%s", script)
	}
}

func TestFallbackScript_Deterministic(t *testing.T) {
	lead := leads.Lead{LeadID: "l1", Name: "Ade", CourseInterest: "BA Fine Art"}
	a := FallbackScript(lead, ScenarioPortfolio)
	b := FallbackScript(lead, ScenarioPortfolio)
	if a != b {
		t.Fatalf("fallback script is not deterministic")
	}
}

func TestTemplate_UnknownFallsBackToDefault(t *testing.T) {
	got := Template(Scenario("nope"))
	if got.ID != DefaultScenario {
		t.Fatalf("expected default scenario template, got %s", got.ID)
	}
}

func TestCatalogue_StableOrder(t *testing.T) {
	want := []Scenario{ScenarioApplication, ScenarioPortfolio, ScenarioDeclineRecovery, ScenarioPostMeeting}
	got := Catalogue()
	if len(got) != len(want) {
		t.Fatalf("expected %d scenarios, got %d", len(want), len(got))
	}
	for i, tpl := range got {
		if tpl.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], tpl.ID)
		}
	}
}
