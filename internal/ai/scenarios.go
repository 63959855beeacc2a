package ai

import (
	"fmt"
	"strings"

	"admissions-crm/internal/leads"
)

// Scenario is a named call-purpose template driving script generation.
type Scenario string

const (
	ScenarioApplication     Scenario = "application"
	ScenarioPortfolio       Scenario = "portfolio"
	ScenarioDeclineRecovery Scenario = "decline-recovery"
	ScenarioPostMeeting     Scenario = "post-meeting-follow-up"
)

// DefaultScenario is used when the composer opens before the operator picks one.
const DefaultScenario = ScenarioApplication

func (s Scenario) Valid() bool {
	switch s {
	case ScenarioApplication, ScenarioPortfolio, ScenarioDeclineRecovery, ScenarioPostMeeting:
		return true
	default:
		return false
	}
}

// ScenarioTemplate holds the per-scenario guardrails and context passed to the
// AI service. The catalogue is fixed; scenarios are part of the API contract.
type ScenarioTemplate struct {
	ID               Scenario
	Title            string
	Tone             string
	MaxWords         int
	RequiredSections []string
	ComplianceNotes  []string
	Urgency          string
	ContextualLinks  []string
}

var scenarioCatalogue = map[Scenario]ScenarioTemplate{
	ScenarioApplication: {
		ID:               ScenarioApplication,
		Title:            "Application follow-up",
		Tone:             "warm, consultative",
		MaxWords:         220,
		RequiredSections: []string{"greeting", "application status", "next steps", "close"},
		ComplianceNotes:  []string{"no admission guarantees", "state call recording disclosure"},
		Urgency:          "normal",
		ContextualLinks:  []string{"/apply/checklist", "/fees/deadlines"},
	},
	ScenarioPortfolio: {
		ID:               ScenarioPortfolio,
		Title:            "Portfolio review call",
		Tone:             "encouraging, specific",
		MaxWords:         260,
		RequiredSections: []string{"greeting", "portfolio feedback", "submission guidance", "close"},
		ComplianceNotes:  []string{"no admission guarantees"},
		Urgency:          "normal",
		ContextualLinks:  []string{"/portfolio/guidelines"},
	},
	ScenarioDeclineRecovery: {
		ID:               ScenarioDeclineRecovery,
		Title:            "Decline recovery",
		Tone:             "empathetic, low pressure",
		MaxWords:         180,
		RequiredSections: []string{"greeting", "acknowledge decision", "alternative options", "close"},
		ComplianceNotes:  []string{"respect do-not-contact preferences", "no admission guarantees"},
		Urgency:          "low",
		ContextualLinks:  []string{"/programmes/alternatives"},
	},
	ScenarioPostMeeting: {
		ID:               ScenarioPostMeeting,
		Title:            "Post-meeting follow-up",
		Tone:             "brief, action oriented",
		MaxWords:         160,
		RequiredSections: []string{"greeting", "meeting recap", "agreed actions", "close"},
		Urgency:          "high",
		ContextualLinks:  []string{"/meetings/reschedule"},
	},
}

// Template returns the catalogue entry for a scenario. Unknown scenarios fall
// back to the default template so callers never dereference a zero value.
func Template(s Scenario) ScenarioTemplate {
	if t, ok := scenarioCatalogue[s]; ok {
		return t
	}
	return scenarioCatalogue[DefaultScenario]
}

// Catalogue lists all scenario templates in a stable order.
func Catalogue() []ScenarioTemplate {
	return []ScenarioTemplate{
		scenarioCatalogue[ScenarioApplication],
		scenarioCatalogue[ScenarioPortfolio],
		scenarioCatalogue[ScenarioDeclineRecovery],
		scenarioCatalogue[ScenarioPostMeeting],
	}
}

// FallbackScript synthesizes a deterministic script from locally known lead
// fields. Used when generation fails so the operator is never left with an
// empty script. Always mentions the lead's name and course interest.
func FallbackScript(lead leads.Lead, s Scenario) string {
	t := Template(s)
	name := strings.TrimSpace(lead.Name)
	if name == "" {
		name = "there"
	}
	course := strings.TrimSpace(lead.CourseInterest)
	if course == "" {
		course = "your chosen programme"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, this is the admissions team calling about %s.\n\n", name, course)
	switch s {
	case ScenarioPortfolio:
		fmt.Fprintf(&b, "I wanted to talk through your portfolio for %s and what reviewers look for in a submission.\n", course)
	case ScenarioDeclineRecovery:
		fmt.Fprintf(&b, "I understand %s may not have been the right fit this time. I'd like to walk through alternative routes that could still work for you.\n", course)
	case ScenarioPostMeeting:
		fmt.Fprintf(&b, "Thanks for meeting with us. I'm following up on the actions we agreed around your %s application.\n", course)
	default:
		fmt.Fprintf(&b, "I'm checking in on your application for %s and whether you have any questions about the next steps.\n", course)
	}
	b.WriteString("\nKey points:\n")
	for _, sec := range t.RequiredSections {
		fmt.Fprintf(&b, "- %s\n", sec)
	}
	if len(t.ComplianceNotes) > 0 {
		b.WriteString("\nReminders: ")
		b.WriteString(strings.Join(t.ComplianceNotes, "; "))
		b.WriteString(".\n")
	}
	return b.String()
}
