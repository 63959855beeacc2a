package ai

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"admissions-crm/internal/debounce"
	"admissions-crm/internal/leads"
)

// Gate keys. One in-flight request per kind; a new trigger supersedes the
// prior one (last-scheduled-wins is enforced by the gate).
const (
	gateKeyAnalyze = "analyze"
	gateKeyScript  = "script"
)

// Orchestrator coordinates lead analysis and script generation for one open
// call session. It owns the Insights snapshot and the current script text.
//
// Failure semantics:
// - Analysis failure: prior insights are retained (frozen-on-failure); if none
//   exist yet, a best-effort snapshot is derived from the lead's last known
//   score. The probability field is never left blank.
// - Script failure: a deterministic fallback script is synthesized from local
//   lead fields and flagged so the UI can show a non-blocking indicator.
//
// Not safe for sharing across sessions; each open composer gets its own instance.
type Orchestrator struct {
	client Client
	gate   *debounce.Gate
	log    *slog.Logger
	clock  func() time.Time

	workspaceID string
	lead        leads.Lead

	analyzeWindow time.Duration
	scriptWindow  time.Duration

	mu             sync.Mutex
	insights       Insights
	hasInsights    bool
	script         string
	scriptScenario Scenario
	scriptFallback bool

	// onChange fires after an applied update; the session controller uses it
	// to schedule a draft write.
	onChange func()

	// scoreSink receives fresh probabilities for persistence as the lead's
	// last known score. Best-effort; may be nil.
	scoreSink func(score int)
}

type OrchestratorConfig struct {
	Client      Client
	WorkspaceID string
	Lead        leads.Lead

	// AnalyzeWindow defaults to 500ms, ScriptWindow to 300ms.
	AnalyzeWindow time.Duration
	ScriptWindow  time.Duration

	Logger    *slog.Logger
	OnChange  func()
	ScoreSink func(score int)
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	analyzeWindow := cfg.AnalyzeWindow
	if analyzeWindow <= 0 {
		analyzeWindow = 500 * time.Millisecond
	}
	scriptWindow := cfg.ScriptWindow
	if scriptWindow <= 0 {
		scriptWindow = 300 * time.Millisecond
	}

	o := &Orchestrator{
		client:         cfg.Client,
		log:            log,
		clock:          time.Now,
		workspaceID:    cfg.WorkspaceID,
		lead:           cfg.Lead,
		analyzeWindow:  analyzeWindow,
		scriptWindow:   scriptWindow,
		scriptScenario: DefaultScenario,
		onChange:       cfg.OnChange,
		scoreSink:      cfg.ScoreSink,
	}
	o.gate = debounce.New(func(key string, err error) {
		o.log.Warn("ai request failed", "key", key, "lead_id", o.lead.LeadID, "err", err)
	})
	return o
}

// Analyze schedules a lead analysis through the debounce gate. Rapid repeated
// triggers collapse into one request; a superseded request is cancelled and
// its result discarded silently.
func (o *Orchestrator) Analyze() {
	o.gate.Schedule(gateKeyAnalyze, o.analyzeWindow, o.analyzeOp)
}

func (o *Orchestrator) analyzeOp(ctx context.Context) (func(), error) {
	pred, err := o.client.PredictBatch(ctx, PredictBatchRequest{
		WorkspaceID: o.workspaceID,
		LeadIDs:     []string{o.lead.LeadID},
	})
	if err != nil {
		if ctx.Err() != nil {
			// Superseded; the gate discards this anyway.
			return nil, ctx.Err()
		}
		o.log.Warn("lead analysis failed, keeping prior insights", "lead_id", o.lead.LeadID, "err", err)
		return o.applyAnalysisFallback, nil
	}

	fraction, ok := pred.ProbabilityFor(o.lead.LeadID)
	if !ok {
		o.log.Warn("analysis response missing lead, keeping prior insights", "lead_id", o.lead.LeadID)
		return o.applyAnalysisFallback, nil
	}
	probability := ScaleProbability(fraction)

	// Strategy and follow-ups are enrichment; their failures do not degrade
	// the probability we already have.
	strategy := ""
	if ex, err := o.client.ExplainScore(ctx, ExplainRequest{WorkspaceID: o.workspaceID, LeadID: o.lead.LeadID}); err == nil {
		strategy = strings.TrimSpace(ex.Message)
	}
	var followUps []string
	if tr, err := o.client.Triage(ctx, TriageRequest{WorkspaceID: o.workspaceID, LeadIDs: []string{o.lead.LeadID}}); err == nil {
		if item, ok := tr.ItemFor(o.lead.LeadID); ok {
			if item.NextAction != "" {
				followUps = append(followUps, item.NextAction)
			}
			followUps = append(followUps, item.Reasons...)
		}
	}

	return func() {
		o.mu.Lock()
		o.insights = Insights{
			ConversionProbability: probability,
			RecommendedStrategy:   strategy,
			RiskAssessment:        RiskFor(probability),
			FollowUps:             followUps,
			UpdatedAt:             o.clock().UTC(),
		}
		o.hasInsights = true
		o.mu.Unlock()

		if o.scoreSink != nil {
			o.scoreSink(probability)
		}
		o.notify()
	}, nil
}

// applyAnalysisFallback keeps prior insights intact; if none exist yet it
// derives a best-effort snapshot from the lead's last known score.
func (o *Orchestrator) applyAnalysisFallback() {
	o.mu.Lock()
	if !o.hasInsights {
		p := o.lead.Score
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		o.insights = Insights{
			ConversionProbability: p,
			RiskAssessment:        RiskFor(p),
			Fallback:              true,
			UpdatedAt:             o.clock().UTC(),
		}
		o.hasInsights = true
	}
	o.mu.Unlock()
	o.notify()
}

// GenerateScript records the scenario selection immediately and schedules
// generation through the gate, so rapid scenario cycling collapses to one
// request for the final scenario.
func (o *Orchestrator) GenerateScript(scenario Scenario) {
	if !scenario.Valid() {
		scenario = DefaultScenario
	}
	o.mu.Lock()
	o.scriptScenario = scenario
	strategy := o.insights.RecommendedStrategy
	o.mu.Unlock()

	o.gate.Schedule(gateKeyScript, o.scriptWindow, func(ctx context.Context) (func(), error) {
		return o.scriptOp(ctx, scenario, strategy)
	})
}

func (o *Orchestrator) scriptOp(ctx context.Context, scenario Scenario, strategy string) (func(), error) {
	t := Template(scenario)
	res, err := o.client.GenerateCallScript(ctx, ScriptRequest{
		WorkspaceID: o.workspaceID,
		Lead: LeadSummary{
			LeadID:         o.lead.LeadID,
			Name:           o.lead.Name,
			CourseInterest: o.lead.CourseInterest,
			Intake:         o.lead.Intake,
			Source:         o.lead.Source,
			Status:         string(o.lead.Status),
		},
		Guardrails: Guardrails{
			Tone:             t.Tone,
			MaxWords:         t.MaxWords,
			RequiredSections: t.RequiredSections,
			ComplianceNotes:  t.ComplianceNotes,
		},
		Context: ScriptContext{
			ScenarioID:      string(scenario),
			Strategy:        strategy,
			Urgency:         t.Urgency,
			ContextualLinks: t.ContextualLinks,
		},
	})

	fallback := false
	text := ""
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.Warn("script generation failed, using fallback", "lead_id", o.lead.LeadID, "scenario", scenario, "err", err)
		fallback = true
	} else {
		text = strings.TrimSpace(res.Script)
		if text == "" {
			fallback = true
		}
	}
	if fallback {
		text = FallbackScript(o.lead, scenario)
	}

	return func() {
		o.mu.Lock()
		o.script = text
		o.scriptScenario = scenario
		o.scriptFallback = fallback
		o.mu.Unlock()
		o.notify()
	}, nil
}

// Insights returns the current snapshot. ok is false before the first applied
// analysis or fallback.
func (o *Orchestrator) Insights() (Insights, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.insights, o.hasInsights
}

// Script returns the current script text, its scenario, and whether it is
// fallback content.
func (o *Orchestrator) Script() (text string, scenario Scenario, fallback bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.script, o.scriptScenario, o.scriptFallback
}

// RestoreScript repopulates script state from a draft without triggering
// generation.
func (o *Orchestrator) RestoreScript(text string, scenario Scenario, fallback bool) {
	if !scenario.Valid() {
		scenario = DefaultScenario
	}
	o.mu.Lock()
	o.script = text
	o.scriptScenario = scenario
	o.scriptFallback = fallback
	o.mu.Unlock()
}

// RestoreInsights repopulates the insights snapshot from a draft.
func (o *Orchestrator) RestoreInsights(in Insights) {
	o.mu.Lock()
	o.insights = in
	o.hasInsights = true
	o.mu.Unlock()
}

// Close aborts in-flight work and clears pending timers. Unconditional; safe
// on every exit path.
func (o *Orchestrator) Close() {
	o.gate.Close()
}

func (o *Orchestrator) notify() {
	if o.onChange != nil {
		o.onChange()
	}
}
