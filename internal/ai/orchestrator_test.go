package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"admissions-crm/internal/leads"
)

// fakeClient returns canned responses and records call counts.
type fakeClient struct {
	mu sync.Mutex

	predictErr  error
	probability float64
	predictN    int

	scriptErr error
	script    string
	scriptN   int
	lastReq   ScriptRequest
}

func (f *fakeClient) Name() string                      { return "fake" }
func (f *fakeClient) HealthCheck(context.Context) error { return nil }

func (f *fakeClient) PredictBatch(ctx context.Context, req PredictBatchRequest) (PredictBatchResult, error) {
	f.mu.Lock()
	f.predictN++
	err := f.predictErr
	f.mu.Unlock()
	if err != nil {
		return PredictBatchResult{}, err
	}
	out := PredictBatchResult{}
	for _, id := range req.LeadIDs {
		out.Predictions = append(out.Predictions, Prediction{LeadID: id, Probability: f.probability})
	}
	return out, nil
}

func (f *fakeClient) Triage(context.Context, TriageRequest) (TriageResult, error) {
	return TriageResult{}, errors.New("unavailable")
}

func (f *fakeClient) ExplainScore(context.Context, ExplainRequest) (ExplainResult, error) {
	return ExplainResult{}, errors.New("unavailable")
}

func (f *fakeClient) GenerateCallScript(ctx context.Context, req ScriptRequest) (ScriptResult, error) {
	f.mu.Lock()
	f.scriptN++
	f.lastReq = req
	f.mu.Unlock()
	if f.scriptErr != nil {
		return ScriptResult{}, f.scriptErr
	}
	return ScriptResult{Script: f.script}, nil
}

func (f *fakeClient) counts() (predict, script int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.predictN, f.scriptN
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func newTestOrchestrator(client Client, lead leads.Lead) *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Client:        client,
		WorkspaceID:   "w1",
		Lead:          lead,
		AnalyzeWindow: 5 * time.Millisecond,
		ScriptWindow:  5 * time.Millisecond,
	})
}

func TestAnalyze_ScalesProbability(t *testing.T) {
	client := &fakeClient{probability: 0.73}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1", Name: "Ana"})
	defer o.Close()

	o.Analyze()
	waitFor(t, func() bool { _, ok := o.Insights(); return ok })

	in, _ := o.Insights()
	if in.ConversionProbability != 73 {
		t.Fatalf("expected probability 73, got %d", in.ConversionProbability)
	}
	if in.RiskAssessment != RiskMedium {
		t.Fatalf("expected medium risk, got %q", in.RiskAssessment)
	}
	if in.Fallback {
		t.Fatalf("fresh analysis must not be marked fallback")
	}
}

func TestAnalyze_BurstCollapsesToOneRequest(t *testing.T) {
	client := &fakeClient{probability: 0.5}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1"})
	defer o.Close()

	for i := 0; i < 10; i++ {
		o.Analyze()
	}
	waitFor(t, func() bool { _, ok := o.Insights(); return ok })

	if n, _ := client.counts(); n != 1 {
		t.Fatalf("expected 1 predict call, got %d", n)
	}
}

func TestAnalyze_FailureKeepsPriorInsights(t *testing.T) {
	client := &fakeClient{probability: 0.9}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1"})
	defer o.Close()

	o.Analyze()
	waitFor(t, func() bool { _, ok := o.Insights(); return ok })

	client.mu.Lock()
	client.predictErr = errors.New("model down")
	client.mu.Unlock()

	o.Analyze()
	waitFor(t, func() bool {
		n, _ := client.counts()
		return n >= 2
	})
	// Give the fallback apply a beat to run.
	time.Sleep(20 * time.Millisecond)

	in, ok := o.Insights()
	if !ok {
		t.Fatalf("expected insights to survive failure")
	}
	if in.ConversionProbability != 90 {
		t.Fatalf("expected frozen probability 90, got %d", in.ConversionProbability)
	}
	if in.Fallback {
		t.Fatalf("retained insights must keep their original provenance")
	}
}

func TestAnalyze_FailureWithNoPriorDerivesFromLeadScore(t *testing.T) {
	client := &fakeClient{predictErr: errors.New("model down")}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1", Score: 45})
	defer o.Close()

	o.Analyze()
	waitFor(t, func() bool { _, ok := o.Insights(); return ok })

	in, _ := o.Insights()
	if in.ConversionProbability != 45 {
		t.Fatalf("expected probability from lead score 45, got %d", in.ConversionProbability)
	}
	if !in.Fallback {
		t.Fatalf("derived insights must be marked fallback")
	}
	if in.RiskAssessment != RiskHigh {
		t.Fatalf("expected high risk at 45, got %q", in.RiskAssessment)
	}
}

func TestGenerateScript_Succeeds(t *testing.T) {
	client := &fakeClient{script: "Hello from the model"}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1", Name: "Ana"})
	defer o.Close()

	o.GenerateScript(ScenarioPortfolio)
	waitFor(t, func() bool { text, _, _ := o.Script(); return text != "" })

	text, scenario, fallback := o.Script()
	if text != "Hello from the model" {
		t.Fatalf("unexpected script %q", text)
	}
	if scenario != ScenarioPortfolio {
		t.Fatalf("expected portfolio scenario, got %s", scenario)
	}
	if fallback {
		t.Fatalf("generated script must not be flagged fallback")
	}
}

func TestGenerateScript_FailureUsesFallback(t *testing.T) {
	client := &fakeClient{scriptErr: errors.New("timeout")}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1", Name: "Ben Osei", CourseInterest: "LLB Law"})
	defer o.Close()

	o.GenerateScript(ScenarioApplication)
	waitFor(t, func() bool { text, _, _ := o.Script(); return text != "" })

	text, _, fallback := o.Script()
	if !fallback {
		t.Fatalf("expected fallback flag")
	}
	if !strings.Contains(text, "Ben Osei") || !strings.Contains(text, "LLB Law") {
		t.Fatalf("fallback script missing lead fields:\n%s", text)
	}
}

func TestGenerateScript_ScenarioCyclingCollapses(t *testing.T) {
	client := &fakeClient{script: "final"}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1"})
	defer o.Close()

	o.GenerateScript(ScenarioApplication)
	o.GenerateScript(ScenarioPortfolio)
	o.GenerateScript(ScenarioDeclineRecovery)
	waitFor(t, func() bool { text, _, _ := o.Script(); return text != "" })

	if _, n := client.counts(); n != 1 {
		t.Fatalf("expected 1 script call, got %d", n)
	}
	client.mu.Lock()
	got := client.lastReq.Context.ScenarioID
	client.mu.Unlock()
	if got != string(ScenarioDeclineRecovery) {
		t.Fatalf("expected final scenario to win, got %q", got)
	}
	_, scenario, _ := o.Script()
	if scenario != ScenarioDeclineRecovery {
		t.Fatalf("expected decline-recovery, got %s", scenario)
	}
}

func TestGenerateScript_ScenarioRecordedBeforeGeneration(t *testing.T) {
	client := &fakeClient{script: "x"}
	o := newTestOrchestrator(client, leads.Lead{LeadID: "l1"})
	defer o.Close()

	o.GenerateScript(ScenarioPostMeeting)
	// Selection is visible immediately, before the debounce window fires.
	_, scenario, _ := o.Script()
	if scenario != ScenarioPostMeeting {
		t.Fatalf("expected immediate scenario update, got %s", scenario)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	o := newTestOrchestrator(&fakeClient{}, leads.Lead{LeadID: "l1"})
	defer o.Close()

	o.RestoreScript("saved text", ScenarioPortfolio, true)
	o.RestoreInsights(Insights{ConversionProbability: 64, RiskAssessment: RiskMedium})

	text, scenario, fallback := o.Script()
	if text != "saved text" || scenario != ScenarioPortfolio || !fallback {
		t.Fatalf("script restore mismatch: %q %s %v", text, scenario, fallback)
	}
	in, ok := o.Insights()
	if !ok || in.ConversionProbability != 64 {
		t.Fatalf("insights restore mismatch: %+v ok=%v", in, ok)
	}
}
