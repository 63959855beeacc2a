package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/audit"
	"admissions-crm/internal/callrecords"
	"admissions-crm/internal/debounce"
	"admissions-crm/internal/drafts"
	"admissions-crm/internal/leads"

	"github.com/google/uuid"
)

// Config holds session lifecycle tunables. Zero values get safe defaults.
type Config struct {
	// ConnectDelay simulates provider connect time between dialing and active.
	ConnectDelay time.Duration

	// WrapUpSeconds is the after-call-work countdown length.
	WrapUpSeconds int

	// AutoEndWrapUp advances wrapup back to idle when the countdown expires
	// and the wrap-up requirement (disposition + next action) is satisfied.
	AutoEndWrapUp bool

	AnalyzeDebounce time.Duration
	ScriptDebounce  time.Duration
	DraftDebounce   time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	if out.ConnectDelay <= 0 {
		out.ConnectDelay = 900 * time.Millisecond
	}
	if out.WrapUpSeconds <= 0 {
		out.WrapUpSeconds = 90
	}
	if out.AnalyzeDebounce <= 0 {
		out.AnalyzeDebounce = 500 * time.Millisecond
	}
	if out.ScriptDebounce <= 0 {
		out.ScriptDebounce = 300 * time.Millisecond
	}
	if out.DraftDebounce <= 0 {
		out.DraftDebounce = 400 * time.Millisecond
	}
	return out
}

var (
	// ErrCallActive rejects save while a call is in progress.
	ErrCallActive = errors.New("session: call still active")
	// ErrNothingToSave rejects save when neither disposition nor notes exist.
	ErrNothingToSave = errors.New("session: disposition or notes required")
	// ErrClosed rejects operations on a torn-down controller.
	ErrClosed = errors.New("session: controller closed")
)

const draftGateKey = "draft"

// Controller owns all mutable state for one open call composer.
//
// Ownership: exactly one controller instance per open composer; no two
// instances share session state. The draft store key (lead id) is effectively
// owned by this controller while the composer is open.
//
// All timers (duration, recording, wrap-up countdown, connect delay) are held
// as explicit handles and released on every transition out of their owning
// state and on Close. A timer surviving Close is a defect.
type Controller struct {
	mu sync.Mutex

	sessionID   string
	workspaceID string
	actorUserID string
	actorRole   string
	lead        leads.Lead
	direction   callrecords.Direction

	cfg   Config
	clock func() time.Time
	log   *slog.Logger

	state           State
	startedAt       time.Time
	durationSeconds int

	notes       []callrecords.Note
	disposition *callrecords.Disposition
	compliance  callrecords.ComplianceFlags
	assignedTo  string

	// recording is the live (unfinalized) recording; lastRecording the most
	// recently finalized one. At most one live recording per session.
	recording     *liveRecording
	lastRecording *callrecords.Recording

	wrapUpRemaining  int
	scriptPrefetched bool

	connectTimer *time.Timer
	durStop      chan struct{}
	recStop      chan struct{}
	acwStop      chan struct{}
	closed       bool

	gate    *debounce.Gate
	orch    *ai.Orchestrator
	drafts  drafts.Store
	records *callrecords.Service
	audit   *audit.Service
}

type liveRecording struct {
	recordingID     string
	startedAt       time.Time
	durationSeconds int
	transcript      strings.Builder
}

// Deps are the controller's collaborators. Drafts, Records, and Audit may be
// nil in tests; the controller degrades to in-memory behavior.
type Deps struct {
	Client  ai.Client
	Drafts  drafts.Store
	Records *callrecords.Service
	Audit   *audit.Service
	Logger  *slog.Logger

	// ScoreSink receives fresh analysis scores for lead persistence; optional.
	ScoreSink func(score int)
}

// NewController builds a controller in the idle state and kicks off the
// automatic composer-open analysis.
func NewController(workspaceID, actorUserID, actorRole string, lead leads.Lead, cfg Config, deps Deps) *Controller {
	cfg = cfg.withDefaults()
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	c := &Controller{
		sessionID:   uuid.NewString(),
		workspaceID: workspaceID,
		actorUserID: actorUserID,
		actorRole:   actorRole,
		lead:        lead,
		direction:   callrecords.DirectionOutbound,
		cfg:         cfg,
		clock:       time.Now,
		log:         log.With("session_id", ""),
		state:       StateIdle,
		drafts:      deps.Drafts,
		records:     deps.Records,
		audit:       deps.Audit,
	}
	c.log = log.With("session_id", c.sessionID, "lead_id", lead.LeadID)

	c.gate = debounce.New(func(key string, err error) {
		c.log.Warn("background task failed", "key", key, "err", err)
	})
	c.orch = ai.NewOrchestrator(ai.OrchestratorConfig{
		Client:        deps.Client,
		WorkspaceID:   workspaceID,
		Lead:          lead,
		AnalyzeWindow: cfg.AnalyzeDebounce,
		ScriptWindow:  cfg.ScriptDebounce,
		Logger:        c.log,
		OnChange:      c.scheduleDraftSave,
		ScoreSink:     deps.ScoreSink,
	})
	return c
}

func (c *Controller) SessionID() string { return c.sessionID }
func (c *Controller) LeadID() string    { return c.lead.LeadID }

// RestoreDraft repopulates editable fields from a persisted draft, if one
// exists. Call once, right after construction. Storage failures and corrupt
// drafts are treated as "no draft".
func (c *Controller) RestoreDraft(ctx context.Context) bool {
	if c.drafts == nil {
		return false
	}
	var d Draft
	ok, err := c.drafts.Get(ctx, c.lead.LeadID, &d)
	if err != nil {
		c.log.Warn("draft read failed, starting clean", "err", err)
		return false
	}
	if !ok {
		return false
	}

	c.mu.Lock()
	c.notes = d.Notes
	c.disposition = d.Outcome
	c.lastRecording = d.Recording
	c.compliance = d.Compliance
	c.assignedTo = d.AssignedTo
	c.mu.Unlock()

	if d.ScriptText != "" || d.ScriptScenario != "" {
		c.orch.RestoreScript(d.ScriptText, ai.Scenario(d.ScriptScenario), d.ScriptFallback)
	}
	if d.AI != nil {
		c.orch.RestoreInsights(*d.AI)
	}
	return true
}

// Analyze triggers a (debounced) lead analysis. Called automatically on
// composer open by the manager, and manually by the operator.
func (c *Controller) Analyze() {
	c.orch.Analyze()
}

// SelectScenario switches the script scenario; rapid cycling collapses to one
// generation request for the final selection.
func (c *Controller) SelectScenario(s ai.Scenario) {
	c.orch.GenerateScript(s)
	c.scheduleDraftSave()
}

// StartCall begins dialing. No-op outside idle.
func (c *Controller) StartCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.state.CanTransitionTo(StateDialing) {
		return
	}
	c.state = StateDialing
	c.durationSeconds = 0
	c.startedAt = c.clock().UTC()
	c.connectTimer = time.AfterFunc(c.cfg.ConnectDelay, c.connect)
}

// connect completes the simulated dial. Runs on the connect timer.
func (c *Controller) connect() {
	c.mu.Lock()
	if c.closed || !c.state.CanTransitionTo(StateActive) {
		c.mu.Unlock()
		return
	}
	c.state = StateActive
	c.connectTimer = nil
	c.startTickerLocked(&c.durStop, c.tickDuration)
	prefetch := !c.scriptPrefetched
	c.scriptPrefetched = true
	c.mu.Unlock()

	if prefetch {
		_, scenario, _ := c.orch.Script()
		c.orch.GenerateScript(scenario)
	}
}

// CancelDial abandons a call before it connects. Explicit user action; no-op
// outside dialing.
func (c *Controller) CancelDial() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDialing {
		return
	}
	if c.connectTimer != nil {
		c.connectTimer.Stop()
		c.connectTimer = nil
	}
	c.state = StateIdle
}

// EndCall moves an active call into wrap-up. No-op outside active.
func (c *Controller) EndCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.CanTransitionTo(StateWrapUp) {
		return
	}
	c.stopTickerLocked(&c.durStop)
	c.finalizeRecordingLocked()
	c.state = StateWrapUp
	c.wrapUpRemaining = c.cfg.WrapUpSeconds
	c.startTickerLocked(&c.acwStop, c.tickWrapUp)
}

// StartRecording begins a recording. Only valid while active, and at most one
// live recording per session.
func (c *Controller) StartRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive || c.recording != nil {
		return
	}
	c.recording = &liveRecording{
		recordingID: uuid.NewString(),
		startedAt:   c.clock().UTC(),
	}
	c.startTickerLocked(&c.recStop, c.tickRecording)
}

// StopRecording finalizes the live recording: duration frozen, transcript
// attached. No-op when nothing is recording.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalizeRecordingLocked()
}

// AppendTranscript adds text to the live recording's append-only transcript
// buffer. Dropped when nothing is recording.
func (c *Controller) AppendTranscript(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recording == nil || text == "" {
		return
	}
	if c.recording.transcript.Len() > 0 {
		c.recording.transcript.WriteString(" ")
	}
	c.recording.transcript.WriteString(text)
}

// AddNote appends an operator note. Insertion order is chronological.
func (c *Controller) AddNote(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	c.notes = append(c.notes, callrecords.Note{
		NoteID:    uuid.NewString(),
		Text:      text,
		CreatedAt: c.clock().UTC(),
	})
	c.mu.Unlock()
	c.scheduleDraftSave()
}

// SetDisposition records the operator-entered outcome.
func (c *Controller) SetDisposition(d callrecords.Disposition) error {
	if !d.Code.Valid() {
		return callrecords.ErrInvalidRecord
	}
	c.mu.Lock()
	c.disposition = &d
	c.mu.Unlock()
	c.scheduleDraftSave()
	return nil
}

func (c *Controller) SetCompliance(f callrecords.ComplianceFlags) {
	c.mu.Lock()
	c.compliance = f
	c.mu.Unlock()
	c.scheduleDraftSave()
}

func (c *Controller) SetAssignee(userID string) {
	c.mu.Lock()
	c.assignedTo = userID
	c.mu.Unlock()
	c.scheduleDraftSave()
}

func (c *Controller) SetDirection(d callrecords.Direction) {
	c.mu.Lock()
	c.direction = d
	c.mu.Unlock()
}

// Save validates, assembles, and persists the session as one immutable call
// record, then deletes the draft and resets the session for the next call.
//
// Gating: rejected while the call is active; rejected when neither a
// disposition nor any notes exist.
func (c *Controller) Save(ctx context.Context) (callrecords.CallRecord, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return callrecords.CallRecord{}, ErrClosed
	}
	if c.state == StateActive {
		c.mu.Unlock()
		return callrecords.CallRecord{}, ErrCallActive
	}
	if c.disposition == nil && len(c.notes) == 0 {
		c.mu.Unlock()
		return callrecords.CallRecord{}, ErrNothingToSave
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	rec := Assemble(snap, c.clock().UTC())

	if c.records != nil {
		saved, err := c.records.Save(ctx, rec)
		if err != nil {
			return callrecords.CallRecord{}, err
		}
		rec = saved
	}

	// A successfully saved session never leaves an orphaned draft.
	c.gate.Cancel(draftGateKey)
	if c.drafts != nil {
		if err := c.drafts.Delete(ctx, c.lead.LeadID); err != nil {
			c.log.Warn("draft delete failed after save", "err", err)
		}
	}
	if c.audit != nil {
		if err := c.audit.LogSessionSaved(ctx, c.workspaceID, c.actorUserID, c.actorRole, c.lead.LeadID, c.sessionID, rec.RecordID); err != nil {
			c.log.Warn("audit append failed", "err", err)
		}
	}

	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	return rec, nil
}

// DiscardDraft throws away unsaved operator input and the persisted draft.
// Rejected while a call is active; the live call's state is untouched.
func (c *Controller) DiscardDraft(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateActive {
		c.mu.Unlock()
		return ErrCallActive
	}
	c.notes = nil
	c.disposition = nil
	c.lastRecording = nil
	c.assignedTo = ""
	c.compliance = callrecords.ComplianceFlags{}
	c.mu.Unlock()

	c.gate.Cancel(draftGateKey)
	if c.drafts != nil {
		if err := c.drafts.Delete(ctx, c.lead.LeadID); err != nil {
			c.log.Warn("draft delete failed", "err", err)
		}
	}
	if c.audit != nil {
		if err := c.audit.LogDraftDiscarded(ctx, c.workspaceID, c.actorUserID, c.actorRole, c.lead.LeadID); err != nil {
			c.log.Warn("audit append failed", "err", err)
		}
	}
	return nil
}

// Close tears the controller down: all timers stopped, in-flight AI work
// aborted, and a final draft flushed so an accidental close loses nothing.
// Idempotent; cleanup runs on every exit path.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.connectTimer != nil {
		c.connectTimer.Stop()
		c.connectTimer = nil
	}
	c.stopTickerLocked(&c.durStop)
	c.stopTickerLocked(&c.recStop)
	c.stopTickerLocked(&c.acwStop)
	c.finalizeRecordingLocked()
	hasContent := c.disposition != nil || len(c.notes) > 0
	draft := c.buildDraftLocked()
	c.mu.Unlock()

	c.orch.Close()
	c.gate.Close()

	if hasContent && c.drafts != nil {
		if err := c.drafts.Put(ctx, c.lead.LeadID, draft); err != nil {
			c.log.Warn("final draft write failed", "err", err)
		}
	}
}

// --- timers ---

// tickDuration fires at 1 Hz while the duration ticker runs. The counter only
// moves in the active state.
func (c *Controller) tickDuration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.durationSeconds++
	}
}

// tickRecording is independent of tickDuration: recording can start after the
// call connects, so the two counters diverge.
func (c *Controller) tickRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive && c.recording != nil {
		c.recording.durationSeconds++
	}
}

func (c *Controller) tickWrapUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateWrapUp {
		return
	}
	c.wrapUpRemaining--
	if c.wrapUpRemaining > 0 {
		return
	}
	c.stopTickerLocked(&c.acwStop)
	if c.cfg.AutoEndWrapUp && c.wrapUpRequirementMetLocked() {
		// Auto-advance to the next call without saving; the draft keeps the
		// operator's input.
		c.state = StateIdle
	}
}

func (c *Controller) wrapUpRequirementMetLocked() bool {
	return c.disposition != nil && strings.TrimSpace(c.disposition.NextAction) != ""
}

func (c *Controller) startTickerLocked(stop *chan struct{}, tick func()) {
	c.stopTickerLocked(stop)
	ch := make(chan struct{})
	*stop = ch
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				tick()
			case <-ch:
				return
			}
		}
	}()
}

func (c *Controller) stopTickerLocked(stop *chan struct{}) {
	if *stop != nil {
		close(*stop)
		*stop = nil
	}
}

// --- internals ---

func (c *Controller) finalizeRecordingLocked() {
	if c.recording == nil {
		return
	}
	c.stopTickerLocked(&c.recStop)
	c.lastRecording = &callrecords.Recording{
		RecordingID:     c.recording.recordingID,
		StartedAt:       c.recording.startedAt,
		DurationSeconds: c.recording.durationSeconds,
		Transcript:      c.recording.transcript.String(),
	}
	c.recording = nil
}

func (c *Controller) resetLocked() {
	c.stopTickerLocked(&c.durStop)
	c.stopTickerLocked(&c.recStop)
	c.stopTickerLocked(&c.acwStop)
	if c.connectTimer != nil {
		c.connectTimer.Stop()
		c.connectTimer = nil
	}
	c.state = StateIdle
	c.durationSeconds = 0
	c.startedAt = time.Time{}
	c.notes = nil
	c.disposition = nil
	c.recording = nil
	c.lastRecording = nil
	c.wrapUpRemaining = 0
	c.scriptPrefetched = false
}

func (c *Controller) scheduleDraftSave() {
	if c.drafts == nil {
		return
	}
	c.gate.Schedule(draftGateKey, c.cfg.DraftDebounce, func(ctx context.Context) (func(), error) {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, nil
		}
		draft := c.buildDraftLocked()
		c.mu.Unlock()

		if err := c.drafts.Put(ctx, c.lead.LeadID, draft); err != nil {
			// Draft persistence is best-effort; never crash the controller.
			c.log.Debug("draft write failed", "err", err)
		}
		return nil, nil
	})
}

func (c *Controller) buildDraftLocked() Draft {
	d := Draft{
		LeadID:     c.lead.LeadID,
		Notes:      append([]callrecords.Note(nil), c.notes...),
		Outcome:    c.disposition,
		Recording:  c.lastRecording,
		Compliance: c.compliance,
		AssignedTo: c.assignedTo,
		UpdatedAt:  c.clock().UTC(),
	}
	text, scenario, fallback := c.orch.Script()
	d.ScriptText = text
	d.ScriptScenario = string(scenario)
	d.ScriptFallback = fallback
	if in, ok := c.orch.Insights(); ok {
		d.AI = &in
	}
	return d
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:       c.sessionID,
		WorkspaceID:     c.workspaceID,
		LeadID:          c.lead.LeadID,
		State:           c.state,
		Direction:       c.direction,
		StartedAt:       c.startedAt,
		DurationSeconds: c.durationSeconds,
		WrapUpRemaining: c.wrapUpRemaining,
		Notes:           append([]callrecords.Note(nil), c.notes...),
		Disposition:     c.disposition,
		Recording:       c.lastRecording,
		Compliance:      c.compliance,
		AssignedTo:      c.assignedTo,
		RecordingLive:   c.recording != nil,
	}
	snap.ScriptText, snap.ScriptScenario, snap.ScriptFallback = c.orch.Script()
	if in, ok := c.orch.Insights(); ok {
		snap.Insights = &in
	}
	return snap
}

// Snapshot is a read-only view of the session for assembly and the HTTP layer.
type Snapshot struct {
	SessionID   string
	WorkspaceID string
	LeadID      string

	State           State
	Direction       callrecords.Direction
	StartedAt       time.Time
	DurationSeconds int
	WrapUpRemaining int
	RecordingLive   bool

	Notes       []callrecords.Note
	Disposition *callrecords.Disposition
	Recording   *callrecords.Recording
	Compliance  callrecords.ComplianceFlags
	AssignedTo  string

	ScriptText     string
	ScriptScenario ai.Scenario
	ScriptFallback bool
	Insights       *ai.Insights
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}
