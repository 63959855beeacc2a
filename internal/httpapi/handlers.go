package httpapi

import (
	"errors"
	"net/http"
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/assignment"
	"admissions-crm/internal/auth"
	"admissions-crm/internal/callrecords"
	"admissions-crm/internal/leads"
	"admissions-crm/internal/rbac"
	"admissions-crm/internal/reporting"
	"admissions-crm/internal/session"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Sessions  *session.Manager
	Leads     leads.Repository
	Records   *callrecords.Service
	Reporting *reporting.Service
}

// --- Auth ---

type loginRequest struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Role        string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.WorkspaceID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, workspace_id, role required"})
		return
	}
	if !rbac.IsKnownRole(req.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.WorkspaceID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Leads ---

func (h Handlers) ListLeads(c *gin.Context) {
	if h.Leads == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "leads not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	all, err := h.Leads.List(c.Request.Context(), workspaceID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": all})
}

func (h Handlers) GetLead(c *gin.Context) {
	if h.Leads == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "leads not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	l, err := h.Leads.Get(c.Request.Context(), workspaceID, c.Param("lead_id"))
	if err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead lookup failed"})
		return
	}
	c.JSON(http.StatusOK, l)
}

// --- Call sessions ---

type openSessionRequest struct {
	LeadID string `json:"lead_id"`
}

// OpenSession opens a call composer for a lead. The composer restores any
// saved draft and kicks off lead analysis automatically.
func (h Handlers) OpenSession(c *gin.Context) {
	if h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	userID, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())

	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.LeadID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "lead_id required"})
		return
	}

	ctrl, err := h.Sessions.Open(c.Request.Context(), workspaceID, userID, role, req.LeadID)
	if err != nil {
		switch {
		case errors.Is(err, leads.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		case errors.Is(err, session.ErrLeadBusy):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "lead is open in another composer"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session open failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, snapshotResponse(ctrl.Snapshot()))
}

// session resolves the controller for the session_id path param, writing the
// error response itself when the session does not exist.
func (h Handlers) session(c *gin.Context) (*session.Controller, bool) {
	if h.Sessions == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
		return nil, false
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return nil, false
	}
	ctrl, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	// A session id from another workspace must look like it does not exist.
	if ctrl.Snapshot().WorkspaceID != workspaceID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return ctrl, true
}

func (h Handlers) GetSession(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) StartCall(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.StartCall()
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) CancelDial(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.CancelDial()
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) EndCall(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.EndCall()
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) StartRecording(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.StartRecording()
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) StopRecording(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.StopRecording()
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

type transcriptRequest struct {
	Text string `json:"text"`
}

func (h Handlers) AppendTranscript(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var req transcriptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	ctrl.AppendTranscript(req.Text)
	c.Status(http.StatusNoContent)
}

type noteRequest struct {
	Text string `json:"text"`
}

func (h Handlers) AddNote(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	ctrl.AddNote(req.Text)
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) SetDisposition(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var d callrecords.Disposition
	if err := c.ShouldBindJSON(&d); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := ctrl.SetDisposition(d); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid disposition code"})
		return
	}
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) SetCompliance(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var f callrecords.ComplianceFlags
	if err := c.ShouldBindJSON(&f); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ctrl.SetCompliance(f)
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

func (h Handlers) SelectScenario(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	s := ai.Scenario(req.Scenario)
	if !s.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown scenario"})
		return
	}
	ctrl.SelectScenario(s)
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

type assigneeRequest struct {
	UserID string `json:"user_id"`
}

func (h Handlers) SetAssignee(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var req assigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	ctrl.SetAssignee(req.UserID)
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

type suggestAssigneeRequest struct {
	Pool []struct {
		UserID string `json:"user_id"`
		Weight int    `json:"weight"`
	} `json:"pool"`

	// Suggested is an optional triage-recommended owner.
	Suggested string `json:"suggested,omitempty"`

	// Apply records the result on the session instead of just returning it.
	Apply bool `json:"apply,omitempty"`
}

// SuggestAssignee picks an owner for the session's eventual call record:
// operator choice first, then the triage suggestion, then weighted rotation
// over the supplied pool.
func (h Handlers) SuggestAssignee(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	var req suggestAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	pool := make([]assignment.WeightedCounselor, 0, len(req.Pool))
	for _, p := range req.Pool {
		pool = append(pool, assignment.WeightedCounselor{UserID: p.UserID, Weight: p.Weight})
	}

	snap := ctrl.Snapshot()
	engine := assignment.NewEngine(pool, nil)
	assignee, err := engine.Assign(assignment.Input{
		WorkspaceID: snap.WorkspaceID,
		Explicit:    snap.AssignedTo,
		Suggested:   req.Suggested,
	})
	if err != nil {
		if errors.Is(err, assignment.ErrNoAssignee) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "no eligible assignee"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "assignment failed"})
		return
	}
	if req.Apply {
		ctrl.SetAssignee(assignee)
	}
	c.JSON(http.StatusOK, gin.H{"assignee": assignee, "applied": req.Apply})
}

func (h Handlers) Analyze(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.Analyze()
	c.Status(http.StatusAccepted)
}

func (h Handlers) SaveSession(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	rec, err := ctrl.Save(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrCallActive):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call still active"})
		case errors.Is(err, session.ErrNothingToSave):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "disposition or notes required"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h Handlers) DiscardDraft(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	if err := ctrl.DiscardDraft(c.Request.Context()); err != nil {
		if errors.Is(err, session.ErrCallActive) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call still active"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "discard failed"})
		return
	}
	c.JSON(http.StatusOK, snapshotResponse(ctrl.Snapshot()))
}

func (h Handlers) CloseSession(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.Sessions.Close(c.Request.Context(), ctrl.SessionID()); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) ListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": ai.Catalogue()})
}

// --- Call records ---

func (h Handlers) ListCallRecords(c *gin.Context) {
	if h.Records == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "records not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	leadID := c.Param("lead_id")
	if leadID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "lead_id required"})
		return
	}
	rows, err := h.Records.ListByLead(c.Request.Context(), workspaceID, leadID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "record listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": rows})
}

// --- Reporting ---

func parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err1 := time.Parse(time.RFC3339, c.Query("from"))
	to, err2 := time.Parse(time.RFC3339, c.Query("to"))
	if err1 != nil || err2 != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339 timestamps"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}

func (h Handlers) OutcomeSummary(c *gin.Context) {
	if h.Reporting == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}
	out, err := h.Reporting.OutcomeSummary(c.Request.Context(), reporting.OutcomeSummaryRequest{
		WorkspaceID: workspaceID,
		Range:       r,
		AssignedTo:  c.Query("assigned_to"),
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) FollowUpSummary(c *gin.Context) {
	if h.Reporting == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}
	out, err := h.Reporting.FollowUpSummary(c.Request.Context(), reporting.FollowUpSummaryRequest{
		WorkspaceID: workspaceID,
		Range:       r,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Convenience middleware bundles.

func RequireWorkspaceAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireWorkspace(), rbac.RequireAnyRole(roles...)}
}
