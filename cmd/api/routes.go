package main

import (
	"admissions-crm/internal/auth"
	"admissions-crm/internal/httpapi"
	"admissions-crm/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// Identity echo for debugging token wiring.
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			wid, _ := auth.WorkspaceID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "workspace_id": wid, "role": role})
		})

		// LEAD routes
		leadGroup := v1.Group("/leads")
		leadGroup.Use(httpapi.RequireWorkspaceAndAnyRole(rbac.RoleCounselor, rbac.RoleTeamLead, rbac.RoleAnalyst, rbac.RoleAdmin)...)
		{
			leadGroup.GET("", h.ListLeads)
			leadGroup.GET("/:lead_id", h.GetLead)
			leadGroup.GET("/:lead_id/records", h.ListCallRecords)
		}

		// CALL SESSION routes: the call composer lifecycle.
		// Counselors and team leads run calls; analysts are read-only elsewhere.
		sessions := v1.Group("/sessions")
		sessions.Use(httpapi.RequireWorkspaceAndAnyRole(rbac.RoleCounselor, rbac.RoleTeamLead)...)
		{
			sessions.POST("", h.OpenSession)
			sessions.GET("/scenarios", h.ListScenarios)
			sessions.GET("/:session_id", h.GetSession)
			sessions.DELETE("/:session_id", h.CloseSession)

			sessions.POST("/:session_id/call/start", h.StartCall)
			sessions.POST("/:session_id/call/cancel", h.CancelDial)
			sessions.POST("/:session_id/call/end", h.EndCall)

			sessions.POST("/:session_id/recording/start", h.StartRecording)
			sessions.POST("/:session_id/recording/stop", h.StopRecording)
			sessions.POST("/:session_id/recording/transcript", h.AppendTranscript)

			sessions.POST("/:session_id/notes", h.AddNote)
			sessions.PUT("/:session_id/assignee", h.SetAssignee)
			sessions.POST("/:session_id/assignee/suggest", h.SuggestAssignee)
			sessions.PUT("/:session_id/disposition", h.SetDisposition)
			sessions.PUT("/:session_id/compliance", h.SetCompliance)
			sessions.PUT("/:session_id/scenario", h.SelectScenario)
			sessions.POST("/:session_id/analyze", h.Analyze)

			sessions.POST("/:session_id/save", h.SaveSession)
			sessions.DELETE("/:session_id/draft", h.DiscardDraft)
		}

		// REPORTING routes
		reports := v1.Group("/reports")
		reports.Use(httpapi.RequireWorkspaceAndAnyRole(rbac.RoleTeamLead, rbac.RoleAnalyst, rbac.RoleAdmin)...)
		{
			reports.GET("/outcomes", h.OutcomeSummary)
			reports.GET("/follow-ups", h.FollowUpSummary)
		}
	}
}
