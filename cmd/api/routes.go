package main

import (
	"medicare-assistant/internal/httpapi"
	"medicare-assistant/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to
// internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		// Patient-facing AI engines.
		v1.POST("/side-effects/analyze", h.AnalyzeSideEffects)
		v1.POST("/assistant/chat", h.AssistantChat)

		// Reminder call orchestration plus provider webhooks.
		// NOTE: The webhook endpoints should be protected by Twilio
		// signature validation in production.
		voice := v1.Group("/voice")
		{
			voice.POST("/reminder/call", h.PlaceReminderCall)
			voice.POST("/twiml", h.VoicePrompt)
			voice.POST("/gather", h.VoiceGather)
			voice.POST("/status", h.VoiceStatus)
			voice.GET("/reminder/result/:call_sid", h.CallResult)
		}

		v1.POST("/auth/login", h.Login)

		// Operational endpoints require a bearer token.
		ops := v1.Group("/ops")
		ops.Use(authMW)
		{
			ops.GET("/reports/adherence", rbac.RequireAnyRole(rbac.RoleCaregiver), h.AdherenceReport)
			ops.GET("/audit/events", rbac.RequireAnyRole(rbac.RoleAdmin), h.AuditEvents)
		}
	}
}
