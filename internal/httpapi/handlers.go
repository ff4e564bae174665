package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"medicare-assistant/internal/analysis"
	"medicare-assistant/internal/assistant"
	"medicare-assistant/internal/audit"
	"medicare-assistant/internal/auth"
	"medicare-assistant/internal/rbac"
	"medicare-assistant/internal/reminder"
	"medicare-assistant/internal/reporting"
	"medicare-assistant/internal/session"
	"medicare-assistant/internal/telephony"

	"github.com/gin-gonic/gin"
)

const contentTypeXML = "application/xml"

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return
// JSON (or TwiML on the webhook paths).
type Handlers struct {
	Auth      *auth.Manager
	Reminder  *reminder.Service
	Analysis  *analysis.Engine
	Assistant *assistant.Engine
	Reporting *reporting.Service
	Audit     *audit.Service
}

// --- Health ---

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": "medicare-api"})
}

// --- Side-effect analysis ---

func (h Handlers) AnalyzeSideEffects(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}
	if err := req.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	res, source := h.Analysis.Analyze(c.Request.Context(), req)
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"source":       source,
		"data":         res,
		"generated_at": time.Now().UTC(),
	})
}

// --- Medical assistant chat ---

func (h Handlers) AssistantChat(c *gin.Context) {
	var req assistant.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}
	if err := req.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	res, source := h.Assistant.Chat(c.Request.Context(), req)
	c.JSON(http.StatusOK, gin.H{"ok": true, "source": source, "data": res})
}

// --- Voice reminder ---

type placeCallRequest struct {
	ToPhone       string `json:"to_phone"`
	PatientName   string `json:"patient_name"`
	CaregiverName string `json:"caregiver_name"`
	MedicineName  string `json:"medicine_name"`
	Dosage        string `json:"dosage"`
	ScheduledTime string `json:"scheduled_time"`
	DateKey       string `json:"date_key"`
	Mode          string `json:"mode"`
}

func (h Handlers) PlaceReminderCall(c *gin.Context) {
	var req placeCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid json"})
		return
	}

	out, err := h.Reminder.StartCall(c.Request.Context(), reminder.StartCallRequest{
		ToPhone:       req.ToPhone,
		PatientName:   req.PatientName,
		CaregiverName: req.CaregiverName,
		MedicineName:  req.MedicineName,
		Dosage:        req.Dosage,
		ScheduledTime: req.ScheduledTime,
		DateKey:       req.DateKey,
		Mode:          session.ParseMode(req.Mode),
	})
	switch {
	case errors.Is(err, reminder.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	case errors.Is(err, telephony.ErrDispatchFailed):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"ok": false, "error": "call dispatch failed"})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "voice call failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gin.H{
		"call_sid": out.CallID,
		"status":   out.Status,
	}})
}

// VoicePrompt serves the voice-instruction document the provider fetches
// at call connect time. Display values ride on the query string so the
// document can still be rendered when the session lookup misses.
func (h Handlers) VoicePrompt(c *gin.Context) {
	cb, err := telephony.ParsePromptCallback(c.Request)
	if err != nil {
		h.benignTwiML(c)
		return
	}

	params := telephony.PromptParams{
		PatientName:   c.Query("patient_name"),
		CaregiverName: c.Query("caregiver_name"),
		MedicineName:  c.Query("medicine_name"),
		Dosage:        c.Query("dosage"),
		ScheduledTime: c.Query("scheduled_time"),
		DateKey:       c.Query("date_key"),
		Mode:          session.ParseMode(c.Query("mode")),
	}

	doc, err := h.Reminder.PromptInstructions(c.Request.Context(), cb.CallSid, params)
	if err != nil {
		h.benignTwiML(c)
		return
	}
	c.Data(http.StatusOK, contentTypeXML, []byte(doc))
}

// VoiceGather receives the callee's speech/digit response (or the empty
// payload of an elapsed gather window).
func (h Handlers) VoiceGather(c *gin.Context) {
	cb, err := telephony.ParseGatherCallback(c.Request)
	if err != nil {
		h.benignTwiML(c)
		return
	}

	doc, err := h.Reminder.HandleGather(c.Request.Context(), cb)
	if err != nil {
		h.benignTwiML(c)
		return
	}
	c.Data(http.StatusOK, contentTypeXML, []byte(doc))
}

// VoiceStatus receives call-progress callbacks. It always answers 200 so
// the provider does not retry; failures are logged and audited internally.
func (h Handlers) VoiceStatus(c *gin.Context) {
	cb, err := telephony.ParseStatusCallback(c.Request)
	if err == nil {
		_ = h.Reminder.HandleStatus(c.Request.Context(), cb)
	}
	c.String(http.StatusOK, "ok")
}

func (h Handlers) CallResult(c *gin.Context) {
	callSid := c.Param("call_sid")
	rec, err := h.Reminder.GetResult(c.Request.Context(), callSid)
	if errors.Is(err, reminder.ErrUnknownCall) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "error": "call result not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "result lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": rec})
}

func (h Handlers) benignTwiML(c *gin.Context) {
	doc, err := telephony.RenderGoodbye()
	if err != nil {
		c.String(http.StatusOK, "")
		return
	}
	c.Data(http.StatusOK, contentTypeXML, []byte(doc))
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair for the operational endpoints.
//
// NOTE: Demo credential check only; real deployments must validate
// credentials against a user store.
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
	if req.UserID == "" || !rbac.Valid(req.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id and a valid role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Operational reports ---

func (h Handlers) AdherenceReport(c *gin.Context) {
	out, err := h.Reporting.Adherence(c.Request.Context(), c.Query("date"))
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "date must be YYYY-MM-DD"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": out})
}

func (h Handlers) AuditEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be 1..500"})
			return
		}
		limit = n
	}
	events, err := h.Audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "audit lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": events})
}
