package assistant

import (
	"errors"
	"strings"
)

// Request carries one turn of the patient-facing medical chat. History is a
// flat list of prior transcript lines; a prescription can arrive as plain
// text, as an inline base64 image, or both.
type Request struct {
	UserMessage               string   `json:"user_message"`
	History                   []string `json:"history,omitempty"`
	PrescriptionText          string   `json:"prescription_text,omitempty"`
	PrescriptionImageBase64   string   `json:"prescription_image_base64,omitempty"`
	PrescriptionImageMimeType string   `json:"prescription_image_mime_type,omitempty"`
	AIConsent                 bool     `json:"ai_consent"`
}

func (r Request) Validate() error {
	if !r.AIConsent {
		return errors.New("ai_consent must be accepted")
	}
	if strings.TrimSpace(r.UserMessage) == "" {
		return errors.New("user_message is required")
	}
	return nil
}

func (r Request) hasImage() bool {
	return r.PrescriptionImageBase64 != "" && r.PrescriptionImageMimeType != ""
}

// Result is the structured chat answer. Lists are capped at six entries
// each so the voice/app surfaces stay readable.
type Result struct {
	Reply            string   `json:"reply"`
	MedicineUses     []string `json:"medicine_uses"`
	HealthGuidance   []string `json:"health_guidance"`
	DietGuidance     []string `json:"diet_guidance"`
	ExerciseGuidance []string `json:"exercise_guidance"`
	Precautions      []string `json:"precautions"`
	ImageReceived    bool     `json:"image_received"`
	Emergency        bool     `json:"emergency"`
}

type Source string

const (
	SourceGemini   Source = "gemini"
	SourceFallback Source = "fallback"
)
