package analysis

import (
	"errors"
	"strings"
	"time"
)

// Request describes the symptoms a patient reports after taking a medicine.
type Request struct {
	MedicineName    string     `json:"medicine_name"`
	Dose            string     `json:"dose,omitempty"`
	TakenAt         *time.Time `json:"taken_at,omitempty"`
	Symptoms        []string   `json:"symptoms"`
	PatientAge      *int       `json:"patient_age,omitempty"`
	PatientGender   string     `json:"patient_gender,omitempty"`
	KnownConditions []string   `json:"known_conditions,omitempty"`
	ExtraNotes      string     `json:"extra_notes,omitempty"`
}

// Validate reports why a request cannot be triaged.
func (r Request) Validate() error {
	if strings.TrimSpace(r.MedicineName) == "" {
		return errors.New("medicine_name is required")
	}
	has := false
	for _, s := range r.Symptoms {
		if strings.TrimSpace(s) != "" {
			has = true
			break
		}
	}
	if !has {
		return errors.New("at least one symptom is required")
	}
	return nil
}

type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityEmergency Severity = "emergency"
)

type Urgency string

const (
	UrgencySelfMonitor    Urgency = "self_monitor"
	UrgencyCallDoctor24h  Urgency = "call_doctor_24h"
	UrgencySeekUrgentCare Urgency = "seek_urgent_care"
	UrgencyEmergencyNow   Urgency = "emergency_now"
)

// urgencyBySeverity is the conservative default mapping applied when the
// model returns an unknown urgency value.
var urgencyBySeverity = map[Severity]Urgency{
	SeverityLow:       UrgencySelfMonitor,
	SeverityMedium:    UrgencyCallDoctor24h,
	SeverityHigh:      UrgencySeekUrgentCare,
	SeverityEmergency: UrgencyEmergencyNow,
}

const disclaimer = "This is educational support, not a diagnosis. " +
	"If symptoms are severe or worsening, contact a doctor immediately."

// Result is the stable triage answer shape. It is identical whether the AI
// path or the rule-based fallback produced it, so clients never branch on
// the source.
type Result struct {
	Severity                 Severity `json:"severity"`
	DoctorConsultationNeeded bool     `json:"doctor_consultation_needed"`
	Urgency                  Urgency  `json:"urgency"`
	PossibleReasons          []string `json:"possible_reasons"`
	ImmediateActions         []string `json:"immediate_actions"`
	WarningSigns             []string `json:"warning_signs"`
	Recommendation           string   `json:"recommendation"`
	Confidence               float64  `json:"confidence"`
	Disclaimer               string   `json:"disclaimer"`
}

// Source identifies which engine produced a result.
type Source string

const (
	SourceGemini   Source = "gemini"
	SourceFallback Source = "fallback"
)
