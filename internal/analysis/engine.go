package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medicare-assistant/internal/gemini"
	"medicare-assistant/pkg/logger"
)

const maxListItems = 10

// Engine performs side-effect triage. When the Gemini client is configured
// it asks the model for a structured assessment and sanitizes the answer;
// otherwise (or on any model failure) it falls back to keyword rules.
type Engine struct {
	ai *gemini.Client
}

func NewEngine(ai *gemini.Client) *Engine {
	return &Engine{ai: ai}
}

// Analyze never returns an error for model failures: the fallback path
// always yields a usable Result. The returned Source says which path ran.
func (e *Engine) Analyze(ctx context.Context, req Request) (Result, Source) {
	if e.ai != nil {
		res, err := e.analyzeWithModel(ctx, req)
		if err == nil {
			return res, SourceGemini
		}
		logger.From(ctx).Warn("side-effect model analysis failed, using fallback", "error", err)
	}
	return AnalyzeFallback(req), SourceFallback
}

func (e *Engine) analyzeWithModel(ctx context.Context, req Request) (Result, error) {
	raw, err := e.ai.GenerateJSON(ctx, []gemini.Part{{Text: buildPrompt(req)}}, 0.1)
	if err != nil {
		return Result{}, err
	}
	obj, err := gemini.ExtractJSONObject(raw)
	if err != nil {
		return Result{}, err
	}
	payload, err := json.Marshal(obj)
	if err != nil {
		return Result{}, fmt.Errorf("re-encode analysis payload: %w", err)
	}

	var res Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return Result{}, fmt.Errorf("decode analysis payload: %w", err)
	}
	return normalize(res), nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a cautious medical triage assistant. A patient reports ")
	b.WriteString("possible side effects after taking a medicine. Assess severity and ")
	b.WriteString("what the patient should do next. Be conservative: when in doubt, ")
	b.WriteString("escalate.\n\n")
	fmt.Fprintf(&b, "Medicine: %s\n", req.MedicineName)
	if req.Dose != "" {
		fmt.Fprintf(&b, "Dose: %s\n", req.Dose)
	}
	fmt.Fprintf(&b, "Reported symptoms: %s\n", strings.Join(req.Symptoms, ", "))
	if req.PatientAge != nil {
		fmt.Fprintf(&b, "Patient age: %d\n", *req.PatientAge)
	}
	if req.PatientGender != "" {
		fmt.Fprintf(&b, "Patient gender: %s\n", req.PatientGender)
	}
	if len(req.KnownConditions) > 0 {
		fmt.Fprintf(&b, "Known conditions: %s\n", strings.Join(req.KnownConditions, ", "))
	}
	if req.ExtraNotes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.ExtraNotes)
	}
	b.WriteString("\nRespond with ONLY a JSON object with these exact keys:\n")
	b.WriteString(`{"severity": "low|medium|high|emergency", ` +
		`"doctor_consultation_needed": true|false, ` +
		`"urgency": "self_monitor|call_doctor_24h|seek_urgent_care|emergency_now", ` +
		`"possible_reasons": ["..."], "immediate_actions": ["..."], ` +
		`"warning_signs": ["..."], "recommendation": "...", "confidence": 0.0}`)
	return b.String()
}

// normalize clamps a model answer into the documented value space so
// downstream consumers never see out-of-range enums or lists.
func normalize(res Result) Result {
	res.Severity = Severity(strings.ToLower(strings.TrimSpace(string(res.Severity))))
	res.Urgency = Urgency(strings.ToLower(strings.TrimSpace(string(res.Urgency))))

	switch res.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityEmergency:
	default:
		res.Severity = SeverityMedium
	}

	switch res.Urgency {
	case UrgencySelfMonitor, UrgencyCallDoctor24h, UrgencySeekUrgentCare, UrgencyEmergencyNow:
	default:
		res.Urgency = urgencyBySeverity[res.Severity]
	}

	if res.Severity == SeverityHigh || res.Severity == SeverityEmergency {
		res.DoctorConsultationNeeded = true
	}

	if res.Confidence < 0 {
		res.Confidence = 0
	} else if res.Confidence > 1 {
		res.Confidence = 1
	}

	res.PossibleReasons = listify(res.PossibleReasons)
	res.ImmediateActions = listify(res.ImmediateActions)
	res.WarningSigns = listify(res.WarningSigns)
	res.Recommendation = strings.TrimSpace(res.Recommendation)
	res.Disclaimer = disclaimer
	return res
}

func listify(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
