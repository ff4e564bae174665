package analysis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medicare-assistant/internal/config"
	"medicare-assistant/internal/gemini"
)

func geminiStub(t *testing.T, answer string) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, answer)
	}))
	t.Cleanup(srv.Close)
	return gemini.NewClient(config.GeminiConfig{
		APIKey:         "test-key",
		Model:          "gemini-2.5-flash",
		APIBase:        srv.URL,
		RequestTimeout: 5 * time.Second,
	})
}

func geminiFailing(t *testing.T) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	return gemini.NewClient(config.GeminiConfig{
		APIKey:         "test-key",
		Model:          "gemini-2.5-flash",
		APIBase:        srv.URL,
		RequestTimeout: 5 * time.Second,
	})
}

func TestAnalyzeModelPathNormalizes(t *testing.T) {
	answer := `{"severity":"HIGHLY UNUSUAL","doctor_consultation_needed":false,` +
		`"urgency":"panic","possible_reasons":["  reason  ","", "other"],` +
		`"immediate_actions":["rest"],"warning_signs":[],` +
		`"recommendation":"  see a doctor  ","confidence":3.5}`
	eng := NewEngine(geminiStub(t, answer))

	res, source := eng.Analyze(context.Background(), Request{
		MedicineName: "Metformin",
		Symptoms:     []string{"nausea"},
	})

	if source != SourceGemini {
		t.Fatalf("source = %q, want %q", source, SourceGemini)
	}
	if res.Severity != SeverityMedium {
		t.Fatalf("unknown severity should clamp to medium, got %q", res.Severity)
	}
	if res.Urgency != UrgencyCallDoctor24h {
		t.Fatalf("unknown urgency should follow severity, got %q", res.Urgency)
	}
	if res.Confidence != 1 {
		t.Fatalf("confidence should clamp to 1, got %v", res.Confidence)
	}
	if len(res.PossibleReasons) != 2 || res.PossibleReasons[0] != "reason" {
		t.Fatalf("possible_reasons not cleaned: %v", res.PossibleReasons)
	}
	if res.Recommendation != "see a doctor" {
		t.Fatalf("recommendation not trimmed: %q", res.Recommendation)
	}
	if res.Disclaimer == "" {
		t.Fatal("disclaimer must always be set")
	}
}

func TestAnalyzeModelForcesDoctorForHighSeverity(t *testing.T) {
	answer := `{"severity":"high","doctor_consultation_needed":false,` +
		`"urgency":"seek_urgent_care","recommendation":"go now","confidence":0.9}`
	eng := NewEngine(geminiStub(t, answer))

	res, _ := eng.Analyze(context.Background(), Request{
		MedicineName: "Amoxicillin",
		Symptoms:     []string{"severe rash"},
	})

	if !res.DoctorConsultationNeeded {
		t.Fatal("high severity must force doctor_consultation_needed")
	}
}

func TestAnalyzeFallsBackOnModelFailure(t *testing.T) {
	eng := NewEngine(geminiFailing(t))

	res, source := eng.Analyze(context.Background(), Request{
		MedicineName: "Metformin",
		Symptoms:     []string{"chest pain"},
	})

	if source != SourceFallback {
		t.Fatalf("source = %q, want %q", source, SourceFallback)
	}
	if res.Severity != SeverityEmergency {
		t.Fatalf("severity = %q, want emergency", res.Severity)
	}
}

func TestAnalyzeWithoutClientUsesFallback(t *testing.T) {
	eng := NewEngine(nil)

	res, source := eng.Analyze(context.Background(), Request{
		MedicineName: "Metformin",
		Symptoms:     []string{"mild nausea"},
	})

	if source != SourceFallback {
		t.Fatalf("source = %q, want %q", source, SourceFallback)
	}
	if res.Severity != SeverityLow || res.Urgency != UrgencySelfMonitor {
		t.Fatalf("mild case should stay low/self_monitor, got %q/%q", res.Severity, res.Urgency)
	}
}

func TestFallbackTriageLadder(t *testing.T) {
	cases := []struct {
		name         string
		symptoms     []string
		wantSeverity Severity
		wantUrgency  Urgency
		wantDoctor   bool
	}{
		{"emergency term", []string{"sudden Chest Pain"}, SeverityEmergency, UrgencyEmergencyNow, true},
		{"high term", []string{"high fever", "tired"}, SeverityHigh, UrgencySeekUrgentCare, true},
		{"three symptoms escalate", []string{"nausea", "dizziness", "headache"}, SeverityMedium, UrgencyCallDoctor24h, true},
		{"two mild symptoms stay low", []string{"nausea", "dizziness"}, SeverityLow, UrgencySelfMonitor, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := AnalyzeFallback(Request{MedicineName: "Metformin", Symptoms: tc.symptoms})
			if res.Severity != tc.wantSeverity {
				t.Fatalf("severity = %q, want %q", res.Severity, tc.wantSeverity)
			}
			if res.Urgency != tc.wantUrgency {
				t.Fatalf("urgency = %q, want %q", res.Urgency, tc.wantUrgency)
			}
			if res.DoctorConsultationNeeded != tc.wantDoctor {
				t.Fatalf("doctor_consultation_needed = %v, want %v", res.DoctorConsultationNeeded, tc.wantDoctor)
			}
			if res.Recommendation == "" || res.Disclaimer == "" {
				t.Fatal("fallback must always fill recommendation and disclaimer")
			}
			if res.Confidence != 0.45 {
				t.Fatalf("fallback confidence = %v, want 0.45", res.Confidence)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	if err := (Request{Symptoms: []string{"nausea"}}).Validate(); err == nil {
		t.Fatal("missing medicine_name should fail validation")
	}
	if err := (Request{MedicineName: "Metformin", Symptoms: []string{" "}}).Validate(); err == nil {
		t.Fatal("blank symptoms should fail validation")
	}
	if err := (Request{MedicineName: "Metformin", Symptoms: []string{"nausea"}}).Validate(); err != nil {
		t.Fatalf("valid request failed: %v", err)
	}
}
