package analysis

import "strings"

var emergencyTerms = []string{
	"chest pain",
	"shortness of breath",
	"breathlessness",
	"fainting",
	"seizure",
	"unconscious",
	"severe bleeding",
	"swelling of face",
	"swelling of tongue",
	"anaphylaxis",
}

var highTerms = []string{
	"high fever",
	"persistent vomiting",
	"bloody stool",
	"black stool",
	"confusion",
	"severe headache",
	"severe rash",
	"yellow eyes",
	"yellow skin",
}

var fallbackRecommendations = map[Severity]string{
	SeverityLow:       "Monitor symptoms, hydrate, and continue tracking. If symptoms persist, consult your doctor.",
	SeverityMedium:    "Consult your doctor within 24 hours for guidance and possible medicine adjustment.",
	SeverityHigh:      "Seek urgent medical care today and avoid the next dose until advised by a clinician.",
	SeverityEmergency: "Seek emergency care immediately or call emergency services now.",
}

// AnalyzeFallback applies deterministic keyword triage. It is the answer of
// last resort and deliberately conservative: three or more symptoms without
// any red-flag term still escalate to medium.
func AnalyzeFallback(req Request) Result {
	symptoms := strings.ToLower(strings.Join(req.Symptoms, " | "))

	severity := SeverityLow
	urgency := UrgencySelfMonitor
	doctorNeeded := false

	switch {
	case containsAny(symptoms, emergencyTerms):
		severity = SeverityEmergency
		urgency = UrgencyEmergencyNow
		doctorNeeded = true
	case containsAny(symptoms, highTerms):
		severity = SeverityHigh
		urgency = UrgencySeekUrgentCare
		doctorNeeded = true
	case len(req.Symptoms) >= 3:
		severity = SeverityMedium
		urgency = UrgencyCallDoctor24h
		doctorNeeded = true
	}

	return Result{
		Severity:                 severity,
		DoctorConsultationNeeded: doctorNeeded,
		Urgency:                  urgency,
		PossibleReasons: []string{
			"Possible medicine side effect",
			"Interaction with another medicine",
			"Underlying condition worsening",
		},
		ImmediateActions: []string{
			"Record exact symptom start time",
			"Avoid self-medicating additional drugs",
			"Keep hydration and rest",
		},
		WarningSigns: []string{
			"Breathing difficulty",
			"Chest pain",
			"Severe swelling/rash",
		},
		Recommendation: fallbackRecommendations[severity],
		Confidence:     0.45,
		Disclaimer:     disclaimer,
	}
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
