package assistant

import "strings"

var emergencyTerms = []string{
	"chest pain",
	"severe breathlessness",
	"fainting",
	"seizure",
	"unconscious",
	"heavy bleeding",
}

// ChatFallback serves a safe canned answer when the model is unavailable.
// It still scans the user message for red-flag terms so an emergency is
// never answered with generic wellness advice.
func ChatFallback(req Request) Result {
	message := strings.ToLower(req.UserMessage)
	emergency := false
	for _, term := range emergencyTerms {
		if strings.Contains(message, term) {
			emergency = true
			break
		}
	}

	reply := "I can help explain medicines from your prescription and provide health guidance. " +
		"Please share medicine names, schedule, and any symptoms for a more accurate answer."
	if emergency {
		reply = "Your message may include emergency warning signs. " +
			"Please seek immediate medical care or call emergency services now."
	}

	return Result{
		Reply: reply,
		MedicineUses: []string{
			"Share medicine name and purpose to get use-specific guidance.",
			"Follow doctor-prescribed timing and dose exactly.",
		},
		HealthGuidance: []string{
			"Track symptoms with date/time and discuss persistent issues with a clinician.",
			"Do not stop essential medicines abruptly without advice.",
		},
		DietGuidance: []string{
			"Stay hydrated and maintain balanced meals with protein and fiber.",
			"Avoid alcohol unless your doctor confirms safety with medicines.",
		},
		ExerciseGuidance: []string{
			"Use moderate daily activity such as walking unless advised otherwise.",
			"Pause exercise and seek care if dizziness, chest pain, or severe weakness occurs.",
		},
		Precautions: []string{
			"Check drug interactions before adding OTC medicines or supplements.",
			"Report allergy symptoms such as rash, swelling, or breathing trouble urgently.",
		},
		ImageReceived: req.PrescriptionImageBase64 != "",
		Emergency:     emergency,
	}
}
