package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medicare-assistant/internal/gemini"
	"medicare-assistant/pkg/logger"
)

const maxListItems = 6

// Engine answers medication and wellness questions. With a configured
// Gemini client it sends the conversation (plus any prescription image) to
// the model; without one, or on any failure, it serves a canned fallback.
type Engine struct {
	ai *gemini.Client
}

func NewEngine(ai *gemini.Client) *Engine {
	return &Engine{ai: ai}
}

// Chat always produces a Result; model failures degrade to the fallback.
func (e *Engine) Chat(ctx context.Context, req Request) (Result, Source) {
	if e.ai != nil {
		res, err := e.chatWithModel(ctx, req)
		if err == nil {
			res.ImageReceived = req.PrescriptionImageBase64 != ""
			return res, SourceGemini
		}
		logger.From(ctx).Warn("assistant model chat failed, using fallback", "error", err)
	}
	return ChatFallback(req), SourceFallback
}

func (e *Engine) chatWithModel(ctx context.Context, req Request) (Result, error) {
	parts := []gemini.Part{{Text: buildPrompt(req)}}
	if req.hasImage() {
		parts = append(parts, gemini.Part{InlineData: &gemini.InlineData{
			MimeType: req.PrescriptionImageMimeType,
			Data:     req.PrescriptionImageBase64,
		}})
	}

	raw, err := e.ai.GenerateJSON(ctx, parts, 0.25)
	if err != nil {
		return Result{}, err
	}
	obj, err := gemini.ExtractJSONObject(raw)
	if err != nil {
		return Result{}, err
	}
	payload, err := json.Marshal(obj)
	if err != nil {
		return Result{}, fmt.Errorf("re-encode chat payload: %w", err)
	}

	var res Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return Result{}, fmt.Errorf("decode chat payload: %w", err)
	}
	return normalize(res), nil
}

func buildPrompt(req Request) string {
	history := "none"
	if len(req.History) > 0 {
		lines := make([]string, len(req.History))
		for i, entry := range req.History {
			lines[i] = "- " + entry
		}
		history = strings.Join(lines, "\n")
	}
	prescription := req.PrescriptionText
	if prescription == "" {
		prescription = "none"
	}
	imageNote := "No prescription image attached."
	if req.hasImage() {
		imageNote = "A prescription image is attached. Extract relevant medicine details from it."
	}

	var b strings.Builder
	b.WriteString("You are an experienced medication and wellness assistant.\n")
	b.WriteString("Goals:\n")
	b.WriteString("1) Explain medicine usage from the provided prescription/context.\n")
	b.WriteString("2) Give practical guidance on health, medicine safety, exercise, food, and diet.\n")
	b.WriteString("3) Use simple patient-friendly language.\n")
	b.WriteString("4) If you suspect emergency risk, set emergency=true and clearly advise urgent care.\n\n")
	b.WriteString("Return STRICT JSON only with this schema:\n")
	b.WriteString(`{"reply":"short paragraph answer","medicine_uses":["..."],` +
		`"health_guidance":["..."],"diet_guidance":["..."],` +
		`"exercise_guidance":["..."],"precautions":["..."],"emergency":true|false}` + "\n")
	b.WriteString("Rules:\n")
	b.WriteString("- No markdown, no extra keys.\n")
	b.WriteString("- Never prescribe dosage changes as a doctor replacement.\n")
	b.WriteString("- Keep each list concise (max 6 points).\n\n")
	fmt.Fprintf(&b, "Image context: %s\n", imageNote)
	fmt.Fprintf(&b, "Prescription text:\n%s\n\n", prescription)
	fmt.Fprintf(&b, "Conversation history:\n%s\n\n", history)
	fmt.Fprintf(&b, "User question:\n%s\n", req.UserMessage)
	return b.String()
}

func normalize(res Result) Result {
	res.Reply = strings.TrimSpace(res.Reply)
	res.MedicineUses = listify(res.MedicineUses)
	res.HealthGuidance = listify(res.HealthGuidance)
	res.DietGuidance = listify(res.DietGuidance)
	res.ExerciseGuidance = listify(res.ExerciseGuidance)
	res.Precautions = listify(res.Precautions)
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
