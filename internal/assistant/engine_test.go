package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medicare-assistant/internal/config"
	"medicare-assistant/internal/gemini"
)

func geminiStub(t *testing.T, answer string, capture *[]byte) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			*capture = body
		}
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

func TestChatModelPath(t *testing.T) {
	answer := `{"reply":"  Take it after food.  ","medicine_uses":["controls sugar"],` +
		`"health_guidance":["a","","b","c","d","e","f","g"],"diet_guidance":[],` +
		`"exercise_guidance":["walk daily"],"precautions":["avoid alcohol"],"emergency":false}`
	eng := NewEngine(geminiStub(t, answer, nil))

	res, source := eng.Chat(context.Background(), Request{
		UserMessage: "How should I take Metformin?",
		AIConsent:   true,
	})

	if source != SourceGemini {
		t.Fatalf("source = %q, want %q", source, SourceGemini)
	}
	if res.Reply != "Take it after food." {
		t.Fatalf("reply not trimmed: %q", res.Reply)
	}
	if len(res.HealthGuidance) != 6 {
		t.Fatalf("health_guidance should cap at 6, got %d", len(res.HealthGuidance))
	}
	if res.ImageReceived {
		t.Fatal("image_received should be false without an image")
	}
}

func TestChatAttachesPrescriptionImage(t *testing.T) {
	var captured []byte
	answer := `{"reply":"From the prescription: Metformin 500mg.","emergency":false}`
	eng := NewEngine(geminiStub(t, answer, &captured))

	res, source := eng.Chat(context.Background(), Request{
		UserMessage:               "What does my prescription say?",
		PrescriptionImageBase64:   "aGVsbG8=",
		PrescriptionImageMimeType: "image/png",
		AIConsent:                 true,
	})

	if source != SourceGemini {
		t.Fatalf("source = %q, want %q", source, SourceGemini)
	}
	if !res.ImageReceived {
		t.Fatal("image_received should be true when an image was sent")
	}

	var body struct {
		Contents []struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mime_type"`
					Data     string `json:"data"`
				} `json:"inline_data"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(captured, &body); err != nil {
		t.Fatalf("decoding captured request: %v", err)
	}
	if len(body.Contents) != 1 || len(body.Contents[0].Parts) != 2 {
		t.Fatalf("expected text + image parts, got %+v", body.Contents)
	}
	img := body.Contents[0].Parts[1].InlineData
	if img == nil || img.MimeType != "image/png" || img.Data != "aGVsbG8=" {
		t.Fatalf("image part not forwarded: %+v", img)
	}
}

func TestChatFallsBackOnModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	eng := NewEngine(gemini.NewClient(config.GeminiConfig{
		APIKey: "test-key", Model: "gemini-2.5-flash", APIBase: srv.URL, RequestTimeout: 5 * time.Second,
	}))

	res, source := eng.Chat(context.Background(), Request{
		UserMessage: "I feel fine, any diet tips?",
		AIConsent:   true,
	})

	if source != SourceFallback {
		t.Fatalf("source = %q, want %q", source, SourceFallback)
	}
	if res.Reply == "" || len(res.DietGuidance) == 0 {
		t.Fatal("fallback must return a complete answer")
	}
}

func TestChatFallbackFlagsEmergency(t *testing.T) {
	res := ChatFallback(Request{UserMessage: "I have sudden CHEST PAIN after my dose"})
	if !res.Emergency {
		t.Fatal("chest pain should flag emergency")
	}
	if res.Reply == "" || !res.Emergency {
		t.Fatalf("emergency reply missing: %+v", res)
	}

	calm := ChatFallback(Request{UserMessage: "What should I eat with this medicine?"})
	if calm.Emergency {
		t.Fatal("calm question should not flag emergency")
	}
}

func TestChatFallbackReportsImage(t *testing.T) {
	res := ChatFallback(Request{
		UserMessage:             "read my prescription",
		PrescriptionImageBase64: "aGVsbG8=",
	})
	if !res.ImageReceived {
		t.Fatal("image_received should reflect the uploaded image")
	}
}

func TestRequestValidate(t *testing.T) {
	if err := (Request{UserMessage: "hi"}).Validate(); err == nil {
		t.Fatal("missing ai_consent should fail validation")
	}
	if err := (Request{AIConsent: true}).Validate(); err == nil {
		t.Fatal("missing user_message should fail validation")
	}
	if err := (Request{AIConsent: true, UserMessage: "hi"}).Validate(); err != nil {
		t.Fatalf("valid request failed: %v", err)
	}
}
