package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medicare-assistant/internal/config"
)

// Client calls the Gemini generateContent REST endpoint. It is the only
// place that talks to the AI provider; engines depend on this boundary and
// never on the wire format.
type Client struct {
	apiKey  string
	model   string
	apiBase string

	httpClient *http.Client
}

var ErrNotConfigured = errors.New("gemini: api key not configured")

func NewClient(cfg config.GeminiConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// Part is a single content part of a generateContent request.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData attaches base64-encoded media (e.g. a prescription image).
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// GenerateJSON asks the model for a strict-JSON answer and returns the raw
// text of the first candidate.
func (c *Client) GenerateJSON(ctx context.Context, parts []Part, temperature float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
		"generationConfig": map[string]any{
			"temperature":      temperature,
			"responseMimeType": "application/json",
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.apiBase, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gemini: status %d", resp.StatusCode)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: decoding response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: response has no candidates")
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("gemini: response text is empty")
	}
	return text, nil
}

// ExtractJSONObject carves a JSON object out of model output that may wrap
// it in prose or code fences.
func ExtractJSONObject(raw string) (map[string]any, error) {
	var value map[string]any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, errors.New("gemini: no JSON object in output")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &value); err != nil {
		return nil, fmt.Errorf("gemini: invalid JSON object in output: %w", err)
	}
	return value, nil
}
