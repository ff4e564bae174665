package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioDefaultAPIBase = "https://api.twilio.com"

// TwilioProvider dispatches outbound calls through the Twilio REST API.
// The create-call endpoint is a single form-encoded POST, so the adapter
// talks to it directly instead of pulling in the vendor SDK.
type TwilioProvider struct {
	accountSID string
	authToken  string
	from       string
	apiBase    string

	httpClient *http.Client
}

type TwilioOptions struct {
	AccountSID string
	AuthToken  string
	FromNumber string

	// APIBaseURL overrides the Twilio endpoint, used by tests.
	APIBaseURL string

	HTTPClient *http.Client
}

func NewTwilioProvider(opts TwilioOptions) *TwilioProvider {
	base := strings.TrimRight(opts.APIBaseURL, "/")
	if base == "" {
		base = twilioDefaultAPIBase
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &TwilioProvider{
		accountSID: opts.AccountSID,
		authToken:  opts.AuthToken,
		from:       opts.FromNumber,
		apiBase:    base,
		httpClient: hc,
	}
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) Configured() bool {
	return p.accountSID != "" && p.authToken != "" && p.from != ""
}

func (p *TwilioProvider) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	if !p.Configured() {
		return PlaceCallResult{}, fmt.Errorf("%w: twilio credentials not configured", ErrDispatchFailed)
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", p.from)
	form.Set("Url", req.PromptURL)
	form.Set("Method", http.MethodPost)
	if req.StatusCallbackURL != "" {
		form.Set("StatusCallback", req.StatusCallbackURL)
		form.Set("StatusCallbackMethod", http.MethodPost)
		for _, ev := range []string{"initiated", "ringing", "answered", "completed"} {
			form.Add("StatusCallbackEvent", ev)
		}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", p.apiBase, p.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	httpReq.SetBasicAuth(p.accountSID, p.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("%w: reading response: %v", ErrDispatchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PlaceCallResult{}, fmt.Errorf("%w: twilio returned %d: %s", ErrDispatchFailed, resp.StatusCode, truncate(string(body), 200))
	}

	var out struct {
		Sid    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return PlaceCallResult{}, fmt.Errorf("%w: decoding response: %v", ErrDispatchFailed, err)
	}
	if out.Sid == "" {
		return PlaceCallResult{}, fmt.Errorf("%w: twilio response missing call sid", ErrDispatchFailed)
	}
	if out.Status == "" {
		out.Status = "queued"
	}
	return PlaceCallResult{CallID: out.Sid, Status: out.Status}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
