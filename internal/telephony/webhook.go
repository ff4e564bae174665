package telephony

import (
	"net/http"
	"strings"
)

// Webhook form parsing for the provider's voice callbacks. Twilio posts
// application/x-www-form-urlencoded by default.
//
// Keep this provider-adapter-only. Business logic (classification, state
// transitions) is not made here.

// PromptCallback is the request Twilio makes when fetching voice
// instructions at call connect time.
type PromptCallback struct {
	CallSid    string
	CallStatus string
	To         string
	From       string
}

// GatherCallback delivers the collected speech and/or DTMF input. Both
// fields are empty when the gather window elapsed without a response.
type GatherCallback struct {
	CallSid      string
	SpeechResult string
	Digits       string
	To           string
}

// StatusCallback reports call progress ("initiated", "ringing", "answered",
// "in-progress", "completed", "busy", "no-answer", "failed", "canceled").
type StatusCallback struct {
	CallSid    string
	CallStatus string
}

func ParsePromptCallback(r *http.Request) (PromptCallback, error) {
	if err := r.ParseForm(); err != nil {
		return PromptCallback{}, err
	}
	return PromptCallback{
		CallSid:    strings.TrimSpace(r.PostFormValue("CallSid")),
		CallStatus: strings.TrimSpace(r.PostFormValue("CallStatus")),
		To:         strings.TrimSpace(r.PostFormValue("To")),
		From:       strings.TrimSpace(r.PostFormValue("From")),
	}, nil
}

func ParseGatherCallback(r *http.Request) (GatherCallback, error) {
	if err := r.ParseForm(); err != nil {
		return GatherCallback{}, err
	}
	return GatherCallback{
		CallSid:      strings.TrimSpace(r.PostFormValue("CallSid")),
		SpeechResult: strings.TrimSpace(r.PostFormValue("SpeechResult")),
		Digits:       strings.TrimSpace(r.PostFormValue("Digits")),
		To:           strings.TrimSpace(r.PostFormValue("To")),
	}, nil
}

func ParseStatusCallback(r *http.Request) (StatusCallback, error) {
	if err := r.ParseForm(); err != nil {
		return StatusCallback{}, err
	}
	return StatusCallback{
		CallSid:    strings.TrimSpace(r.PostFormValue("CallSid")),
		CallStatus: strings.ToLower(strings.TrimSpace(r.PostFormValue("CallStatus"))),
	}, nil
}
