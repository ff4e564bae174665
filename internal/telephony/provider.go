package telephony

import (
	"context"
	"errors"
)

// ErrDispatchFailed wraps any provider-side failure to place an outbound
// call (network, auth, rejected request). Callers surface it as retryable.
var ErrDispatchFailed = errors.New("telephony: dispatch failed")

// Provider is the provider-agnostic outbound-call contract.
//
// Rules:
// - No provider SDK calls outside telephony adapters.
// - Keep request/response types provider-agnostic.
// - The provider owns the live call; this system only reacts to the
//   webhook callbacks it sends back.
type Provider interface {
	Name() string
	PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error)
}

// PlaceCallRequest describes one outbound call dispatch.
type PlaceCallRequest struct {
	// To is the destination number in E.164.
	To string

	// PromptURL is fetched by the provider when the call connects; it must
	// return the voice-instruction document.
	PromptURL string

	// StatusCallbackURL receives call-status progress events.
	StatusCallbackURL string
}

// PlaceCallResult reports the provider-assigned identifiers for the call.
type PlaceCallResult struct {
	// CallID is the provider's unique identifier; it keys the session store.
	CallID string

	// Status is the provider's initial call status (e.g. "queued").
	Status string
}
