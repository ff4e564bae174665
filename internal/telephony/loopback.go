package telephony

import (
	"context"

	"github.com/google/uuid"
)

// LoopbackProvider fabricates call IDs without touching a real provider.
// It keeps the full webhook flow exercisable in local environments where
// Twilio credentials are absent; callbacks are then driven by hand (curl)
// or by tests.
type LoopbackProvider struct{}

func NewLoopbackProvider() *LoopbackProvider { return &LoopbackProvider{} }

func (p *LoopbackProvider) Name() string { return "loopback" }

func (p *LoopbackProvider) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	return PlaceCallResult{
		CallID: "LB" + uuid.NewString(),
		Status: "queued",
	}, nil
}
