package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only; no Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Service records internal audit information.
//
// Callers treat audit logging as best-effort: the call-session flow never
// fails because an audit write failed.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogDispatched records a successful outbound call dispatch.
func (s *Service) LogDispatched(ctx context.Context, callID, phone, status string) error {
	return s.Append(ctx, Event{
		Type:    EventTypeCallDispatched,
		CallID:  callID,
		Phone:   phone,
		Status:  status,
		Message: "outbound reminder call dispatched",
	})
}

// LogFinalized records a terminal session transition.
func (s *Service) LogFinalized(ctx context.Context, callID, status, responseRaw string) error {
	return s.Append(ctx, Event{
		Type:     EventTypeCallFinalized,
		CallID:   callID,
		Status:   status,
		Message:  "call session finalized",
		Metadata: responseRaw,
	})
}

// LogAnomaly records a webhook referencing an unknown or inconsistent call.
func (s *Service) LogAnomaly(ctx context.Context, callID, message string) error {
	return s.Append(ctx, Event{
		Type:    EventTypeWebhookAnomaly,
		CallID:  callID,
		Message: message,
	})
}

// ListRecent returns the newest events, most recent first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListRecent(ctx, limit)
}
