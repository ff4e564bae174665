package audit

import "time"

// Event is an immutable, append-only record of call-flow activity.
//
// Invariants:
// - Events are never updated or deleted.
// - Audit capture is best-effort; call handling never blocks on audit failures.
//
// Storage recommendation (Postgres):
// - Table call_audit_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// CallID is the provider-assigned call identifier, when known.
	CallID string `json:"call_id,omitempty" db:"call_id"`

	// Phone is the destination number (E.164) for dispatch events.
	Phone string `json:"phone,omitempty" db:"phone"`

	// Status is the session status an event recorded, if any.
	Status string `json:"status,omitempty" db:"status"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallDispatched EventType = "call_dispatched"
	EventTypeCallFinalized  EventType = "call_finalized"
	EventTypeWebhookAnomaly EventType = "webhook_anomaly"
)
