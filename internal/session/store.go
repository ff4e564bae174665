package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("session: not found")
	ErrDuplicate = errors.New("session: call_id already exists")
)

// Store is the persistence contract for call sessions.
//
// Every mutation of a single session must be serialized per call_id so the
// monotonic-terminal invariant holds under concurrent and duplicate provider
// callbacks. Cross-session operations need no coordination.
type Store interface {
	// Create inserts a new session. Fails with ErrDuplicate if the call_id
	// is already present.
	Create(ctx context.Context, s CallSession) error

	// Get returns the current session state. Fails with ErrNotFound.
	Get(ctx context.Context, callID string) (CallSession, error)

	// MarkRinging records the transient ringing state. It is a no-op unless
	// the session is still initiated.
	MarkRinging(ctx context.Context, callID string) error

	// MarkPromptPlayed increments attempt_count and moves an initiated or
	// ringing session to in_progress. Terminal sessions are left untouched.
	MarkPromptPlayed(ctx context.Context, callID string) (CallSession, error)

	// Finalize applies a terminal status with compare-and-set semantics:
	// the write is applied only if the session is not yet terminal. The
	// returned bool reports whether this call performed the transition.
	Finalize(ctx context.Context, callID string, status Status, responseRaw string) (CallSession, bool, error)

	// ListByDate returns all sessions created for a date key.
	ListByDate(ctx context.Context, dateKey string) ([]CallSession, error)

	// ListStale returns non-terminal sessions created before cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]CallSession, error)
}
