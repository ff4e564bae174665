package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used by default and in tests.
// A single mutex serializes all mutations, which is sufficient at the scale
// of one reminder call per webhook roundtrip.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]CallSession
	clock    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]CallSession),
		clock:    time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s CallSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.CallID]; ok {
		return ErrDuplicate
	}
	if s.Status == "" {
		s.Status = StatusInitiated
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.clock().UTC()
	}
	m.sessions[s.CallID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, callID string) (CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[callID]
	if !ok {
		return CallSession{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) MarkRinging(ctx context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[callID]
	if !ok {
		return ErrNotFound
	}
	if s.Status == StatusInitiated {
		s.Status = StatusRinging
		m.sessions[callID] = s
	}
	return nil
}

func (m *MemoryStore) MarkPromptPlayed(ctx context.Context, callID string) (CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[callID]
	if !ok {
		return CallSession{}, ErrNotFound
	}
	if s.Status.IsTerminal() {
		return s, nil
	}
	s.AttemptCount++
	if s.Status == StatusInitiated || s.Status == StatusRinging {
		s.Status = StatusInProgress
	}
	m.sessions[callID] = s
	return s, nil
}

func (m *MemoryStore) Finalize(ctx context.Context, callID string, status Status, responseRaw string) (CallSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[callID]
	if !ok {
		return CallSession{}, false, ErrNotFound
	}
	if s.Status.IsTerminal() {
		// First terminal write wins; later callbacks are no-ops.
		return s, false, nil
	}
	now := m.clock().UTC()
	s.Status = status
	s.ResponseRaw = responseRaw
	s.FinalizedAt = &now
	m.sessions[callID] = s
	return s, true, nil
}

func (m *MemoryStore) ListByDate(ctx context.Context, dateKey string) ([]CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []CallSession
	for _, s := range m.sessions {
		if s.DateKey == dateKey {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListStale(ctx context.Context, cutoff time.Time) ([]CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []CallSession
	for _, s := range m.sessions {
		if !s.Status.IsTerminal() && s.CreatedAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}
