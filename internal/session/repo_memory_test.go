package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newSession(callID string) CallSession {
	return CallSession{
		CallID:        "CA" + callID,
		ToPhone:       "+14155550100",
		PatientName:   "Asha",
		MedicineName:  "Metformin",
		Dosage:        "500mg",
		ScheduledTime: "8:00 AM",
		DateKey:       "2026-08-28",
		Mode:          ModeCaregiverPatient,
	}
}

func TestMemoryStore_CreateRejectsDuplicateCallID(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if err := st.Create(ctx, newSession("1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Create(ctx, newSession("1")); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryStore_GetUnknownReturnsNotFound(t *testing.T) {
	st := NewMemoryStore()
	if _, err := st.Get(context.Background(), "CAmissing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_MarkPromptPlayedAdvancesState(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Create(ctx, newSession("1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	s, err := st.MarkPromptPlayed(ctx, "CA1")
	if err != nil {
		t.Fatalf("mark prompt: %v", err)
	}
	if s.Status != StatusInProgress || s.AttemptCount != 1 {
		t.Fatalf("unexpected session: %+v", s)
	}

	// Re-prompt after a gather timeout increments the attempt counter.
	s, err = st.MarkPromptPlayed(ctx, "CA1")
	if err != nil {
		t.Fatalf("mark prompt: %v", err)
	}
	if s.AttemptCount != 2 {
		t.Fatalf("expected attempt_count 2, got %d", s.AttemptCount)
	}
}

func TestMemoryStore_FinalizeIsMonotonic(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Create(ctx, newSession("1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	s, applied, err := st.Finalize(ctx, "CA1", StatusTaken, "yes")
	if err != nil || !applied {
		t.Fatalf("expected first finalize to apply, got applied=%v err=%v", applied, err)
	}
	if s.Status != StatusTaken || s.FinalizedAt == nil {
		t.Fatalf("unexpected session after finalize: %+v", s)
	}
	first := *s.FinalizedAt

	// Any later terminal write, including a conflicting one, is a no-op.
	s, applied, err = st.Finalize(ctx, "CA1", StatusMissed, "no")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if applied {
		t.Fatalf("expected second finalize to be a no-op")
	}
	if s.Status != StatusTaken || s.ResponseRaw != "yes" {
		t.Fatalf("terminal status overwritten: %+v", s)
	}
	if !s.FinalizedAt.Equal(first) {
		t.Fatalf("finalized_at changed on no-op write")
	}
}

func TestMemoryStore_TerminalSessionIgnoresPromptMark(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Create(ctx, newSession("1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := st.Finalize(ctx, "CA1", StatusNoAnswer, ""); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	s, err := st.MarkPromptPlayed(ctx, "CA1")
	if err != nil {
		t.Fatalf("mark prompt: %v", err)
	}
	if s.Status != StatusNoAnswer || s.AttemptCount != 0 {
		t.Fatalf("terminal session mutated: %+v", s)
	}
}

func TestMemoryStore_ConcurrentFinalizeAppliesExactlyOnce(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Create(ctx, newSession("1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	const writers = 32
	applies := make(chan bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		status := StatusTaken
		if i%2 == 1 {
			status = StatusMissed
		}
		wg.Add(1)
		go func(want Status) {
			defer wg.Done()
			_, applied, err := st.Finalize(ctx, "CA1", want, string(want))
			if err != nil {
				t.Errorf("finalize: %v", err)
				return
			}
			applies <- applied
		}(status)
	}
	wg.Wait()
	close(applies)

	wins := 0
	for a := range applies {
		if a {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one terminal write, got %d", wins)
	}

	s, err := st.Get(ctx, "CA1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Status != StatusTaken && s.Status != StatusMissed {
		t.Fatalf("expected a terminal status, got %q", s.Status)
	}
}

func TestMemoryStore_ListStaleSkipsTerminal(t *testing.T) {
	st := NewMemoryStore()
	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	st.clock = func() time.Time { return base }
	ctx := context.Background()

	if err := st.Create(ctx, newSession("1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Create(ctx, newSession("2")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := st.Finalize(ctx, "CA2", StatusTaken, "1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	stale, err := st.ListStale(ctx, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(stale) != 1 || stale[0].CallID != "CA1" {
		t.Fatalf("unexpected stale set: %+v", stale)
	}

	none, err := st.ListStale(ctx, base.Add(-time.Minute))
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no stale sessions before cutoff, got %+v", none)
	}
}

func TestMemoryStore_ListByDate(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	a := newSession("1")
	b := newSession("2")
	b.DateKey = "2026-08-29"
	if err := st.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.ListByDate(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].CallID != "CA1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
