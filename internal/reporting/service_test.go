package reporting

import (
	"context"
	"testing"
	"time"

	"medicare-assistant/internal/session"
)

func seedSessions(t *testing.T, store *session.MemoryStore, statuses map[string]session.Status) {
	t.Helper()
	ctx := context.Background()
	i := 0
	for callID, status := range statuses {
		i++
		err := store.Create(ctx, session.CallSession{
			CallID:       callID,
			ToPhone:      "+919876500000",
			MedicineName: "Metformin",
			DateKey:      "2026-08-28",
			Mode:         session.ModePatientOnly,
			Status:       session.StatusInitiated,
			CreatedAt:    time.Unix(1700000000, 0).UTC(),
		})
		if err != nil {
			t.Fatalf("seeding %s: %v", callID, err)
		}
		if status.IsTerminal() {
			if _, _, err := store.Finalize(ctx, callID, status, ""); err != nil {
				t.Fatalf("finalizing %s: %v", callID, err)
			}
		}
	}
}

func TestAdherenceCountsAndRate(t *testing.T) {
	store := session.NewMemoryStore()
	seedSessions(t, store, map[string]session.Status{
		"c1": session.StatusTaken,
		"c2": session.StatusTaken,
		"c3": session.StatusMissed,
		"c4": session.StatusNoAnswer,
		"c5": session.StatusFailed,
		"c6": session.StatusInitiated,
	})
	svc := NewService(store)

	out, err := svc.Adherence(context.Background(), "2026-08-28")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 6 {
		t.Fatalf("total = %d, want 6", out.TotalCalls)
	}
	if out.Taken != 2 || out.Missed != 1 || out.NoAnswer != 1 || out.Failed != 1 || out.Pending != 1 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	// 2 taken out of 5 settled; the pending session is excluded.
	if out.AdherenceRate != 0.4 {
		t.Fatalf("adherence_rate = %v, want 0.4", out.AdherenceRate)
	}
}

func TestAdherenceEmptyDay(t *testing.T) {
	svc := NewService(session.NewMemoryStore())

	out, err := svc.Adherence(context.Background(), "2026-01-01")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 0 || out.AdherenceRate != 0 {
		t.Fatalf("empty day should be all zero: %+v", out)
	}
}

func TestAdherenceRejectsBadDateKey(t *testing.T) {
	svc := NewService(session.NewMemoryStore())
	for _, bad := range []string{"", "today", "2026/08/28", "2026-8-28"} {
		if _, err := svc.Adherence(context.Background(), bad); err != ErrInvalidRequest {
			t.Fatalf("date %q: err = %v, want ErrInvalidRequest", bad, err)
		}
	}
}
