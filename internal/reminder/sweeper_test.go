package reminder

import (
	"context"
	"testing"
	"time"

	"medicare-assistant/internal/session"
	"medicare-assistant/internal/telephony"
)

func TestSweeper_FinalizesStaleSessions(t *testing.T) {
	st := session.NewMemoryStore()
	prov := &fakeProvider{}
	svc := NewService(st, prov, Options{PublicBaseURL: "https://app.example"})
	ctx := context.Background()

	// One session never got any callback; one got a prompt but no gather;
	// one is already terminal.
	a, _ := svc.StartCall(ctx, startRequest())
	b, _ := svc.StartCall(ctx, startRequest())
	if _, err := svc.PromptInstructions(ctx, b.CallID, telephony.PromptParams{}); err != nil {
		t.Fatalf("prompt: %v", err)
	}
	c, _ := svc.StartCall(ctx, startRequest())
	if _, err := svc.HandleGather(ctx, telephony.GatherCallback{CallSid: c.CallID, Digits: "1"}); err != nil {
		t.Fatalf("gather: %v", err)
	}

	sw := NewSweeper(st, nil, 10*time.Minute, time.Minute)
	sw.clock = func() time.Time { return time.Now().Add(time.Hour) }

	n, err := sw.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 finalizations, got %d", n)
	}

	recA, _ := svc.GetResult(ctx, a.CallID)
	if recA.Status != session.StatusNoAnswer {
		t.Fatalf("expected no_answer for unprompted session, got %q", recA.Status)
	}
	recB, _ := svc.GetResult(ctx, b.CallID)
	if recB.Status != session.StatusMissed {
		t.Fatalf("expected missed for prompted session, got %q", recB.Status)
	}
	recC, _ := svc.GetResult(ctx, c.CallID)
	if recC.Status != session.StatusTaken {
		t.Fatalf("terminal session must be untouched, got %q", recC.Status)
	}
}

func TestSweeper_FreshSessionsAreSpared(t *testing.T) {
	st := session.NewMemoryStore()
	svc := NewService(st, &fakeProvider{}, Options{PublicBaseURL: "https://app.example"})
	ctx := context.Background()

	out, _ := svc.StartCall(ctx, startRequest())

	sw := NewSweeper(st, nil, 10*time.Minute, time.Minute)
	n, err := sw.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no finalizations, got %d", n)
	}
	rec, _ := svc.GetResult(ctx, out.CallID)
	if rec.Status != session.StatusInitiated {
		t.Fatalf("fresh session mutated: %+v", rec)
	}
}
