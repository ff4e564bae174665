package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{CallID: "CA1"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestService_AppendFillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogDispatched(context.Background(), "CA1", "+14155550100", "queued"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	e := evs[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp: %+v", e)
	}
	if e.Type != EventTypeCallDispatched || e.Phone != "+14155550100" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestService_ListRecentNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_ = svc.LogAnomaly(ctx, "CA1", "first")
	_ = svc.LogAnomaly(ctx, "CA2", "second")
	_ = svc.LogFinalized(ctx, "CA3", "taken", "yes")

	evs, err := svc.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].CallID != "CA3" || evs[1].CallID != "CA2" {
		t.Fatalf("unexpected ordering: %+v", evs)
	}
}

func TestService_NilServiceIsSafe(t *testing.T) {
	var svc *Service
	if err := svc.Append(context.Background(), Event{Type: EventTypeWebhookAnomaly}); err == nil {
		t.Fatalf("expected error from nil service")
	}
}
