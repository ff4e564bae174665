package reminder

import (
	"context"
	"time"

	"medicare-assistant/internal/audit"
	"medicare-assistant/internal/session"
	"medicare-assistant/pkg/logger"
)

// Sweeper finalizes sessions the provider never called back about. It is a
// separable watchdog: it reuses the store's compare-and-set, so it can
// never overwrite a terminal status written by a late callback.
type Sweeper struct {
	store    session.Store
	audit    *audit.Service
	maxAge   time.Duration
	interval time.Duration
	clock    func() time.Time
}

func NewSweeper(store session.Store, auditSvc *audit.Service, maxAge, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		store:    store,
		audit:    auditSvc,
		maxAge:   maxAge,
		interval: interval,
		clock:    time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.maxAge <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				logger.From(ctx).Error("session sweep failed", "err", err)
			} else if n > 0 {
				logger.From(ctx).Info("stale sessions finalized", "count", n)
			}
		}
	}
}

// SweepOnce finalizes every non-terminal session older than maxAge and
// returns how many transitions were applied. Sessions where the prompt was
// never played become no_answer; the rest become missed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.clock().UTC().Add(-s.maxAge)
	stale, err := s.store.ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, rec := range stale {
		status := session.StatusNoAnswer
		if rec.AttemptCount > 0 {
			status = session.StatusMissed
		}
		_, ok, err := s.store.Finalize(ctx, rec.CallID, status, "")
		if err != nil {
			return applied, err
		}
		if !ok {
			continue
		}
		applied++
		if s.audit != nil {
			if err := s.audit.LogFinalized(ctx, rec.CallID, string(status), ""); err != nil {
				logger.From(ctx).Warn("audit write failed", "err", err)
			}
		}
	}
	return applied, nil
}
