package reporting

import (
	"context"
	"errors"
	"regexp"

	"medicare-assistant/internal/session"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Repository abstracts data access for reporting. session.Store satisfies
// it, so reports read the same state the call flow writes.
type Repository interface {
	ListByDate(ctx context.Context, dateKey string) ([]session.CallSession, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Adherence summarizes reminder outcomes for one date key (YYYY-MM-DD).
// The adherence rate is taken over terminal sessions only, so a day with
// calls still in flight does not read as non-adherent.
func (s *Service) Adherence(ctx context.Context, dateKey string) (AdherenceSummary, error) {
	if !dateKeyPattern.MatchString(dateKey) {
		return AdherenceSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return AdherenceSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListByDate(ctx, dateKey)
	if err != nil {
		return AdherenceSummary{}, err
	}

	out := AdherenceSummary{Date: dateKey}
	for _, sess := range rows {
		out.TotalCalls++
		switch sess.Status {
		case session.StatusTaken:
			out.Taken++
		case session.StatusMissed:
			out.Missed++
		case session.StatusNoAnswer:
			out.NoAnswer++
		case session.StatusFailed:
			out.Failed++
		default:
			out.Pending++
		}
	}

	settled := out.TotalCalls - out.Pending
	if settled > 0 {
		out.AdherenceRate = float64(out.Taken) / float64(settled)
	}
	return out, nil
}
