package reminder

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"medicare-assistant/internal/audit"
	"medicare-assistant/internal/classify"
	"medicare-assistant/internal/session"
	"medicare-assistant/internal/telephony"
	"medicare-assistant/pkg/logger"
)

// Service is the call orchestrator: it dispatches outbound reminder calls,
// reacts to the provider's webhook callbacks, and answers result polls.
//
// The provider owns the live phone call and the 60-second gather window;
// this service never parks a request waiting for the callee. All session
// mutation goes through the Store, whose compare-and-set finalization
// keeps terminal statuses monotonic under duplicate callbacks.
type Service struct {
	store      session.Store
	provider   telephony.Provider
	classifier *classify.Classifier
	audit      *audit.Service
	baseURL    string
	clock      func() time.Time
}

type Options struct {
	Classifier *classify.Classifier

	// Audit is optional; all audit writes are best-effort.
	Audit *audit.Service

	// PublicBaseURL is where the provider reaches this service back.
	PublicBaseURL string

	Clock func() time.Time
}

func NewService(store session.Store, provider telephony.Provider, opts Options) *Service {
	s := &Service{
		store:      store,
		provider:   provider,
		classifier: opts.Classifier,
		audit:      opts.Audit,
		baseURL:    opts.PublicBaseURL,
		clock:      opts.Clock,
	}
	if s.classifier == nil {
		s.classifier = classify.New()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

type StartCallRequest struct {
	ToPhone       string
	PatientName   string
	CaregiverName string
	MedicineName  string
	Dosage        string
	ScheduledTime string
	DateKey       string
	Mode          session.Mode
}

type StartCallResult struct {
	CallID string
	Status string
}

// StartCall validates the request, places the outbound call and creates the
// session. No session is created when dispatch fails.
func (s *Service) StartCall(ctx context.Context, req StartCallRequest) (StartCallResult, error) {
	normalized := NormalizePhone(req.ToPhone)
	if normalized == "" || len(normalized) < 9 {
		return StartCallResult{}, fmt.Errorf("%w: destination phone %q", ErrInvalidRequest, req.ToPhone)
	}
	if req.MedicineName == "" {
		return StartCallResult{}, fmt.Errorf("%w: medicine_name is required", ErrInvalidRequest)
	}
	if req.Mode == "" {
		req.Mode = session.ModeCaregiverPatient
	}

	out, err := s.provider.PlaceCall(ctx, telephony.PlaceCallRequest{
		To:                normalized,
		PromptURL:         s.promptURL(req),
		StatusCallbackURL: s.baseURL + "/api/v1/voice/status",
	})
	if err != nil {
		return StartCallResult{}, err
	}

	err = s.store.Create(ctx, session.CallSession{
		CallID:        out.CallID,
		ToPhone:       normalized,
		PatientName:   req.PatientName,
		CaregiverName: req.CaregiverName,
		MedicineName:  req.MedicineName,
		Dosage:        req.Dosage,
		ScheduledTime: req.ScheduledTime,
		DateKey:       req.DateKey,
		Mode:          req.Mode,
		Status:        session.StatusInitiated,
		CreatedAt:     s.clock().UTC(),
	})
	if err != nil {
		// The call is already ringing at this point; surface the storage
		// fault but keep the provider-side call id in the logs.
		logger.From(ctx).Error("session create failed after dispatch", "call_id", out.CallID, "err", err)
		return StartCallResult{}, err
	}

	if err := s.audit.LogDispatched(ctx, out.CallID, normalized, out.Status); err != nil && s.audit != nil {
		logger.From(ctx).Warn("audit write failed", "err", err)
	}

	return StartCallResult{CallID: out.CallID, Status: out.Status}, nil
}

// promptURL carries the display values as query parameters so the prompt
// can still be rendered if the session lookup misses (e.g. a replayed
// callback after a process restart with the memory store).
func (s *Service) promptURL(req StartCallRequest) string {
	q := url.Values{}
	q.Set("patient_name", req.PatientName)
	q.Set("caregiver_name", req.CaregiverName)
	q.Set("medicine_name", req.MedicineName)
	q.Set("dosage", req.Dosage)
	q.Set("scheduled_time", req.ScheduledTime)
	q.Set("date_key", req.DateKey)
	q.Set("mode", string(req.Mode))
	return s.baseURL + "/api/v1/voice/twiml?" + q.Encode()
}

// PromptInstructions renders the voice-prompt document for a connecting
// call. It records the prompt delivery (attempt_count, in_progress) when the
// session is known; an unknown call_id still gets a valid document built
// from the fallback display values so the live call does not error out.
func (s *Service) PromptInstructions(ctx context.Context, callID string, fallback telephony.PromptParams) (string, error) {
	fallback.GatherActionURL = s.baseURL + "/api/v1/voice/gather"

	if callID == "" {
		return telephony.RenderPrompt(fallback)
	}

	rec, err := s.store.MarkPromptPlayed(ctx, callID)
	if err == session.ErrNotFound {
		logger.From(ctx).Warn("prompt fetch for unknown call", "call_id", callID)
		s.logAnomaly(ctx, callID, "prompt fetch for unknown call")
		return telephony.RenderPrompt(fallback)
	}
	if err != nil {
		logger.From(ctx).Error("prompt state update failed", "call_id", callID, "err", err)
		return telephony.RenderPrompt(fallback)
	}

	return telephony.RenderPrompt(telephony.PromptParams{
		PatientName:     rec.PatientName,
		CaregiverName:   rec.CaregiverName,
		MedicineName:    rec.MedicineName,
		Dosage:          rec.Dosage,
		ScheduledTime:   rec.ScheduledTime,
		DateKey:         rec.DateKey,
		Mode:            rec.Mode,
		GatherActionURL: fallback.GatherActionURL,
	})
}

// HandleGather processes the collected speech/digit response (or the empty
// payload of an elapsed gather window) and finalizes the session. The
// returned document is always valid TwiML; webhook-path errors never
// surface an error document back to the provider.
func (s *Service) HandleGather(ctx context.Context, cb telephony.GatherCallback) (string, error) {
	log := logger.From(ctx)

	if cb.CallSid == "" {
		log.Warn("gather callback without call sid")
		return telephony.RenderGoodbye()
	}

	rec, err := s.store.Get(ctx, cb.CallSid)
	if err == session.ErrNotFound {
		log.Warn("gather callback for unknown call", "call_id", cb.CallSid)
		s.logAnomaly(ctx, cb.CallSid, "gather callback for unknown call")
		return telephony.RenderGoodbye()
	}
	if err != nil {
		log.Error("session lookup failed", "call_id", cb.CallSid, "err", err)
		return telephony.RenderGoodbye()
	}

	if rec.Status.IsTerminal() {
		// Duplicate delivery; keep the live call coherent with stored state.
		return telephony.RenderClosing(rec.Status == session.StatusTaken)
	}

	outcome := s.classifier.Classify(cb.SpeechResult, cb.Digits)
	status := session.StatusMissed
	if outcome == classify.OutcomeTaken {
		status = session.StatusTaken
	}
	responseRaw := cb.SpeechResult
	if responseRaw == "" {
		responseRaw = cb.Digits
	}

	final, applied, err := s.store.Finalize(ctx, cb.CallSid, status, responseRaw)
	if err != nil {
		log.Error("finalize failed", "call_id", cb.CallSid, "err", err)
		return telephony.RenderGoodbye()
	}
	if applied {
		log.Info("call finalized", "call_id", cb.CallSid, "status", string(final.Status))
		if err := s.audit.LogFinalized(ctx, cb.CallSid, string(final.Status), responseRaw); err != nil && s.audit != nil {
			log.Warn("audit write failed", "err", err)
		}
	}
	return telephony.RenderClosing(final.Status == session.StatusTaken)
}

// HandleStatus reacts to provider call-status callbacks. Failure signals
// finalize the session; a completed call that never produced a gather
// result is missed when a prompt was played and no_answer otherwise.
func (s *Service) HandleStatus(ctx context.Context, cb telephony.StatusCallback) error {
	log := logger.From(ctx)

	if cb.CallSid == "" {
		return nil
	}

	switch cb.CallStatus {
	case "ringing":
		if err := s.store.MarkRinging(ctx, cb.CallSid); err != nil && err != session.ErrNotFound {
			return err
		}
		return nil

	case "no-answer", "busy":
		return s.finalizeFromStatus(ctx, cb.CallSid, session.StatusNoAnswer)

	case "failed", "canceled":
		return s.finalizeFromStatus(ctx, cb.CallSid, session.StatusFailed)

	case "completed":
		rec, err := s.store.Get(ctx, cb.CallSid)
		if err == session.ErrNotFound {
			log.Warn("status callback for unknown call", "call_id", cb.CallSid, "status", cb.CallStatus)
			s.logAnomaly(ctx, cb.CallSid, "status callback for unknown call")
			return nil
		}
		if err != nil {
			return err
		}
		if rec.Status.IsTerminal() {
			return nil
		}
		status := session.StatusNoAnswer
		if rec.AttemptCount > 0 {
			status = session.StatusMissed
		}
		return s.finalizeFromStatus(ctx, cb.CallSid, status)

	default:
		// "initiated", "queued", "answered", "in-progress": transient
		// signals already covered by the prompt path.
		return nil
	}
}

func (s *Service) finalizeFromStatus(ctx context.Context, callID string, status session.Status) error {
	final, applied, err := s.store.Finalize(ctx, callID, status, "")
	if err == session.ErrNotFound {
		logger.From(ctx).Warn("status callback for unknown call", "call_id", callID)
		s.logAnomaly(ctx, callID, "status callback for unknown call")
		return nil
	}
	if err != nil {
		return err
	}
	if applied {
		logger.From(ctx).Info("call finalized", "call_id", callID, "status", string(final.Status))
		if err := s.audit.LogFinalized(ctx, callID, string(final.Status), ""); err != nil && s.audit != nil {
			logger.From(ctx).Warn("audit write failed", "err", err)
		}
	}
	return nil
}

// GetResult is a pure read of current session state; callers poll it.
func (s *Service) GetResult(ctx context.Context, callID string) (session.CallSession, error) {
	rec, err := s.store.Get(ctx, callID)
	if err == session.ErrNotFound {
		return session.CallSession{}, ErrUnknownCall
	}
	return rec, err
}

func (s *Service) logAnomaly(ctx context.Context, callID, message string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAnomaly(ctx, callID, message); err != nil {
		logger.From(ctx).Warn("audit write failed", "err", err)
	}
}
