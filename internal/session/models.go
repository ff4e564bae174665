package session

import "time"

// CallSession is the stateful record of one outbound reminder call attempt.
//
// Invariants:
// - Exactly one record per provider-assigned CallID; Create is the only way
//   a record enters a store.
// - Status is monotonic: once terminal it is never overwritten. The first
//   terminal write wins; later writes are idempotent no-ops.
// - FinalizedAt is set exactly once, at the first terminal transition.
//
// DateKey + MedicineName + ToPhone are not unique across sessions; multiple
// reminder calls per day/medicine are legal and distinguished by CallID.
type CallSession struct {
	CallID string `json:"call_id"`

	ToPhone       string `json:"to_phone"`
	PatientName   string `json:"patient_name"`
	CaregiverName string `json:"caregiver_name,omitempty"`
	MedicineName  string `json:"medicine_name"`
	Dosage        string `json:"dosage"`
	ScheduledTime string `json:"scheduled_time"`
	DateKey       string `json:"date_key"`
	Mode          Mode   `json:"mode"`

	Status Status `json:"status"`

	// ResponseRaw is the last raw transcript/digit received, kept for audit.
	ResponseRaw string `json:"response_raw,omitempty"`

	// AttemptCount is the number of prompt deliveries for this session.
	// The provider may fetch the prompt more than once (re-prompt after a
	// gather timeout).
	AttemptCount int `json:"attempt_count"`

	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

type Status string

const (
	StatusInitiated  Status = "initiated"
	StatusRinging    Status = "ringing"
	StatusInProgress Status = "in_progress"

	// Terminal statuses.
	StatusTaken    Status = "taken"
	StatusMissed   Status = "missed"
	StatusNoAnswer Status = "no_answer"
	StatusFailed   Status = "failed"
)

// IsTerminal reports whether no further mutation is accepted for s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusTaken, StatusMissed, StatusNoAnswer, StatusFailed:
		return true
	default:
		return false
	}
}

// Mode selects how the voice prompt addresses the callee.
type Mode string

const (
	// ModePatientOnly addresses the patient directly.
	ModePatientOnly Mode = "patient_only"
	// ModeCaregiverPatient addresses the caregiver first, then the patient.
	ModeCaregiverPatient Mode = "caregiver_patient"
)

// ParseMode normalizes a client-supplied mode string. The legacy alias
// "self_patient" maps to ModePatientOnly; anything unrecognized defaults to
// ModeCaregiverPatient, matching the original service behavior.
func ParseMode(raw string) Mode {
	switch raw {
	case string(ModePatientOnly), "self_patient":
		return ModePatientOnly
	default:
		return ModeCaregiverPatient
	}
}
