package reminder

import "errors"

var (
	// ErrInvalidRequest marks user-correctable start-call input (4xx).
	ErrInvalidRequest = errors.New("reminder: invalid request")

	// ErrUnknownCall marks a call_id this process never created (not-found,
	// never a server fault).
	ErrUnknownCall = errors.New("reminder: unknown call id")
)
