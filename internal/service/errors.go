package service

import "errors"

// Error kinds surfaced by the session engine. All are terminal; the
// engine never retries on the caller's behalf. Handlers map them to
// HTTP statuses with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("session not found")
	ErrForbidden        = errors.New("not a participant of this session")
	ErrSessionFull      = errors.New("session is full")
	ErrAlreadyPredicted = errors.New("prediction already submitted")
)
