package schedule

import "errors"

// Validation errors are detected before any write and surfaced to the
// caller as-is; ErrDownstreamUnavailable wraps storage/collaborator
// failures so the calling layer can decide whether to retry.
var (
	ErrInvalidRange          = errors.New("start must be before end")
	ErrPeriodLocked          = errors.New("period is locked")
	ErrNotFound              = errors.New("not found")
	ErrInvalidTemplate       = errors.New("invalid period template")
	ErrDownstreamUnavailable = errors.New("downstream unavailable")
)
