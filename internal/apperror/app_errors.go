package apperror

import "errors"

var (
	ErrInvalidConfig         = errors.New("invalid game configuration")
	ErrPreconditionViolation = errors.New("precondition violated")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSnapshotNotFound      = errors.New("session snapshot not found")
)
