package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrSyncInProgress        = errors.New("team sync already in progress")
	ErrMissingIdentifier     = errors.New("missing required identifier")
	// ErrMessageNotFound is returned by a ChatMessenger when the target message
	// was deleted out of band. Publishers treat it as recoverable.
	ErrMessageNotFound = errors.New("chat message not found")
)
