package notifRepo

import "errors"

var (
	// ErrNotFound is returned when no notification matches the given id.
	ErrNotFound = errors.New("notification not found")
	// ErrInvalid is returned when a notification fails field validation.
	ErrInvalid = errors.New("invalid notification")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("notification store unavailable")
)
