package notifications

import (
	"errors"

	apperrors "github.com/charlesng35/studentms/pkg/errors"
)

var (
	// ErrUnknownChannel is returned by the factory for values outside the closed channel set.
	ErrUnknownChannel = apperrors.ErrUnknownChannel

	// ErrInvalidTransition reports an attempt to move a record out of a terminal status.
	ErrInvalidTransition = errors.New("notification store: invalid status transition")

	// ErrMissingEmail marks an Email notification without a recipient address.
	ErrMissingEmail = errors.New("email missing")

	// ErrMissingPhone marks an SMS notification without a recipient phone number.
	ErrMissingPhone = errors.New("phone missing")
)
