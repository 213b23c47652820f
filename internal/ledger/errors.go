package ledger

import "errors"

var (
	ErrNotFound        = errors.New("ledger: item not found")
	ErrValidation      = errors.New("ledger: validation failed")
	ErrCeilingRequired = errors.New("ledger: budget ceiling must be set before adding items")
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
