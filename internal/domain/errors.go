package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("not allowed for this actor")
	ErrOutOfStock           = errors.New("no copies of this book are available")
	ErrAlreadyReturned      = errors.New("borrowing has already been returned")
	ErrPendingPaymentExists = errors.New("user has an unresolved payment")
	ErrInvalidState         = errors.New("operation not valid in the current state")
	ErrInvalidReturnDate    = errors.New("expected return date must be in the future")
)

// ValidationError reports a bad input shape or range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExternalServiceError wraps a failure from an external collaborator
// (payment processor, notification channel). The message text of the
// underlying cause is passed through opaquely.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
