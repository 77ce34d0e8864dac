package billing

import (
	"errors"
	"fmt"
)

// Sentinel errors let callers handle specific business failures
// programmatically (handlers map them to HTTP statuses).
var (
	ErrEmptyDesignation   = errors.New("line designation is required")
	ErrNegativeQuantity   = errors.New("line quantity cannot be negative")
	ErrNegativePrice      = errors.New("line unit price cannot be negative")
	ErrDiscountOutOfRange = errors.New("discount percent must be between 0 and 100")
	ErrUnknownUnit        = errors.New("unknown unit")
	ErrUnknownVATRate     = errors.New("VAT rate is not an allowed rate")

	// ErrPreconditionFailed marks an operation invoked on a document in the
	// wrong status (e.g. converting a non-accepted quote). No write is
	// attempted when it is returned.
	ErrPreconditionFailed = errors.New("document status does not allow this operation")
)

// ValidationError wraps a sentinel error with per-line context so the caller
// can point the user at the offending row.
type ValidationError struct {
	Err      error
	Position int // zero-based line index, -1 for document-level failures
	Details  string
}

func (e *ValidationError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("line %d: %s", e.Position+1, e.detail())
	}
	return e.detail()
}

func (e *ValidationError) detail() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
