package service

import "errors"

// Machine-readable codes returned with validation failures.
const (
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeInvalidCursor      = "INVALID_CURSOR"
)

// ValidationError is a client error carrying a distinguishing code. Mandatory
// fields (coordinates, cursors) are never silently coerced.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a coded client error.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// AsValidation unwraps err into a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var (
	// ErrListingNotFound maps to a 404 at the boundary.
	ErrListingNotFound = errors.New("listing not found")
	// ErrPlacesDisabled signals the place lookup integration is off or
	// unavailable; callers degrade to database-only results.
	ErrPlacesDisabled = errors.New("place lookup disabled")
)
