// Package apperr defines the error categories the HTTP boundary knows how to
// translate into JSON error envelopes.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Category is the discriminant of an Error.
type Category string

const (
	// AuthorizationDenied: the caller is known but lacks permission.
	AuthorizationDenied Category = "authorization_denied"
	// SchemaValidationFailed: the payload does not match its declared schema.
	SchemaValidationFailed Category = "schema_validation_failed"
	// SearchBackendError: the search backend reported a transport failure.
	SearchBackendError Category = "search_backend_error"
	// MissingContext: request wiring is broken. Never shown to callers.
	MissingContext Category = "missing_context"
)

// ForbiddenMessage is the fixed message returned for AuthorizationDenied.
const ForbiddenMessage = "You are not authorized to do this."

// Error is a categorised application error.
type Error struct {
	Category Category
	Message  string
	// RootCauses is the backend-reported root cause list (SearchBackendError only).
	RootCauses []map[string]any
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Category == t.Category
}

// LastRootCause returns the last reported root cause, or nil when the backend
// supplied none.
func (e *Error) LastRootCause() map[string]any {
	if len(e.RootCauses) == 0 {
		return nil
	}
	return e.RootCauses[len(e.RootCauses)-1]
}

// Forbidden returns an AuthorizationDenied error.
func Forbidden(message string) *Error {
	if message == "" {
		message = ForbiddenMessage
	}
	return &Error{Category: AuthorizationDenied, Message: message}
}

// Validation returns a SchemaValidationFailed error with a human-readable message.
func Validation(message string) *Error {
	return &Error{Category: SchemaValidationFailed, Message: message}
}

// FromValidator converts validator errors into a SchemaValidationFailed error.
func FromValidator(errs validator.ValidationErrors) *Error {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, describeField(fe))
	}
	return &Error{
		Category: SchemaValidationFailed,
		Message:  strings.Join(parts, "; "),
		Cause:    errs,
	}
}

func describeField(fe validator.FieldError) string {
	field := fe.Namespace()
	if field == "" {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required property", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// SearchBackend returns a SearchBackendError.
func SearchBackend(message string, rootCauses []map[string]any) *Error {
	return &Error{Category: SearchBackendError, Message: message, RootCauses: rootCauses}
}

// NewMissingContext reports that a request-scoped value was never set.
func NewMissingContext(what string) *Error {
	return &Error{Category: MissingContext, Message: what + " not found in request context"}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
