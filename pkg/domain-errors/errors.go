// Package domainerrors provides coded domain errors shared by services and
// transport. Import it aliased as dErrors.
//
// Stores return plain sentinel errors (pkg/platform/sentinel); services
// translate those into coded errors; the HTTP layer maps codes onto status
// codes and uniform JSON envelopes. Public-facing codes are deliberately
// low-information: Rejected and NotFound carry no detail about which check
// fired or whether the entity exists.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeRejected is returned when the intake gate refuses a submission.
	// Always surfaced uniformly, never with the triggering heuristic.
	CodeRejected Code = "rejected"
	// CodeValidation covers missing or too-short required report fields.
	CodeValidation Code = "validation"
	// CodeIssuanceFailed means credential or case-number generation exhausted
	// its retry budget.
	CodeIssuanceFailed Code = "issuance_failed"
	// CodeNotFound covers bad credentials and cases outside the caller's
	// tenant. Both render identically.
	CodeNotFound Code = "not_found"
	// CodeInvalidTransition is a state machine ordering violation.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeConflict means a concurrent transition won the race.
	CodeConflict Code = "conflict"

	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// un-coded errors so nothing leaks through the transport layer unclassified.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps a code onto the HTTP status the transport layer should use.
func HTTPStatus(code Code) int {
	switch code {
	case CodeRejected:
		// Uniform refusal with no hint about which heuristic fired.
		return http.StatusUnprocessableEntity
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeIssuanceFailed, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
