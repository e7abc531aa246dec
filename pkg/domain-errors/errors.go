// Package domainerrors defines the coded error type shared across services.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate those into coded domain errors at the boundary so
// handlers can map codes to HTTP statuses without string matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and caller branching.
type Code string

const (
	// CodeUnauthorized marks role-gate failures: the caller is authenticated
	// but lacks the owner/admin role required by the operation.
	CodeUnauthorized Code = "unauthorized"

	// CodeValidation marks rejected input, e.g. a zero principal supplied to
	// a role-setting operation. No state is touched.
	CodeValidation Code = "validation"

	// CodeNotRegistered marks status requests for members with no cell.
	CodeNotRegistered Code = "not_registered"

	// CodeProofInvalid marks attested ciphertexts whose accompanying proof
	// failed cryptographic verification during ingestion.
	CodeProofInvalid Code = "proof_invalid"

	// CodeResourceExhausted marks operations whose homomorphic work exceeded
	// the per-operation execution budget.
	CodeResourceExhausted Code = "resource_exhausted"

	// CodePermissionMissing marks reuse of a stored ciphertext handle that
	// was never self-granted after its last reassignment.
	CodePermissionMissing Code = "permission_missing"

	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Error is the coded error carried between services and handlers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error with a message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code on err, or CodeInternal when err carries
// no code at all.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code onto the HTTP status the transport layer
// responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeValidation, CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeNotRegistered, CodeNotFound:
		return http.StatusNotFound
	case CodeProofInvalid, CodeBadRequest:
		return http.StatusBadRequest
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	case CodePermissionMissing, CodeInvariantViolation:
		return http.StatusConflict
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
