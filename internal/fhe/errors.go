package fhe

import (
	"errors"

	dErrors "duesgate/pkg/domain-errors"
	"duesgate/pkg/platform/sentinel"
)

// Translate converts capability sentinel errors into coded domain errors at
// the service boundary. Errors already carrying a code pass through.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrProofInvalid):
		return dErrors.Wrap(err, dErrors.CodeProofInvalid, "attested ciphertext failed verification")
	case errors.Is(err, sentinel.ErrBudgetExceeded):
		return dErrors.Wrap(err, dErrors.CodeResourceExhausted, "operation exceeded homomorphic budget")
	case errors.Is(err, sentinel.ErrPermissionMissing):
		return dErrors.Wrap(err, dErrors.CodePermissionMissing, "handle used without standing self-grant")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "handle unknown to capability")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "capability operation failed")
	}
}
