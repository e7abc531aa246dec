// Package domain holds the identifier primitives shared by every layer.
//
// IDs are distinct types over uuid.UUID so member and principal identifiers
// cannot be swapped at compile time. Construct them via the Parse functions at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "duesgate/pkg/domain-errors"
)

// MemberID identifies a member whose dues status is tracked.
type MemberID uuid.UUID

// PrincipalID identifies a caller (address-equivalent). The zero value is
// never a valid principal; role-setting operations reject it.
type PrincipalID uuid.UUID

// ParseMemberID validates and returns a MemberID.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseMemberID(s string) (MemberID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return MemberID{}, err
	}
	return MemberID(u), nil
}

// ParsePrincipalID validates and returns a PrincipalID.
//
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParsePrincipalID(s string) (PrincipalID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PrincipalID{}, err
	}
	return PrincipalID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil uuid")
	}
	return u, nil
}

func (m MemberID) String() string { return uuid.UUID(m).String() }

// IsNil reports whether the ID is the zero value.
func (m MemberID) IsNil() bool { return uuid.UUID(m) == uuid.Nil }

func (p PrincipalID) String() string { return uuid.UUID(p).String() }

// IsNil reports whether the ID is the zero value.
func (p PrincipalID) IsNil() bool { return uuid.UUID(p) == uuid.Nil }
