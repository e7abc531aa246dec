package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "duesgate/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseMemberID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseMemberID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePrincipalID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseMemberID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, MemberID(validUUID), id)
	})

	t.Run("round trips through String", func(t *testing.T) {
		p, err := ParsePrincipalID(uuid.New().String())
		require.NoError(t, err)
		again, err := ParsePrincipalID(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, again)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	memberID := MemberID(uuid.New())
	principalID := PrincipalID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ MemberID = principalID   // compile error
	// var _ PrincipalID = memberID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(memberID), uuid.UUID(principalID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, MemberID{}.IsNil())
	assert.True(t, PrincipalID{}.IsNil())
	assert.False(t, MemberID(uuid.New()).IsNil())
	assert.False(t, PrincipalID(uuid.New()).IsNil())
}
