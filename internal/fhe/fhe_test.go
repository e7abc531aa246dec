package fhe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "duesgate/pkg/domain-errors"
	"duesgate/pkg/platform/sentinel"
)

func TestHandleIDRoundTrip(t *testing.T) {
	var id HandleID
	for i := range id {
		id[i] = byte(i)
	}

	s := id.String()
	assert.Len(t, s, 64)

	parsed, ok := ParseHandleID(s)
	require.True(t, ok)
	assert.Equal(t, id, parsed)
}

func TestParseHandleIDRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"zz",
		"deadbeef",
		strings.Repeat("0", 63),
		strings.Repeat("0", 65),
		strings.Repeat("g", 64),
	}
	for _, input := range cases {
		_, ok := ParseHandleID(input)
		assert.False(t, ok, input)
	}
}

func TestHandleIDIsZero(t *testing.T) {
	assert.True(t, HandleID{}.IsZero())
	var id HandleID
	id[31] = 1
	assert.False(t, id.IsZero())
}

func TestMeterCharge(t *testing.T) {
	m := NewMeter(10)

	require.NoError(t, m.Charge(4))
	require.NoError(t, m.Charge(6))
	assert.Equal(t, uint64(0), m.Remaining())

	err := m.Charge(1)
	require.ErrorIs(t, err, sentinel.ErrBudgetExceeded)
	assert.Equal(t, uint64(0), m.Remaining())
}

func TestMeterRefusesWithoutDebiting(t *testing.T) {
	m := NewMeter(3)
	require.ErrorIs(t, m.Charge(4), sentinel.ErrBudgetExceeded)
	// The refused charge must not shrink the budget.
	assert.Equal(t, uint64(3), m.Remaining())
	require.NoError(t, m.Charge(3))
}

func TestMeterContext(t *testing.T) {
	ctx := context.Background()

	_, ok := MeterFrom(ctx)
	assert.False(t, ok)

	m := NewMeter(5)
	ctx = WithMeter(ctx, m)
	got, ok := MeterFrom(ctx)
	require.True(t, ok)
	assert.Same(t, m, got)
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"proof", fmt.Errorf("ingest: %w", sentinel.ErrProofInvalid), dErrors.CodeProofInvalid},
		{"budget", sentinel.ErrBudgetExceeded, dErrors.CodeResourceExhausted},
		{"permission", sentinel.ErrPermissionMissing, dErrors.CodePermissionMissing},
		{"unknown handle", sentinel.ErrNotFound, dErrors.CodeInvariantViolation},
		{"other", errors.New("boom"), dErrors.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Translate(tc.err)
			assert.True(t, dErrors.HasCode(err, tc.code))
			assert.True(t, errors.Is(err, tc.err))
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, Translate(nil))
	})

	t.Run("coded errors pass through unchanged", func(t *testing.T) {
		coded := dErrors.New(dErrors.CodeNotRegistered, "no cell")
		assert.Equal(t, coded, Translate(coded))
	})
}
