package oracle

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duesgate/internal/acl"
	"duesgate/internal/fhe"
	"duesgate/internal/fhe/sim"
	id "duesgate/pkg/domain"
	dErrors "duesgate/pkg/domain-errors"
)

func newTestOracle(t *testing.T) (*Oracle, *acl.Manager, *sim.Simulator) {
	t.Helper()
	grants := acl.NewManager(acl.NewInMemoryStore())
	capability := sim.New(grants)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(grants, capability, logger), grants, capability
}

func ingest(t *testing.T, capability *sim.Simulator, value uint32) fhe.HandleID {
	t.Helper()
	handle, err := capability.Ingest(context.Background(), capability.Encrypt(value))
	require.NoError(t, err)
	return handle.Export()
}

func TestRevealPrivate(t *testing.T) {
	ctx := context.Background()
	oracle, grants, capability := newTestOracle(t)
	alice := id.PrincipalID(uuid.New())
	bob := id.PrincipalID(uuid.New())

	tag := ingest(t, capability, 1_700_000_000)
	require.NoError(t, grants.GrantPrivate(ctx, tag, alice))

	t.Run("granted principal reads plaintext", func(t *testing.T) {
		value, kind, err := oracle.RevealPrivate(ctx, tag, alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_700_000_000), value)
		assert.Equal(t, fhe.KindUint32, kind)
	})

	t.Run("other principal is refused", func(t *testing.T) {
		_, _, err := oracle.RevealPrivate(ctx, tag, bob)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("public grant admits everyone", func(t *testing.T) {
		require.NoError(t, grants.GrantPublic(ctx, tag))
		_, _, err := oracle.RevealPrivate(ctx, tag, bob)
		require.NoError(t, err)
	})
}

func TestRevealPublic(t *testing.T) {
	ctx := context.Background()
	oracle, grants, capability := newTestOracle(t)

	tag := ingest(t, capability, 42)

	t.Run("refused before public grant", func(t *testing.T) {
		_, _, err := oracle.RevealPublic(ctx, tag)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("allowed after public grant", func(t *testing.T) {
		require.NoError(t, grants.GrantPublic(ctx, tag))
		value, _, err := oracle.RevealPublic(ctx, tag)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), value)
	})
}

func TestRevealPrivateGrantDoesNotLeakToPublic(t *testing.T) {
	ctx := context.Background()
	oracle, grants, capability := newTestOracle(t)
	alice := id.PrincipalID(uuid.New())

	tag := ingest(t, capability, 7)
	require.NoError(t, grants.GrantPrivate(ctx, tag, alice))

	_, _, err := oracle.RevealPublic(ctx, tag)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestRevealUnknownHandle(t *testing.T) {
	ctx := context.Background()
	oracle, grants, _ := newTestOracle(t)

	var tag fhe.HandleID
	tag[0] = 0xFF
	require.NoError(t, grants.GrantPublic(ctx, tag))

	_, _, err := oracle.RevealPublic(ctx, tag)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
