//go:build integration

package acl_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"duesgate/internal/acl"
	"duesgate/internal/fhe"
	id "duesgate/pkg/domain"
	"duesgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *acl.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = acl.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func handleWith(b byte) fhe.HandleID {
	var h fhe.HandleID
	for i := range h {
		h[i] = b
	}
	return h
}

func (s *RedisStoreSuite) TestSelfGrant() {
	ctx := context.Background()
	handle := handleWith(0x01)

	ok, err := s.store.SystemMayUse(ctx, handle)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Append(ctx, acl.Grant{Handle: handle, Scope: acl.ScopeSelf}))

	ok, err = s.store.SystemMayUse(ctx, handle)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestPrivateGrant() {
	ctx := context.Background()
	handle := handleWith(0x02)
	alice := id.PrincipalID(uuid.New())
	bob := id.PrincipalID(uuid.New())

	s.Require().NoError(s.store.Append(ctx, acl.Grant{
		Handle: handle, Scope: acl.ScopePrivate, Principal: alice,
	}))

	ok, err := s.store.MayDecrypt(ctx, handle, alice)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.MayDecrypt(ctx, handle, bob)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.store.IsPublic(ctx, handle)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestPublicGrantAdmitsAnyPrincipal() {
	ctx := context.Background()
	handle := handleWith(0x03)

	s.Require().NoError(s.store.Append(ctx, acl.Grant{Handle: handle, Scope: acl.ScopePublic}))

	ok, err := s.store.IsPublic(ctx, handle)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.MayDecrypt(ctx, handle, id.PrincipalID(uuid.New()))
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestGrantsSurviveAcrossStoreInstances() {
	ctx := context.Background()
	handle := handleWith(0x04)

	s.Require().NoError(s.store.Append(ctx, acl.Grant{Handle: handle, Scope: acl.ScopeSelf}))

	// A second store over the same backend sees the grant, as the
	// out-of-band decryption service would after a core restart.
	other := acl.NewRedisStore(s.redis.Client)
	ok, err := other.SystemMayUse(ctx, handle)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisStoreSuite) TestUnknownScopeRejected() {
	err := s.store.Append(context.Background(), acl.Grant{
		Handle: handleWith(0x05), Scope: acl.Scope("bogus"),
	})
	s.Require().Error(err)
}
