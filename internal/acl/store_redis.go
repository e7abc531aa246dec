package acl

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"duesgate/internal/fhe"
	id "duesgate/pkg/domain"
)

// Redis key layout. Grants are irrevocable, so keys carry no TTL.
//
//	acl:self:<handle>  -> "1"
//	acl:pub:<handle>   -> "1"
//	acl:priv:<handle>  -> set of principal ids
const (
	selfKeyPrefix    = "acl:self:"
	publicKeyPrefix  = "acl:pub:"
	privateKeyPrefix = "acl:priv:"
)

// RedisStore persists grants in Redis so the out-of-band decryption service
// can check them after a restart of the core.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Append(ctx context.Context, grant Grant) error {
	var err error
	switch grant.Scope {
	case ScopeSelf:
		err = s.client.Set(ctx, selfKeyPrefix+grant.Handle.String(), "1", 0).Err()
	case ScopePublic:
		err = s.client.Set(ctx, publicKeyPrefix+grant.Handle.String(), "1", 0).Err()
	case ScopePrivate:
		err = s.client.SAdd(ctx, privateKeyPrefix+grant.Handle.String(), grant.Principal.String()).Err()
	default:
		return fmt.Errorf("append grant: unknown scope %q", grant.Scope)
	}
	if err != nil {
		return fmt.Errorf("append %s grant: %w", grant.Scope, err)
	}
	return nil
}

func (s *RedisStore) SystemMayUse(ctx context.Context, handle fhe.HandleID) (bool, error) {
	n, err := s.client.Exists(ctx, selfKeyPrefix+handle.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check self grant: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) MayDecrypt(ctx context.Context, handle fhe.HandleID, principal id.PrincipalID) (bool, error) {
	public, err := s.IsPublic(ctx, handle)
	if err != nil {
		return false, err
	}
	if public {
		return true, nil
	}
	granted, err := s.client.SIsMember(ctx, privateKeyPrefix+handle.String(), principal.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check private grant: %w", err)
	}
	return granted, nil
}

func (s *RedisStore) IsPublic(ctx context.Context, handle fhe.HandleID) (bool, error) {
	n, err := s.client.Exists(ctx, publicKeyPrefix+handle.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check public grant: %w", err)
	}
	return n > 0, nil
}

var _ Store = (*RedisStore)(nil)
