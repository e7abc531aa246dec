package acl

import (
	"context"
	"sync"

	"duesgate/internal/fhe"
	id "duesgate/pkg/domain"
)

type grantSet struct {
	self       bool
	public     bool
	principals map[id.PrincipalID]struct{}
}

// InMemoryStore keeps grants in process memory. Suitable for tests and
// single-node dev deployments; production uses the redis store so the
// out-of-band decryption service can consult grants independently.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[fhe.HandleID]*grantSet
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[fhe.HandleID]*grantSet)}
}

func (s *InMemoryStore) Append(_ context.Context, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.grants[grant.Handle]
	if !ok {
		set = &grantSet{principals: make(map[id.PrincipalID]struct{})}
		s.grants[grant.Handle] = set
	}
	switch grant.Scope {
	case ScopeSelf:
		set.self = true
	case ScopePublic:
		set.public = true
	case ScopePrivate:
		set.principals[grant.Principal] = struct{}{}
	}
	return nil
}

func (s *InMemoryStore) SystemMayUse(_ context.Context, handle fhe.HandleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.grants[handle]
	return ok && set.self, nil
}

func (s *InMemoryStore) MayDecrypt(_ context.Context, handle fhe.HandleID, principal id.PrincipalID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.grants[handle]
	if !ok {
		return false, nil
	}
	if set.public {
		return true, nil
	}
	_, granted := set.principals[principal]
	return granted, nil
}

func (s *InMemoryStore) IsPublic(_ context.Context, handle fhe.HandleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.grants[handle]
	return ok && set.public, nil
}
