package member

import (
	"context"
	"fmt"
	"sync"

	id "duesgate/pkg/domain"
	"duesgate/pkg/platform/sentinel"
)

// InMemoryStore keeps cells in process memory. Operations against it are
// serialized by the coordinating service, matching the global serial-ordering
// model; the mutex only guards against concurrent readers.
type InMemoryStore struct {
	mu    sync.RWMutex
	cells map[id.MemberID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{cells: make(map[id.MemberID]Record)}
}

func (s *InMemoryStore) Get(_ context.Context, member id.MemberID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.cells[member]
	if !ok {
		return Record{}, fmt.Errorf("member %s: %w", member, sentinel.ErrNotFound)
	}
	return record, nil
}

func (s *InMemoryStore) Put(_ context.Context, member id.MemberID, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[member] = record
	return nil
}
