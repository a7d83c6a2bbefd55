package storage

import (
	"sync"

	"github.com/docoi/Smart-S/internal/domain"
)

// MemoryStore keeps usage counters and the credit log in process memory.
// Used in tests and when no persistence path is configured.
type MemoryStore struct {
	mu    sync.Mutex
	usage map[string]*domain.AccountUsage
	log   []domain.CreditSnapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{usage: make(map[string]*domain.AccountUsage)}
}

func (s *MemoryStore) LoadUsage() (map[string]*domain.AccountUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*domain.AccountUsage, len(s.usage))
	for k, v := range s.usage {
		u := *v
		out[k] = &u
	}
	return out, nil
}

func (s *MemoryStore) SaveUsage(usage map[string]*domain.AccountUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = make(map[string]*domain.AccountUsage, len(usage))
	for k, v := range usage {
		u := *v
		s.usage[k] = &u
	}
	return nil
}

func (s *MemoryStore) AppendCreditSnapshot(snap domain.CreditSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, snap)
	if len(s.log) > creditLogCap {
		s.log = s.log[len(s.log)-creditLogCap:]
	}
	return nil
}

func (s *MemoryStore) CreditSnapshots() ([]domain.CreditSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CreditSnapshot, len(s.log))
	copy(out, s.log)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
