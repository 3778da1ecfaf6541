package keychain

import (
	"fmt"
	"sync"

	"github.com/n1/keychain/internal/crypto"
)

// memoryStore keeps keys in a map for tests and for platforms without a
// secure enclave.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (s *memoryStore) kind() Kind { return KindMemory }

func (s *memoryStore) get(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// putLocal retains b itself; no second copy of the key is made.
func (s *memoryStore) putLocal(id string, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}
	s.entries[id] = b
	return nil
}

func (s *memoryStore) deleteLocal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.entries[id]; ok {
		crypto.Wipe(b)
		delete(s.entries, id)
	}
	return nil
}
