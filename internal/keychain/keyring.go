package keychain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/n1/keychain/internal/crypto"
	"github.com/zalando/go-keyring"
)

// DefaultService is the service attribute under which keys are filed in
// OS credential stores.
const DefaultService = "n1-keychain"

// go-keyring is process-global and has no create-only primitive, so
// put is check-then-set under this lock.
var keyringMu sync.RWMutex

type keyringStore struct {
	service string
}

func newKeyringStore(service string) *keyringStore {
	if service == "" {
		service = DefaultService
	}
	return &keyringStore{service: service}
}

func (s *keyringStore) kind() Kind { return KindKeyring }

func (s *keyringStore) get(id string) ([]byte, error) {
	keyringMu.RLock()
	encoded, err := keyring.Get(s.service, id)
	keyringMu.RUnlock()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("keyring get %q: %w", id, err)
	}

	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLengthMismatch, id, err)
	}
	return b, nil
}

func (s *keyringStore) putLocal(id string, b []byte) error {
	keyringMu.Lock()
	defer keyringMu.Unlock()

	_, err := keyring.Get(s.service, id)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	case !errors.Is(err, keyring.ErrNotFound):
		return fmt.Errorf("keyring lookup %q: %w", id, err)
	}

	if err := keyring.Set(s.service, id, base64.StdEncoding.EncodeToString(b)); err != nil {
		return fmt.Errorf("keyring set %q: %w", id, err)
	}
	crypto.Wipe(b)
	return nil
}

func (s *keyringStore) deleteLocal(id string) error {
	keyringMu.Lock()
	defer keyringMu.Unlock()

	err := keyring.Delete(s.service, id)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %q: %w", id, err)
	}
	return nil
}
