//go:build darwin

package keychain

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"
	"github.com/n1/keychain/internal/crypto"
)

// enclaveStore files keys as generic passwords in the darwin keychain.
//
// Items are created with kSecAttrAccessibleWhenUnlockedThisDeviceOnly and
// are not synchronizable: never synced to iCloud, never readable while the
// device is locked.
type enclaveStore struct {
	service     string
	accessGroup string
}

func newEnclaveStore(service string) (backend, error) {
	if service == "" {
		service = DefaultService
	}
	return &enclaveStore{service: service}, nil
}

func (s *enclaveStore) kind() Kind { return KindEnclave }

func (s *enclaveStore) get(id string) ([]byte, error) {
	data, err := gokeychain.GetGenericPassword(s.service, id, "", s.accessGroup)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("enclave get %q: %w", id, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, nil
}

func (s *enclaveStore) putLocal(id string, b []byte) error {
	item := gokeychain.NewGenericPassword(s.service, id, "n1: "+id, b, s.accessGroup)
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)

	if err := gokeychain.AddItem(item); err != nil {
		if errors.Is(err, gokeychain.ErrorDuplicateItem) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
		}
		return fmt.Errorf("enclave add %q: %w", id, err)
	}
	crypto.Wipe(b)
	return nil
}

func (s *enclaveStore) deleteLocal(id string) error {
	err := gokeychain.DeleteGenericPasswordItem(s.service, id)
	if err != nil && !errors.Is(err, gokeychain.ErrorItemNotFound) {
		return fmt.Errorf("enclave delete %q: %w", id, err)
	}
	return nil
}
