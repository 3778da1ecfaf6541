package dao

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/n1/keychain/internal/crypto"
)

// ErrNotSealed is returned when a sealed store finds a plaintext record
var ErrNotSealed = errors.New("record is not sealed")

// SealedKeyEntryDAO wraps KeyEntryDAO and seals every value with a key
// derived from sealKey and the record name.
type SealedKeyEntryDAO struct {
	dao     *KeyEntryDAO
	sealKey []byte
}

// NewSealedKeyEntryDAO creates a new SealedKeyEntryDAO
func NewSealedKeyEntryDAO(db *sql.DB, sealKey []byte) *SealedKeyEntryDAO {
	return &SealedKeyEntryDAO{
		dao:     NewKeyEntryDAO(db),
		sealKey: sealKey,
	}
}

// Get retrieves and opens the value stored under name
func (d *SealedKeyEntryDAO) Get(name string) ([]byte, error) {
	entry, err := d.dao.Record(name)
	if err != nil {
		return nil, err
	}
	if !entry.Sealed {
		return nil, fmt.Errorf("%w: %s", ErrNotSealed, name)
	}

	entryKey, err := crypto.DeriveEntryKey(d.sealKey, name)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(entryKey)

	plaintext, err := crypto.OpenBlob(entryKey, entry.Value, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open value for %s: %w", name, err)
	}
	return plaintext, nil
}

// Insert seals value and stores it under name without overwriting
func (d *SealedKeyEntryDAO) Insert(name string, value []byte) error {
	entryKey, err := crypto.DeriveEntryKey(d.sealKey, name)
	if err != nil {
		return err
	}
	defer crypto.Wipe(entryKey)

	blob, err := crypto.SealBlob(entryKey, value, []byte(name))
	if err != nil {
		return fmt.Errorf("failed to seal value for %s: %w", name, err)
	}
	return d.dao.insert(name, blob, true)
}

// Delete removes the record under name
func (d *SealedKeyEntryDAO) Delete(name string) error {
	return d.dao.Delete(name)
}

// List returns all entry names
func (d *SealedKeyEntryDAO) List() ([]string, error) {
	return d.dao.List()
}
