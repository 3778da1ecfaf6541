package keychain

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/n1/keychain/internal/crypto"
	"github.com/n1/keychain/internal/dao"
	"github.com/n1/keychain/internal/migrations"
)

// MinSealKeySize is the shortest seal key the SQLite backend accepts.
const MinSealKeySize = 32

// sqliteStore keeps keys in the key_entries table. The unique index on
// name makes put create-once; with a seal key every value is sealed with
// AES-GCM under a key derived for its name.
type sqliteStore struct {
	entries dao.EntryStore
}

func newSQLiteStore(db *sql.DB, sealKey []byte) (*sqliteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: sqlite backend needs a database", ErrUnavailable)
	}
	if err := migrations.Bootstrap(db); err != nil {
		return nil, fmt.Errorf("bootstrap key store: %w", err)
	}

	if sealKey == nil {
		return &sqliteStore{entries: dao.NewKeyEntryDAO(db)}, nil
	}
	if len(sealKey) < MinSealKeySize {
		return nil, fmt.Errorf("seal key must be at least %d bytes, got %d", MinSealKeySize, len(sealKey))
	}
	return &sqliteStore{entries: dao.NewSealedKeyEntryDAO(db, sealKey)}, nil
}

func (s *sqliteStore) kind() Kind { return KindSQLite }

func (s *sqliteStore) get(id string) ([]byte, error) {
	b, err := s.entries.Get(id)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, dao.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case errors.Is(err, crypto.ErrInvalidData), errors.Is(err, dao.ErrNotSealed), errors.Is(err, dao.ErrSealed):
		return nil, fmt.Errorf("%w: %s: %w", ErrLengthMismatch, id, err)
	default:
		return nil, fmt.Errorf("sqlite get %q: %w", id, err)
	}
}

func (s *sqliteStore) putLocal(id string, b []byte) error {
	if err := s.entries.Insert(id, b); err != nil {
		if errors.Is(err, dao.ErrExists) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
		}
		return fmt.Errorf("sqlite put %q: %w", id, err)
	}
	crypto.Wipe(b)
	return nil
}

func (s *sqliteStore) deleteLocal(id string) error {
	err := s.entries.Delete(id)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return fmt.Errorf("sqlite delete %q: %w", id, err)
	}
	return nil
}
