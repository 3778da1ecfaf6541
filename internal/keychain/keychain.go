// Package keychain stores symmetric key material in the most secure
// facility the host offers.
//
// A Keychain is bound to exactly one backing store for its lifetime:
//   - enclave: the darwin keychain, device-local, available while unlocked
//   - keyring: the OS credential store via go-keyring
//   - sqlite:  a SQLite file, values sealed with AES-GCM
//   - memory:  process memory, for tests and platforms without an enclave
//
// Every backend gives the same guarantees. PutLocal never overwrites an
// existing entry and fails with ErrAlreadyExists instead. Delete is
// idempotent. Replacing a key is Delete followed by PutLocal; the two
// calls are not atomic, and a crash in between leaves the name empty.
package keychain

import (
	"database/sql"
	"fmt"

	"github.com/n1/keychain/internal/crypto"
	"github.com/n1/keychain/internal/log"
	"github.com/rs/zerolog"
)

// Keychain forwards key operations to its backing store. It holds no
// mutable state of its own and is safe for concurrent use.
type Keychain struct {
	backend backend
	logger  zerolog.Logger
}

type options struct {
	kind    Kind
	service string
	db      *sql.DB
	sealKey []byte
	logger  *zerolog.Logger
}

// Option configures New.
type Option func(*options)

// WithBackend selects the backing store. Defaults to PlatformDefault.
func WithBackend(k Kind) Option {
	return func(o *options) { o.kind = k }
}

// WithKeyringService sets the service name used by the keyring and
// enclave backends. Defaults to DefaultService.
func WithKeyringService(service string) Option {
	return func(o *options) { o.service = service }
}

// WithDB supplies the database of the sqlite backend.
func WithDB(db *sql.DB) Option {
	return func(o *options) { o.db = db }
}

// WithSealKey makes the sqlite backend seal values at rest. The key is
// retained for the lifetime of the Keychain.
func WithSealKey(key []byte) Option {
	return func(o *options) { o.sealKey = key }
}

// WithLogger replaces the package logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New builds a Keychain over the selected backend.
func New(opts ...Option) (*Keychain, error) {
	o := options{kind: platformDefault}
	for _, opt := range opts {
		opt(&o)
	}

	logger := log.With("keychain")
	if o.logger != nil {
		logger = *o.logger
	}

	var (
		b   backend
		err error
	)
	switch o.kind {
	case KindMemory:
		b = newMemoryStore()
	case KindKeyring:
		b = newKeyringStore(o.service)
	case KindEnclave:
		b, err = newEnclaveStore(o.service)
	case KindSQLite:
		b, err = newSQLiteStore(o.db, o.sealKey)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownBackend, o.kind)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("backend", b.kind().String()).Msg("Keychain ready")
	return &Keychain{backend: b, logger: logger}, nil
}

// Default returns a Keychain over the platform default backend. It needs
// no configuration and never fails.
func Default() *Keychain {
	kc, err := New()
	if err != nil {
		panic("keychain: platform default backend failed: " + err.Error())
	}
	return kc
}

// Kind reports the backend in use.
func (kc *Keychain) Kind() Kind { return kc.backend.kind() }

// Get returns the key stored under name. It fails with ErrNotFound when
// there is none, and with ErrLengthMismatch when the entry is not exactly
// N bytes.
func Get[N Size](kc *Keychain, name Name) (*KeyMaterial[N], error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownName, int(name))
	}

	b, err := kc.backend.get(name.String())
	if err != nil {
		return nil, err
	}

	if want := sizeOf[N](); len(b) != want {
		got := len(b)
		crypto.Wipe(b)
		kc.logger.Warn().Str("name", name.String()).Int("got", got).Int("want", want).Msg("Stored key has wrong length")
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d", ErrLengthMismatch, name, got, want)
	}
	return &KeyMaterial[N]{b: b}, nil
}

// PutLocal stores key under name in the device-local store. It never
// overwrites: if name is taken it fails with ErrAlreadyExists and the
// stored key is unchanged.
//
// On success key is consumed and reports Consumed. On failure the caller
// still owns key and may retry or Destroy it.
func PutLocal[N Size](kc *Keychain, name Name, key *KeyMaterial[N]) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownName, int(name))
	}

	b, err := key.take()
	if err != nil {
		return err
	}
	if err := kc.backend.putLocal(name.String(), b); err != nil {
		return err
	}
	key.release()

	kc.logger.Debug().Str("name", name.String()).Str("backend", kc.backend.kind().String()).Msg("Stored key")
	return nil
}

// Delete removes the key stored under name. Deleting a missing key
// succeeds, so cleanup paths can run more than once.
func (kc *Keychain) Delete(name Name) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownName, int(name))
	}
	if err := kc.backend.deleteLocal(name.String()); err != nil {
		return err
	}
	kc.logger.Debug().Str("name", name.String()).Str("backend", kc.backend.kind().String()).Msg("Deleted key")
	return nil
}
