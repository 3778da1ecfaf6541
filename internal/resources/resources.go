// Package resources bundles the long-lived handles shared across the
// application: the keychain, the SQLite pool and the device identity.
package resources

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/n1/keychain/internal/config"
	"github.com/n1/keychain/internal/deviceid"
	"github.com/n1/keychain/internal/keychain"
	"github.com/n1/keychain/internal/log"
	"github.com/n1/keychain/internal/migrations"
	"github.com/n1/keychain/internal/sqlite"
)

// Resources lets callers depend on the shared handles without knowing
// how they were built, so tests can inject their own.
type Resources interface {
	Keychain() *keychain.Keychain
	// DB is nil when no database is configured.
	DB() *sql.DB
	DeviceID() string
	DeviceName() string
	BackupDir() string
}

// Core is the production Resources. Handles stay valid until Close.
type Core struct {
	keychain   *keychain.Keychain
	db         *sql.DB
	sealKey    *keychain.KeyMaterial[keychain.Size32]
	deviceID   string
	deviceName string
	backupDir  string
}

var _ Resources = (*Core)(nil)

func (r *Core) Keychain() *keychain.Keychain { return r.keychain }
func (r *Core) DB() *sql.DB                  { return r.db }
func (r *Core) DeviceID() string             { return r.deviceID }
func (r *Core) DeviceName() string           { return r.deviceName }
func (r *Core) BackupDir() string            { return r.backupDir }

// Open builds every shared resource from cfg.
func Open(cfg *config.Config) (*Core, error) {
	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}

	r := &Core{
		deviceName: cfg.DeviceName,
		backupDir:  config.ExpandPath(cfg.BackupDir),
	}

	if cfg.Database != "" {
		if err := r.openDB(cfg.DatabasePath()); err != nil {
			return nil, err
		}
	} else {
		if kind == keychain.KindSQLite {
			return nil, fmt.Errorf("%w: sqlite backend needs a database path", keychain.ErrUnavailable)
		}
		r.deviceID = deviceid.Generate()
	}

	opts := []keychain.Option{
		keychain.WithBackend(kind),
		keychain.WithKeyringService(cfg.KeyringService),
		keychain.WithDB(r.db),
	}
	if kind == keychain.KindSQLite && cfg.Seal == config.SealKeyring {
		custody, err := keychain.New(
			keychain.WithBackend(custodyKind()),
			keychain.WithKeyringService(cfg.KeyringService),
		)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("seal key custody: %w", err)
		}
		r.sealKey, err = EnsureSealKey(custody)
		if err != nil {
			r.Close()
			return nil, err
		}
		opts = append(opts, keychain.WithSealKey(r.sealKey.Bytes()))
	}

	r.keychain, err = keychain.New(opts...)
	if err != nil {
		r.Close()
		return nil, err
	}

	log.Debug().
		Str("backend", r.keychain.Kind().String()).
		Str("device_id", r.deviceID).
		Msg("Resources ready")
	return r, nil
}

func (r *Core) openDB(path string) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	if err := migrations.Bootstrap(db); err != nil {
		db.Close()
		return fmt.Errorf("bootstrap %s: %w", path, err)
	}
	id, err := deviceid.Ensure(db)
	if err != nil {
		db.Close()
		return err
	}
	r.db = db
	r.deviceID = id
	return nil
}

// custodyKind picks the OS store that guards the sqlite seal key.
func custodyKind() keychain.Kind {
	if keychain.PlatformDefault() == keychain.KindEnclave {
		return keychain.KindEnclave
	}
	return keychain.KindKeyring
}

// Close wipes the seal key and closes the database. The keychain must not
// be used afterwards.
func (r *Core) Close() error {
	if r.sealKey != nil {
		r.sealKey.Destroy()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnsureSealKey returns the seal key held by custody, generating and
// storing one on first use. When two processes race, the loser adopts
// the winner's key.
func EnsureSealKey(custody *keychain.Keychain) (*keychain.KeyMaterial[keychain.Size32], error) {
	for attempt := 0; attempt < 2; attempt++ {
		key, err := keychain.Get[keychain.Size32](custody, keychain.StoreSealKey)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, keychain.ErrNotFound) {
			return nil, fmt.Errorf("read seal key: %w", err)
		}

		fresh, err := keychain.RandomKeyMaterial[keychain.Size32]()
		if err != nil {
			return nil, err
		}
		err = keychain.PutLocal(custody, keychain.StoreSealKey, fresh)
		fresh.Destroy()
		if err != nil && !errors.Is(err, keychain.ErrAlreadyExists) {
			return nil, fmt.Errorf("store seal key: %w", err)
		}
	}
	return nil, errors.New("seal key vanished while being created")
}
