package resources

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/n1/keychain/internal/config"
	"github.com/n1/keychain/internal/keychain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = backend
	cfg.Database = filepath.Join(t.TempDir(), "keychain.db")
	cfg.KeyringService = "n1-keychain-test"
	cfg.DeviceName = "test-device"
	return cfg
}

func TestOpenMemory(t *testing.T) {
	r, err := Open(testConfig(t, "memory"))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, keychain.KindMemory, r.Keychain().Kind())
	assert.NotNil(t, r.DB())
	assert.Len(t, r.DeviceID(), 36)
	assert.Equal(t, "test-device", r.DeviceName())
}

func TestDeviceIDStableAcrossOpens(t *testing.T) {
	cfg := testConfig(t, "memory")

	r1, err := Open(cfg)
	require.NoError(t, err)
	id := r1.DeviceID()
	require.NoError(t, r1.Close())

	r2, err := Open(cfg)
	require.NoError(t, err)
	defer r2.Close()
	assert.Equal(t, id, r2.DeviceID())
}

func TestOpenWithoutDatabase(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Database = ""

	r, err := Open(cfg)
	require.NoError(t, err)
	defer r.Close()

	assert.Nil(t, r.DB())
	assert.Len(t, r.DeviceID(), 36)

	cfg.Backend = "sqlite"
	_, err = Open(cfg)
	assert.ErrorIs(t, err, keychain.ErrUnavailable)
}

func TestOpenSQLiteUnsealed(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	cfg.Seal = config.SealNone

	r, err := Open(cfg)
	require.NoError(t, err)

	key, err := keychain.RandomKeyMaterial[keychain.Size32]()
	require.NoError(t, err)
	want := append([]byte(nil), key.Bytes()...)
	require.NoError(t, keychain.PutLocal(r.Keychain(), keychain.KeyEncryptionKey, key))
	require.NoError(t, r.Close())

	r, err = Open(cfg)
	require.NoError(t, err)
	defer r.Close()

	got, err := keychain.Get[keychain.Size32](r.Keychain(), keychain.KeyEncryptionKey)
	require.NoError(t, err)
	assert.Equal(t, want, got.Bytes())
}

func TestOpenSQLiteSealedByKeyring(t *testing.T) {
	if keychain.PlatformDefault() == keychain.KindEnclave {
		t.Skip("seal key custody uses the real darwin keychain")
	}
	keyring.MockInit()

	cfg := testConfig(t, "sqlite")
	r, err := Open(cfg)
	require.NoError(t, err)

	key, err := keychain.RandomKeyMaterial[keychain.Size32]()
	require.NoError(t, err)
	want := append([]byte(nil), key.Bytes()...)
	require.NoError(t, keychain.PutLocal(r.Keychain(), keychain.KeyEncryptionKey, key))

	var raw []byte
	require.NoError(t, r.DB().QueryRow("SELECT value FROM key_entries WHERE name = ?",
		keychain.KeyEncryptionKey.String()).Scan(&raw))
	assert.NotContains(t, string(raw), string(want), "value must be sealed at rest")
	require.NoError(t, r.Close())

	// Same custody, same seal key
	r, err = Open(cfg)
	require.NoError(t, err)
	defer r.Close()
	got, err := keychain.Get[keychain.Size32](r.Keychain(), keychain.KeyEncryptionKey)
	require.NoError(t, err)
	assert.Equal(t, want, got.Bytes())
}

func TestEnsureSealKeyStable(t *testing.T) {
	custody, err := keychain.New(keychain.WithBackend(keychain.KindMemory))
	require.NoError(t, err)

	first, err := EnsureSealKey(custody)
	require.NoError(t, err)
	second, err := EnsureSealKey(custody)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestEnsureSealKeyPlatformError(t *testing.T) {
	platformErr := errors.New("keyring locked")
	keyring.MockInitWithError(platformErr)
	t.Cleanup(keyring.MockInit)

	custody, err := keychain.New(keychain.WithBackend(keychain.KindKeyring))
	require.NoError(t, err)

	_, err = EnsureSealKey(custody)
	assert.ErrorIs(t, err, platformErr)
}

// fakeResources shows the interface is satisfiable without a database.
type fakeResources struct{ kc *keychain.Keychain }

func (f fakeResources) Keychain() *keychain.Keychain { return f.kc }
func (fakeResources) DB() *sql.DB                    { return nil }
func (fakeResources) DeviceID() string               { return "fake" }
func (fakeResources) DeviceName() string             { return "fake" }
func (fakeResources) BackupDir() string              { return "" }

func TestResourcesInjectable(t *testing.T) {
	kc, err := keychain.New(keychain.WithBackend(keychain.KindMemory))
	require.NoError(t, err)
	var r Resources = fakeResources{kc: kc}
	require.NoError(t, r.Keychain().Delete(keychain.KeyEncryptionKey))
}
