package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), name))
	require.NoError(t, err, "Opening database failed")
	t.Cleanup(func() { db.Close() })
	return db
}

func countMigrations(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count))
	return count
}

func TestRunnerAppliesPendingOnly(t *testing.T) {
	db := openTestDB(t, "runner.db")

	runner := NewRunner(db)
	runner.AddMigration(1, "Create test table", `CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	runner.AddMigration(2, "Add column", `ALTER TABLE test_table ADD COLUMN description TEXT`)

	require.NoError(t, runner.Run(), "Running migrations failed")
	assert.Equal(t, 2, countMigrations(t, db))

	_, err := db.Exec("INSERT INTO test_table (id, name, description) VALUES (1, 'Test', 'Description')")
	require.NoError(t, err)

	// Running again is a no-op
	require.NoError(t, runner.Run(), "Re-running migrations failed")
	assert.Equal(t, 2, countMigrations(t, db))

	runner.AddMigration(3, "Add another column", `ALTER TABLE test_table ADD COLUMN created_at TIMESTAMP`)
	require.NoError(t, runner.Run())
	assert.Equal(t, 3, countMigrations(t, db))

	applied, err := runner.Applied()
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, applied)
}

func TestRunnerOrdersByVersion(t *testing.T) {
	db := openTestDB(t, "order.db")

	runner := NewRunner(db)
	// Registered out of order: version 2 depends on version 1.
	runner.AddMigration(2, "Add column", `ALTER TABLE t ADD COLUMN extra TEXT`)
	runner.AddMigration(1, "Create table", `CREATE TABLE t (id INTEGER PRIMARY KEY)`)

	require.NoError(t, runner.Run())
	_, err := db.Exec("INSERT INTO t (id, extra) VALUES (1, 'x')")
	require.NoError(t, err)
}

func TestRunnerRejectsDuplicateVersion(t *testing.T) {
	db := openTestDB(t, "dup.db")

	runner := NewRunner(db)
	runner.AddMigration(1, "a", `CREATE TABLE a (id INTEGER)`)
	runner.AddMigration(1, "b", `CREATE TABLE b (id INTEGER)`)

	assert.Error(t, runner.Run())
}

func TestRunnerRollsBackFailedMigration(t *testing.T) {
	db := openTestDB(t, "fail.db")

	runner := NewRunner(db)
	runner.AddMigration(1, "broken", `CREATE TABLE`)

	require.Error(t, runner.Run())
	assert.Equal(t, 0, countMigrations(t, db))
}

func TestBootstrap(t *testing.T) {
	db := openTestDB(t, "keystore.db")

	require.NoError(t, Bootstrap(db), "Bootstrapping key store failed")
	require.NoError(t, Bootstrap(db), "Bootstrap should be idempotent")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM key_entries").Scan(&count))
	assert.Equal(t, 0, count)

	var indexExists bool
	err := db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM sqlite_master
			WHERE type='index' AND name='idx_key_entries_name'
		)
	`).Scan(&indexExists)
	require.NoError(t, err)
	assert.True(t, indexExists, "Expected key name index to exist")

	_, err = db.Exec("INSERT INTO key_entries (name, value) VALUES ('k', x'01')")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO key_entries (name, value) VALUES ('k', x'02')")
	assert.Error(t, err, "Duplicate names must be rejected")

	_, err = db.Exec("UPDATE key_entries SET value = x'03' WHERE name = 'k'")
	assert.Error(t, err, "Updates must be rejected by trigger")

	var value []byte
	require.NoError(t, db.QueryRow("SELECT value FROM key_entries WHERE name = 'k'").Scan(&value))
	assert.Equal(t, []byte{0x01}, value)

	_, err = db.Exec("INSERT INTO metadata (key, value) VALUES ('device_uuid', 'abc')")
	require.NoError(t, err)
}
