package migrations

import "database/sql"

// InitKeyStoreMigrations registers the schema of the SQLite key store.
// Released versions are never edited; schema changes get a new version.
func InitKeyStoreMigrations(runner *Runner) {
	runner.AddMigration(
		1,
		"Create key_entries table",
		`CREATE TABLE key_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			value BLOB NOT NULL,
			sealed INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	)

	runner.AddMigration(
		2,
		"Create unique index on key entry name",
		`CREATE UNIQUE INDEX idx_key_entries_name ON key_entries(name)`,
	)

	// Entries are create-once: reject in-place updates at the storage layer too.
	runner.AddMigration(
		3,
		"Forbid updates of key entries",
		`CREATE TRIGGER trig_key_entries_no_update
		BEFORE UPDATE ON key_entries
		BEGIN
			SELECT RAISE(ABORT, 'key entries are immutable');
		END`,
	)

	runner.AddMigration(
		4,
		"Create metadata table",
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	)
}

// Bootstrap brings db up to the latest key store schema.
func Bootstrap(db *sql.DB) error {
	runner := NewRunner(db)
	InitKeyStoreMigrations(runner)
	return runner.Run()
}
