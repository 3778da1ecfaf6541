package dao

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrExists is returned when inserting a name that already has a record
	ErrExists = errors.New("record already exists")

	// ErrSealed is returned when a plain store finds a sealed record
	ErrSealed = errors.New("record is sealed")
)

// EntryStore is the create-once record store behind the SQLite key store.
type EntryStore interface {
	Get(name string) ([]byte, error)
	Insert(name string, value []byte) error
	Delete(name string) error
	List() ([]string, error)
}

// KeyEntry is a row of the key_entries table
type KeyEntry struct {
	ID        int64
	Name      string
	Value     []byte
	Sealed    bool
	CreatedAt time.Time
}

// KeyEntryDAO provides access to the key_entries table
type KeyEntryDAO struct {
	db *sql.DB
}

// NewKeyEntryDAO creates a new KeyEntryDAO
func NewKeyEntryDAO(db *sql.DB) *KeyEntryDAO {
	return &KeyEntryDAO{db: db}
}

// Record retrieves the full row stored under name
func (d *KeyEntryDAO) Record(name string) (*KeyEntry, error) {
	var entry KeyEntry
	err := d.db.QueryRow(
		"SELECT id, name, value, sealed, created_at FROM key_entries WHERE name = ?",
		name,
	).Scan(&entry.ID, &entry.Name, &entry.Value, &entry.Sealed, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get key entry: %w", err)
	}
	return &entry, nil
}

// Get retrieves the plaintext value stored under name. Sealed records are
// refused with ErrSealed.
func (d *KeyEntryDAO) Get(name string) ([]byte, error) {
	entry, err := d.Record(name)
	if err != nil {
		return nil, err
	}
	if entry.Sealed {
		return nil, fmt.Errorf("%w: %s", ErrSealed, name)
	}
	return entry.Value, nil
}

// Insert stores value under name. It never overwrites: if a record already
// exists the table is left untouched and ErrExists is returned.
func (d *KeyEntryDAO) Insert(name string, value []byte) error {
	return d.insert(name, value, false)
}

func (d *KeyEntryDAO) insert(name string, value []byte, sealed bool) error {
	result, err := d.db.Exec(
		"INSERT INTO key_entries (name, value, sealed) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		name, value, sealed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert key entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrExists
	}
	return nil
}

// Delete removes the record under name, or returns ErrNotFound
func (d *KeyEntryDAO) Delete(name string) error {
	result, err := d.db.Exec("DELETE FROM key_entries WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete key entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all entry names in order
func (d *KeyEntryDAO) List() ([]string, error) {
	rows, err := d.db.Query("SELECT name FROM key_entries ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query key entry names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan key entry name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key entry names: %w", err)
	}
	return names, nil
}
