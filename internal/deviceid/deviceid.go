// Package deviceid assigns each key store a stable device identifier.
package deviceid

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	// MetadataTableName is the table holding key store metadata
	MetadataTableName = "metadata"

	// DeviceIDKey is the metadata key of the device UUID
	DeviceIDKey = "device_uuid"
)

// ErrNoDeviceID is returned when the metadata table has no device UUID
var ErrNoDeviceID = errors.New("device UUID not found in metadata")

// Generate returns a new random device identifier
func Generate() string {
	return uuid.New().String()
}

// Get reads the device UUID from db
func Get(db *sql.DB) (string, error) {
	var id string
	err := db.QueryRow("SELECT value FROM metadata WHERE key = ?", DeviceIDKey).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoDeviceID
		}
		return "", fmt.Errorf("failed to query device UUID: %w", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("stored device UUID %q is malformed: %w", id, err)
	}
	return id, nil
}

// Ensure returns the device UUID stored in db, creating one on first use.
// Concurrent callers all observe the same identifier.
func Ensure(db *sql.DB) (string, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec("INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)", DeviceIDKey, Generate())
	if err != nil {
		return "", fmt.Errorf("failed to store device UUID: %w", err)
	}

	return Get(db)
}
