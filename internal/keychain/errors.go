package keychain

import "errors"

var (
	// ErrNotFound is returned by Get when no entry exists under the name.
	ErrNotFound = errors.New("keychain: key not found")

	// ErrAlreadyExists is returned by PutLocal when the name is taken.
	// Entries are never overwritten; Delete first.
	ErrAlreadyExists = errors.New("keychain: key already exists")

	// ErrLengthMismatch is returned when a stored entry does not decode to
	// a key of the requested length. It signals corruption and is never
	// resolved by truncating or padding.
	ErrLengthMismatch = errors.New("keychain: stored key length or format mismatch")

	// ErrConsumed is returned when key material is used after PutLocal
	// took it or after Destroy.
	ErrConsumed = errors.New("keychain: key material consumed")

	// ErrUnknownName is returned for a Name outside the enumeration.
	ErrUnknownName = errors.New("keychain: unknown key name")

	// ErrUnavailable is returned when the requested backend cannot run on
	// this platform or lacks a required resource.
	ErrUnavailable = errors.New("keychain: backend unavailable")

	// ErrUnknownBackend is returned by ParseKind for unrecognized names.
	ErrUnknownBackend = errors.New("keychain: unknown backend")
)
