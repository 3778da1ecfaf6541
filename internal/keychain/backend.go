package keychain

import (
	"fmt"
	"strings"
)

// Kind names a backing store implementation.
type Kind int

const (
	// KindMemory keeps keys in process memory. Nothing survives a restart.
	KindMemory Kind = iota + 1
	// KindKeyring uses the OS credential store through go-keyring
	// (Keychain on darwin, Secret Service on linux, Credential Manager on windows).
	KindKeyring
	// KindEnclave uses the hardware-backed darwin keychain, local to this
	// device and readable only while it is unlocked.
	KindEnclave
	// KindSQLite keeps sealed keys in a SQLite file.
	KindSQLite
)

var kindNames = map[Kind]string{
	KindMemory:  "memory",
	KindKeyring: "keyring",
	KindEnclave: "enclave",
	KindSQLite:  "sqlite",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// PlatformDefault is the backend Default selects on this platform.
func PlatformDefault() Kind { return platformDefault }

// ParseKind maps a configuration value to a Kind. An empty value or
// "platform" selects PlatformDefault.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "platform" {
		return platformDefault, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// backend is the storage contract every variant implements. It is sealed:
// only this package provides implementations, and every one of them must
// pass the shared conformance suite.
//
// Semantics shared by all variants:
//   - get returns a fresh buffer owned by the caller, or ErrNotFound.
//   - putLocal never overwrites; a taken id yields ErrAlreadyExists. On
//     success the backend owns b and either retains it or wipes it. On
//     failure b is untouched and still belongs to the caller.
//   - deleteLocal treats a missing entry as success.
type backend interface {
	kind() Kind
	get(id string) ([]byte, error)
	putLocal(id string, b []byte) error
	deleteLocal(id string) error
}
