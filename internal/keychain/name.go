package keychain

import (
	"fmt"
	"sort"
)

// Name identifies a stored key. The set is closed and versioned: entries
// outlive the process on persistent backends, so existing values are never
// renumbered or removed. New names are appended at the end.
type Name int

const (
	// KeyEncryptionKey wraps the data encryption keys of the local store.
	KeyEncryptionKey Name = iota + 1
	// BackupKeyEncryptionKey wraps the keys inside exported backups.
	BackupKeyEncryptionKey
	// StoreSealKey seals entries of the SQLite backend at rest.
	StoreSealKey
)

var nameIDs = map[Name]string{
	KeyEncryptionKey:       "sk-key-encryption-key",
	BackupKeyEncryptionKey: "sk-backup-key-encryption-key",
	StoreSealKey:           "sk-store-seal-key",
}

// String returns the storage identifier of n.
func (n Name) String() string {
	if id, ok := nameIDs[n]; ok {
		return id
	}
	return fmt.Sprintf("Name(%d)", int(n))
}

// Valid reports whether n belongs to the enumeration.
func (n Name) Valid() bool {
	_, ok := nameIDs[n]
	return ok
}

// Names returns every known name in declaration order.
func Names() []Name {
	names := make([]Name, 0, len(nameIDs))
	for n := range nameIDs {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ParseName maps a storage identifier back to its Name.
func ParseName(id string) (Name, error) {
	for n, s := range nameIDs {
		if s == id {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownName, id)
}
