package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// EntryKeySize is the length of keys produced by DeriveEntryKey.
const EntryKeySize = 32

// DeriveEntryKey derives the AES-256 key that seals one stored entry.
// Every entry name gets its own key so a sealed value cannot be moved
// under another name and still open.
func DeriveEntryKey(sealKey []byte, name string) ([]byte, error) {
	if len(sealKey) == 0 {
		return nil, fmt.Errorf("empty seal key")
	}
	r := hkdf.New(sha256.New, sealKey, nil, []byte("keychain-entry/"+name))
	out := make([]byte, EntryKeySize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("failed to derive entry key: %w", err)
	}
	return out, nil
}
