package keychain

import (
	"crypto/subtle"
	"fmt"

	"github.com/n1/keychain/internal/crypto"
)

// Size fixes the length of a KeyMaterial at the type level, so a 16-byte
// key can never be passed where a 32-byte key is expected.
type Size interface {
	size() int
}

// Size16 is a 128-bit key.
type Size16 struct{}

// Size32 is a 256-bit key.
type Size32 struct{}

// Size64 is a 512-bit key.
type Size64 struct{}

func (Size16) size() int { return 16 }
func (Size32) size() int { return 32 }
func (Size64) size() int { return 64 }

func sizeOf[N Size]() int {
	var n N
	return n.size()
}

// KeyMaterial is a symmetric key of exactly N bytes. It is owned by one
// holder at a time: PutLocal consumes it, Get returns a fresh one.
// The zero value is consumed.
type KeyMaterial[N Size] struct {
	b []byte
}

// NewKeyMaterial takes ownership of b, which must be exactly N bytes long.
// The caller must not use b afterwards.
func NewKeyMaterial[N Size](b []byte) (*KeyMaterial[N], error) {
	if want := sizeOf[N](); len(b) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrLengthMismatch, len(b), want)
	}
	return &KeyMaterial[N]{b: b}, nil
}

// RandomKeyMaterial returns N bytes from the system CSPRNG.
func RandomKeyMaterial[N Size]() (*KeyMaterial[N], error) {
	b, err := crypto.Generate(sizeOf[N]())
	if err != nil {
		return nil, err
	}
	return &KeyMaterial[N]{b: b}, nil
}

// Len is the static key length N.
func (k *KeyMaterial[N]) Len() int { return sizeOf[N]() }

// Bytes exposes the key without copying, or nil once consumed.
// The slice must not be retained or modified.
func (k *KeyMaterial[N]) Bytes() []byte { return k.b }

// Consumed reports whether the bytes were handed off or destroyed.
func (k *KeyMaterial[N]) Consumed() bool { return k.b == nil }

// Destroy zeroes the key and marks it consumed. Safe to call twice.
func (k *KeyMaterial[N]) Destroy() {
	crypto.Wipe(k.b)
	k.b = nil
}

// Equal compares two keys in constant time. Consumed keys are never equal.
func (k *KeyMaterial[N]) Equal(other *KeyMaterial[N]) bool {
	if k == nil || other == nil || k.b == nil || other.b == nil {
		return false
	}
	return subtle.ConstantTimeCompare(k.b, other.b) == 1
}

func (k *KeyMaterial[N]) String() string {
	return fmt.Sprintf("KeyMaterial[%d](redacted)", sizeOf[N]())
}

func (k *KeyMaterial[N]) GoString() string { return k.String() }

// take hands the buffer to a storage operation without releasing it.
func (k *KeyMaterial[N]) take() ([]byte, error) {
	if k == nil || k.b == nil {
		return nil, ErrConsumed
	}
	return k.b, nil
}

// release drops the reference after the backend took ownership. The
// buffer is not wiped here: a retaining backend still uses it.
func (k *KeyMaterial[N]) release() { k.b = nil }
