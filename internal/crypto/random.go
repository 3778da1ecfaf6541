package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrInvalidLength is returned when a negative length is requested
var ErrInvalidLength = errors.New("invalid length")

// Generate returns n random bytes from the system CSPRNG.
func Generate(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
