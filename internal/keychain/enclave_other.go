//go:build !darwin

package keychain

import "fmt"

func newEnclaveStore(string) (backend, error) {
	return nil, fmt.Errorf("%w: enclave requires darwin", ErrUnavailable)
}
