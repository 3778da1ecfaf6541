//go:build !darwin

package keychain

// Without a secure enclave keys live in process memory unless another
// backend is configured explicitly.
const platformDefault = KindMemory
