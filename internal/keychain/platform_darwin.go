//go:build darwin

package keychain

const platformDefault = KindEnclave
