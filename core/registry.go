package core

import (
	"context"
	"errors"
)

// Errors returned by CipherRegistry implementations
var (
	ErrNoCipherConfigured   = errors.New("no cipher configured")
	ErrUnknownCipherVersion = errors.New("unknown cipher version")
	ErrPersistCipherFailure = errors.New("failed to persist cipher")
	ErrGetCipherFailure     = errors.New("failed to get cipher(s)")
)

// CipherRegistry presents the service responsible for managing cipher versions.
//
// The registry owns every Cipher for the life of the process. The "current"
// cipher, used for new encryptions, is the one with the highest registered
// version. Implementations must let many readers proceed concurrently and
// serialize writers so that a reader never observes a partially-updated Cipher.
type CipherRegistry interface {

	// SetCipher inserts or replaces the cipher under its version.
	// As a side effect it may change the current version if the inserted
	// version is now the maximum.
	// It returns ErrInvalidCipher if key or IV lengths do not match the
	// cipher's algorithm.
	SetCipher(ctx context.Context, cipher Cipher) (Cipher, error)

	// Ciphers returns all known ciphers ordered by version.
	// The order aids debugging; callers must not rely on it for correctness.
	Ciphers(ctx context.Context) ([]Cipher, error)

	// CurrentCipher returns the cipher used for new encryptions.
	// It returns ErrNoCipherConfigured if the registry is empty.
	CurrentCipher(ctx context.Context) (Cipher, error)

	// CipherForVersion returns the cipher registered under the given version.
	// It returns ErrUnknownCipherVersion if the version is absent.
	CipherForVersion(ctx context.Context, version int) (Cipher, error)
}

// CipherRegistryWrapper presents a wrapper on top of an existing cipher registry.
// It overrides and enhances behaviors such as caching of cipher material.
type CipherRegistryWrapper interface {
	CipherRegistry

	// Origin returns the wrapped cipher registry.
	Origin() CipherRegistry
}

// CipherRegistryCache is a CipherRegistry wrapper used for cache purpose.
type CipherRegistryCache interface {
	CipherRegistryWrapper

	// ClearCache invalidates cached ciphers based on a time-to-live configuration.
	// 'force' parameter allows to bypass the TTL check and immediately invalidates the cache.
	ClearCache(ctx context.Context, force bool) error
}
