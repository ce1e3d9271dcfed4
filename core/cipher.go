// Package core contains the envelope encryption model and service interfaces.
package core

import (
	"errors"
	"fmt"
)

// Errors returned by cipher validation logic.
var (
	ErrInvalidCipher = errors.New("invalid cipher")
)

// MaxVersion is the highest cipher version an envelope version byte can carry.
const MaxVersion = 255

// Key presents the plain text value of an encryption key.
type Key []byte

// String overwrites the default to string behavior to protect the key sensitive value.
func (k Key) String() string {
	return "KEY-*****"
}

// Algorithm identifies a supported symmetric encryption algorithm.
// The string values follow the OpenSSL lowercase naming convention.
type Algorithm string

const (
	AES256GCM Algorithm = "aes-256-gcm"
	AES256CBC Algorithm = "aes-256-cbc"
	AESSIV    Algorithm = "aes-siv"
)

// DefaultAlgorithm is the algorithm assumed when a cipher does not name one.
const DefaultAlgorithm = AES256GCM

// AlgorithmSpec holds the per-algorithm parameters used for validation.
type AlgorithmSpec struct {
	// KeySize is the required key length in bytes.
	KeySize int

	// IVSize is the required initialization vector length in bytes.
	IVSize int

	// TagSize is the detached authentication tag length in bytes,
	// zero if the algorithm does not produce one.
	TagSize int

	// AEAD indicates whether the algorithm authenticates the cipher text.
	AEAD bool
}

var algorithmSpecs = map[Algorithm]AlgorithmSpec{
	AES256GCM: {KeySize: 32, IVSize: 12, TagSize: 16, AEAD: true},
	AES256CBC: {KeySize: 32, IVSize: 16},

	// AES-SIV authenticates in-band; the synthetic IV travels within the cipher text.
	// Its 16-byte IV is folded into the associated data to randomize encryption.
	AESSIV: {KeySize: 64, IVSize: 16, AEAD: true},
}

// Spec returns the parameter spec of the algorithm.
// It fails with ErrInvalidCipher if the algorithm is not supported.
func (a Algorithm) Spec() (AlgorithmSpec, error) {
	spec, ok := algorithmSpecs[a]
	if !ok {
		return AlgorithmSpec{}, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidCipher, a)
	}
	return spec, nil
}

// Cipher presents a versioned encryption key and its static IV.
//
// The static IV serves as the deterministic-mode IV for the version and as
// the fallback when an envelope does not carry an explicit one.
type Cipher struct {
	Version   int
	Key       Key
	IV        []byte
	Algorithm Algorithm
}

// Alg returns the cipher's algorithm, defaulting to DefaultAlgorithm.
func (c Cipher) Alg() Algorithm {
	if c.Algorithm == "" {
		return DefaultAlgorithm
	}
	return c.Algorithm
}

// String overwrites the default to string behavior to protect the key sensitive value.
func (c Cipher) String() string {
	return fmt.Sprintf("cipher{v%d %s KEY-***** IV-*****}", c.Version, c.Alg())
}

// Validate checks version, key and IV lengths against the algorithm spec.
func (c Cipher) Validate() error {
	if c.Version < 1 || c.Version > MaxVersion {
		return fmt.Errorf("%w: version %d out of range [1, %d]", ErrInvalidCipher, c.Version, MaxVersion)
	}
	spec, err := c.Alg().Spec()
	if err != nil {
		return err
	}
	if len(c.Key) != spec.KeySize {
		return fmt.Errorf("%w: %s requires a %d-byte key, got %d",
			ErrInvalidCipher, c.Alg(), spec.KeySize, len(c.Key))
	}
	if len(c.IV) != spec.IVSize {
		return fmt.Errorf("%w: %s requires a %d-byte IV, got %d",
			ErrInvalidCipher, c.Alg(), spec.IVSize, len(c.IV))
	}
	return nil
}
