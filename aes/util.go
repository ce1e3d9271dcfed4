// Package aes contains implementation and helper functions related
// specifically to "Advanced Encryption Standard" algorithm and cryptography in general.
package aes

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/subtle/random"

	"github.com/ln80/symenc/core"
)

const (
	aes256KeySize = 32
)

var (
	// Key256GenFn generates a random 256-bit key.
	Key256GenFn core.KeyGen = func(ctx context.Context) (core.Key, error) {
		return core.Key(random.GetRandomBytes(aes256KeySize)), nil
	}
)

// RandomBytes returns a cryptographically-random byte slice of the given size.
func RandomBytes(size int) []byte {
	return random.GetRandomBytes(uint32(size))
}

func pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty padded data", core.ErrCipherFailure)
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("%w: invalid padding size %d", core.ErrCipherFailure, padding)
	}
	for _, b := range data[len(data)-padding:] {
		if b != byte(padding) {
			return nil, fmt.Errorf("%w: invalid padding", core.ErrCipherFailure)
		}
	}
	return data[:len(data)-padding], nil
}
