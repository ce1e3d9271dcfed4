package testutil

import (
	"github.com/google/uuid"

	"github.com/ln80/symenc/aes"
	"github.com/ln80/symenc/core"
)

func RandomID() string {
	return uuid.NewString()
}

// RandomCipher returns a valid random cipher of the given version,
// using the default algorithm.
func RandomCipher(version int) core.Cipher {
	return RandomCipherOf(version, core.DefaultAlgorithm)
}

// RandomCipherOf returns a valid random cipher of the given version and algorithm.
func RandomCipherOf(version int, alg core.Algorithm) core.Cipher {
	spec, err := alg.Spec()
	if err != nil {
		panic(err)
	}
	return core.Cipher{
		Version:   version,
		Key:       core.Key(aes.RandomBytes(spec.KeySize)),
		IV:        aes.RandomBytes(spec.IVSize),
		Algorithm: alg,
	}
}

// VersionsOf returns the version numbers of the given ciphers, in order.
func VersionsOf(ciphers []core.Cipher) []int {
	versions := make([]int, 0, len(ciphers))
	for _, c := range ciphers {
		versions = append(versions, c.Version)
	}
	return versions
}

func IntsEqual(x, y []int) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
