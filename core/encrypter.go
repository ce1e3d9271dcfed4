package core

import (
	"context"
	"errors"
)

// Errors returned by Encrypter implementations
var (
	ErrCipherFailure         = errors.New("cipher operation failed")
	ErrAuthenticationFailure = errors.New("message authentication failed")
)

// KeyGen presents a function used to generate a key valid for a given algorithm.
type KeyGen func(ctx context.Context) (Key, error)

// Encrypter presents a service responsible for implementing encryption logic
// based on a specific algorithm.
//
// Implementations are stateless; key and IV are supplied per call so the same
// Encrypter value serves every cipher version of its algorithm.
type Encrypter interface {

	// Encrypt encrypts the given plain text and returns the cipher text plus,
	// for algorithms with a detached tag, the authentication tag.
	Encrypt(key Key, iv, plainTxt, aad []byte) (cipherTxt, authTag []byte, err error)

	// Decrypt decrypts the given cipher text and returns the original value.
	// It returns ErrAuthenticationFailure if the tag check fails,
	// and ErrCipherFailure on invalid key or IV lengths.
	Decrypt(key Key, iv, cipherTxt, authTag, aad []byte) (plainTxt []byte, err error)

	// Algorithm returns the implemented algorithm identifier.
	Algorithm() Algorithm

	// KeyGen returns a function that generates a valid key
	// according to the implemented algorithm.
	KeyGen() KeyGen
}
