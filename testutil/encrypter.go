package testutil

import (
	"errors"
	"sync"

	"github.com/ln80/symenc/core"
)

var (
	ErrEncryptionMock = errors.New("encryption errors mock")
)

var _ core.Encrypter = &InstableEncrypterMock{}

// InstableEncrypterMock fails once its call counter reaches the point of failure.
type InstableEncrypterMock struct {
	PointOfFailure, counter int
	mu                      sync.Mutex
}

func (e *InstableEncrypterMock) ResetCounter() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.counter = 0
}

func (e *InstableEncrypterMock) Algorithm() core.Algorithm {
	return core.DefaultAlgorithm
}

func (e *InstableEncrypterMock) KeyGen() core.KeyGen {
	return nil
}

// Encrypt implements core.Encrypter
func (e *InstableEncrypterMock) Encrypt(key core.Key, iv, plainTxt, aad []byte) ([]byte, []byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.counter >= e.PointOfFailure {
		return nil, nil, ErrEncryptionMock
	}
	e.counter++

	return append([]byte("mock"), plainTxt...), nil, nil
}

// Decrypt implements core.Encrypter
func (e *InstableEncrypterMock) Decrypt(key core.Key, iv, cipherTxt, authTag, aad []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.counter >= e.PointOfFailure {
		return nil, ErrEncryptionMock
	}
	e.counter++

	return cipherTxt[4:], nil
}
