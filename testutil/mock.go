package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/ln80/symenc/core"
)

// RegistryMock presents an in-memory core.CipherRegistry with injectable failures.
type RegistryMock struct {
	Ciphs map[int]core.Cipher

	SetCipherErr  error
	GetCipherErr  error
	GetCiphersErr error

	mu sync.RWMutex
}

var _ core.CipherRegistry = &RegistryMock{}

// SetCipher implements core.CipherRegistry
func (r *RegistryMock) SetCipher(ctx context.Context, cipher core.Cipher) (core.Cipher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.SetCipherErr; err != nil {
		return core.Cipher{}, err
	}
	if err := cipher.Validate(); err != nil {
		return core.Cipher{}, err
	}

	if r.Ciphs == nil {
		r.Ciphs = make(map[int]core.Cipher)
	}
	r.Ciphs[cipher.Version] = cipher

	return cipher, nil
}

// CurrentCipher implements core.CipherRegistry
func (r *RegistryMock) CurrentCipher(ctx context.Context) (core.Cipher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.GetCipherErr; err != nil {
		return core.Cipher{}, err
	}

	current := 0
	for v := range r.Ciphs {
		if v > current {
			current = v
		}
	}
	if current == 0 {
		return core.Cipher{}, core.ErrNoCipherConfigured
	}

	return r.Ciphs[current], nil
}

// CipherForVersion implements core.CipherRegistry
func (r *RegistryMock) CipherForVersion(ctx context.Context, version int) (core.Cipher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.GetCipherErr; err != nil {
		return core.Cipher{}, err
	}

	cipher, ok := r.Ciphs[version]
	if !ok {
		return core.Cipher{}, core.ErrUnknownCipherVersion
	}

	return cipher, nil
}

// Ciphers implements core.CipherRegistry
func (r *RegistryMock) Ciphers(ctx context.Context) ([]core.Cipher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.GetCiphersErr; err != nil {
		return nil, err
	}

	ciphers := make([]core.Cipher, 0, len(r.Ciphs))
	for _, c := range r.Ciphs {
		ciphers = append(ciphers, c)
	}
	sort.Slice(ciphers, func(i, j int) bool {
		return ciphers[i].Version < ciphers[j].Version
	})

	return ciphers, nil
}

// KeyWrapperMock presents a core.KeyWrapper that "wraps" data keys with a
// reversible prefix. It keeps no state so unwrapping works across instances.
type KeyWrapperMock struct {
	WrapErr   error
	UnwrapErr error

	WrapCalls, UnwrapCalls int

	mu sync.Mutex
}

var _ core.KeyWrapper = &KeyWrapperMock{}

var keyWrapPrefix = []byte("wrapped:")

// WrapKey implements core.KeyWrapper
func (w *KeyWrapperMock) WrapKey(ctx context.Context, size int) (core.Key, []byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.WrapCalls++
	if err := w.WrapErr; err != nil {
		return nil, nil, err
	}

	key := make([]byte, size)
	for i := range key {
		key[i] = byte(i % 251)
	}

	return core.Key(key), append(append([]byte(nil), keyWrapPrefix...), key...), nil
}

// UnwrapKey implements core.KeyWrapper
func (w *KeyWrapperMock) UnwrapKey(ctx context.Context, wrapped []byte) (core.Key, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.UnwrapCalls++
	if err := w.UnwrapErr; err != nil {
		return nil, err
	}

	if len(wrapped) <= len(keyWrapPrefix) || string(wrapped[:len(keyWrapPrefix)]) != string(keyWrapPrefix) {
		return nil, core.ErrCipherFailure
	}

	return core.Key(wrapped[len(keyWrapPrefix):]), nil
}
