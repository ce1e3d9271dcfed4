package aes

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/ln80/symenc/core"
)

type aes256gcm struct{}

var _ core.Encrypter = &aes256gcm{}

// New256GCMEncrypter returns a core.Encrypter implementation of AES-256 in GCM
// mode with a detached authentication tag.
func New256GCMEncrypter() core.Encrypter {
	return &aes256gcm{}
}

func (e *aes256gcm) Algorithm() core.Algorithm {
	return core.AES256GCM
}

func (e *aes256gcm) KeyGen() core.KeyGen {
	return Key256GenFn
}

func (e *aes256gcm) Encrypt(key core.Key, iv, plainTxt, aad []byte) (cipherTxt, authTag []byte, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(core.ErrCipherFailure, err)
		}
	}()

	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return
	}

	if len(iv) != aesgcm.NonceSize() {
		err = fmt.Errorf("invalid IV size %d, want %d", len(iv), aesgcm.NonceSize())
		return
	}

	sealed := aesgcm.Seal(nil, iv, plainTxt, aad)

	// detach the tag so the envelope can carry it as a separate header field
	split := len(sealed) - aesgcm.Overhead()
	cipherTxt = sealed[:split]
	authTag = sealed[split:]

	return cipherTxt, authTag, nil
}

func (e *aes256gcm) Decrypt(key core.Key, iv, cipherTxt, authTag, aad []byte) (plainTxt []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(core.ErrCipherFailure, err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(core.ErrCipherFailure, err)
	}

	if len(iv) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: invalid IV size %d, want %d",
			core.ErrCipherFailure, len(iv), aesgcm.NonceSize())
	}

	sealed := make([]byte, 0, len(cipherTxt)+len(authTag))
	sealed = append(append(sealed, cipherTxt...), authTag...)

	plainTxt, err = aesgcm.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, errors.Join(core.ErrAuthenticationFailure, err)
	}

	return plainTxt, nil
}
