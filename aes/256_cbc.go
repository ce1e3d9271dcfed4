package aes

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/ln80/symenc/core"
)

type aes256cbc struct{}

var _ core.Encrypter = &aes256cbc{}

// New256CBCEncrypter returns a core.Encrypter implementation of AES-256 in CBC
// mode with PKCS#7 padding.
//
// CBC does not authenticate the cipher text; tampering surfaces, at best, as a
// padding failure. Prefer an AEAD algorithm unless a legacy format requires CBC.
func New256CBCEncrypter() core.Encrypter {
	return &aes256cbc{}
}

func (e *aes256cbc) Algorithm() core.Algorithm {
	return core.AES256CBC
}

func (e *aes256cbc) KeyGen() core.KeyGen {
	return Key256GenFn
}

func (e *aes256cbc) Encrypt(key core.Key, iv, plainTxt, aad []byte) (cipherTxt, authTag []byte, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(core.ErrCipherFailure, err)
		}
	}()

	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}

	if len(iv) != aes.BlockSize {
		err = fmt.Errorf("invalid IV size %d, want %d", len(iv), aes.BlockSize)
		return
	}

	padded := pad(plainTxt, aes.BlockSize)

	cipherTxt = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(cipherTxt, padded)

	return cipherTxt, nil, nil
}

func (e *aes256cbc) Decrypt(key core.Key, iv, cipherTxt, authTag, aad []byte) (plainTxt []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(core.ErrCipherFailure, err)
	}

	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: invalid IV size %d, want %d",
			core.ErrCipherFailure, len(iv), aes.BlockSize)
	}
	if len(cipherTxt) == 0 || len(cipherTxt)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: cipher text is not a multiple of the block size",
			core.ErrCipherFailure)
	}

	padded := make([]byte, len(cipherTxt))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, cipherTxt)

	return unpad(padded, aes.BlockSize)
}
