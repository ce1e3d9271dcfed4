// Package siv contains an AES-SIV implementation of core.Encrypter built on
// the Tink deterministic AEAD primitive.
//
// With an empty IV, encryption is fully deterministic: the same key and plain
// text always yield the same cipher text, which leaks equality of plain texts
// to anyone observing them. A non-empty IV is folded into the associated data,
// which restores randomization when the caller supplies a fresh one.
package siv

import (
	"bytes"
	"context"
	"errors"

	"github.com/tink-crypto/tink-go/v2/daead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	aes_sivpb "github.com/tink-crypto/tink-go/v2/proto/aes_siv_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"github.com/tink-crypto/tink-go/v2/subtle/random"
	"github.com/tink-crypto/tink-go/v2/tink"
	"google.golang.org/protobuf/proto"

	"github.com/ln80/symenc/core"
)

const (
	// KeySize is the AES-SIV key size: two 256-bit AES keys.
	KeySize = 64
)

var (
	// KeyGenFn generates a random AES-SIV key.
	KeyGenFn core.KeyGen = func(ctx context.Context) (core.Key, error) {
		return core.Key(random.GetRandomBytes(KeySize)), nil
	}
)

type aessiv struct{}

var _ core.Encrypter = &aessiv{}

// NewEncrypter returns a core.Encrypter implementation of AES-SIV.
func NewEncrypter() core.Encrypter {
	return &aessiv{}
}

func (e *aessiv) Algorithm() core.Algorithm {
	return core.AESSIV
}

func (e *aessiv) KeyGen() core.KeyGen {
	return KeyGenFn
}

func (e *aessiv) Encrypt(key core.Key, iv, plainTxt, aad []byte) (cipherTxt, authTag []byte, err error) {
	d, err := primitive(key)
	if err != nil {
		return nil, nil, errors.Join(core.ErrCipherFailure, err)
	}

	cipherTxt, err = d.EncryptDeterministically(plainTxt, withIV(aad, iv))
	if err != nil {
		return nil, nil, errors.Join(core.ErrCipherFailure, err)
	}

	// the synthetic IV doubles as the authentication tag and travels in-band
	return cipherTxt, nil, nil
}

func (e *aessiv) Decrypt(key core.Key, iv, cipherTxt, authTag, aad []byte) (plainTxt []byte, err error) {
	d, err := primitive(key)
	if err != nil {
		return nil, errors.Join(core.ErrCipherFailure, err)
	}

	plainTxt, err = d.DecryptDeterministically(cipherTxt, withIV(aad, iv))
	if err != nil {
		return nil, errors.Join(core.ErrAuthenticationFailure, err)
	}

	return plainTxt, nil
}

func withIV(aad, iv []byte) []byte {
	if len(iv) == 0 {
		return aad
	}
	out := make([]byte, 0, len(aad)+len(iv))
	return append(append(out, aad...), iv...)
}

func primitive(key core.Key) (tink.DeterministicAEAD, error) {
	handle, err := keyHandle(key)
	if err != nil {
		return nil, err
	}
	return daead.New(handle)
}

// keyHandle builds a Tink keyset handle for AES-SIV from raw key bytes.
func keyHandle(key core.Key) (*keyset.Handle, error) {
	serializedKey, err := proto.Marshal(&aes_sivpb.AesSivKey{
		Version:  0,
		KeyValue: key,
	})
	if err != nil {
		return nil, err
	}

	serializedKeyset, err := proto.Marshal(&tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData: &tinkpb.KeyData{
					TypeUrl:         "type.googleapis.com/google.crypto.tink.AesSivKey",
					Value:           serializedKey,
					KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
				},
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return insecurecleartextkeyset.Read(
		keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
}
