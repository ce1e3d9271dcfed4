// Package kms contains a per-message data-key wrapper built on top of AWS KMS.
// The wrapped key travels inside the envelope header; the registry cipher only
// selects the algorithm while KMS-protected data keys do the actual encryption.
package kms

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/ln80/symenc/core"
)

func encryptionContext(namespace string) map[string]string {
	return map[string]string{"namespace": namespace}
}

type wrapper struct {
	kmsvc Client

	kmsKey string

	namespace string
}

var _ core.KeyWrapper = &wrapper{}

// NewKeyWrapper returns a core.KeyWrapper that generates and wraps data keys
// under the given KMS key.
//
// It requires non-empty values for the KMS client service and key ID parameters.
// Otherwise, it will panic.
func NewKeyWrapper(kmsvc Client, kmsKey, namespace string) core.KeyWrapper {
	if kmsvc == nil {
		panic("invalid KMS client service, nil value found")
	}
	if kmsKey == "" {
		panic("invalid KMS key ID, empty value found")
	}
	if namespace == "" {
		namespace = "default"
	}

	return &wrapper{
		kmsvc:     kmsvc,
		kmsKey:    kmsKey,
		namespace: namespace,
	}
}

// WrapKey implements core.KeyWrapper
func (w *wrapper) WrapKey(ctx context.Context, size int) (core.Key, []byte, error) {
	out, err := w.kmsvc.GenerateDataKey(ctx, &kms.GenerateDataKeyInput{
		KeyId:             aws.String(w.kmsKey),
		EncryptionContext: encryptionContext(w.namespace),
		NumberOfBytes:     aws.Int32(int32(size)),
	})
	if err != nil {
		return nil, nil, errors.Join(core.ErrCipherFailure, err)
	}

	return core.Key(out.Plaintext), out.CiphertextBlob, nil
}

// UnwrapKey implements core.KeyWrapper
func (w *wrapper) UnwrapKey(ctx context.Context, wrapped []byte) (core.Key, error) {
	out, err := w.kmsvc.Decrypt(ctx, &kms.DecryptInput{
		KeyId:             aws.String(w.kmsKey),
		CiphertextBlob:    wrapped,
		EncryptionContext: encryptionContext(w.namespace),
	})
	if err != nil {
		return nil, errors.Join(core.ErrCipherFailure, err)
	}

	return core.Key(out.Plaintext), nil
}
