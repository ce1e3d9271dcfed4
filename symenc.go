// Package symenc offers symmetric encryption as a service for opaque text
// values: plain text goes in, a self-describing versioned envelope token comes
// out, and key rotation keeps old tokens decryptable while new encryptions use
// the latest cipher version.
package symenc

import (
	"context"
	"fmt"
	"time"

	"github.com/ln80/symenc/aes"
	"github.com/ln80/symenc/core"
	"github.com/ln80/symenc/memory"
	"github.com/ln80/symenc/siv"
	"github.com/ln80/symenc/zlib"
)

var (
	ErrEncryptFailure    = newErr("failed to encrypt value")
	ErrDecryptFailure    = newErr("failed to decrypt token")
	ErrSetCipherFailure  = newErr("failed to set cipher")
	ErrGetCiphersFailure = newErr("failed to get ciphers")
	ErrClearCacheFailure = newErr("failed to clear cache")
)

// Encryptor presents the interface of the service that produces and consumes
// versioned encrypted envelope tokens.
type Encryptor interface {

	// Encrypt encrypts the given plain text under the current cipher version
	// using a fresh random IV, and returns a transportable token.
	Encrypt(ctx context.Context, plainTxt string) (string, error)

	// FixedEncrypt encrypts the given plain text under the current cipher
	// version using the version's static IV. The output is byte-for-byte
	// identical across calls for the same plain text and current cipher,
	// which makes it usable as an equality-searchable cipher text at the
	// documented cost of leaking plain text equality.
	FixedEncrypt(ctx context.Context, plainTxt string) (string, error)

	// Decrypt decrypts the given token back to its plain text.
	Decrypt(ctx context.Context, token string) (string, error)

	// IsEncrypted checks whether the given value is a token produced by this
	// service. It never fails; malformed input classifies as false.
	IsEncrypted(value string) bool

	// Header returns the envelope metadata of the given token without
	// decrypting it.
	Header(token string) (Header, error)

	// SetCipher registers or replaces a cipher version in the registry.
	SetCipher(ctx context.Context, cipher core.Cipher) (core.Cipher, error)

	// Ciphers returns all registered cipher versions.
	Ciphers(ctx context.Context) ([]core.Cipher, error)

	// Clear clears the cipher registry cache if one is configured.
	Clear(ctx context.Context, force bool) error
}

// EncryptorConfig presents Encryptor service configuration
type EncryptorConfig struct {
	Registry     core.CipherRegistry
	Encrypters   map[core.Algorithm]core.Encrypter
	Compressor   core.Compressor
	Compression  bool
	KeyWrapper   core.KeyWrapper
	CacheEnabled bool
	CacheTTL     time.Duration
}

type encryptor struct {
	namespace string

	*EncryptorConfig
}

var _ Encryptor = &encryptor{}

// NewEncryptor returns an Encryptor service instance backed by the given cipher registry.
// It requires a namespace for the service, and accepts options to overwrite the default configuration.
//
// Options must fulfill the core.CipherRegistry dependency. Otherwise, the function may panic.
//
// By default, the registry cache is enabled and compression is disabled.
func NewEncryptor(namespace string, registry core.CipherRegistry, opts ...func(*EncryptorConfig)) Encryptor {
	if namespace == "" {
		namespace = "default"
	}

	e := &encryptor{
		namespace: namespace,
		EncryptorConfig: &EncryptorConfig{
			Registry: registry,
			Encrypters: map[core.Algorithm]core.Encrypter{
				core.AES256GCM: aes.New256GCMEncrypter(),
				core.AES256CBC: aes.New256CBCEncrypter(),
				core.AESSIV:    siv.NewEncrypter(),
			},
			Compressor:   zlib.NewCompressor(),
			CacheEnabled: true,
		},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e.EncryptorConfig)
	}

	if e.Registry == nil {
		panic("invalid cipher registry, nil value found")
	}

	if e.CacheEnabled {
		if _, ok := e.Registry.(core.CipherRegistryCache); !ok {
			e.Registry = memory.NewCacheWrapper(e.Registry, e.CacheTTL)
		}
	}

	return e
}

func (e *encryptor) encrypterFor(alg core.Algorithm) (core.Encrypter, error) {
	enc, ok := e.Encrypters[alg]
	if !ok {
		return nil, fmt.Errorf("%w: no encrypter registered for algorithm %q",
			core.ErrCipherFailure, alg)
	}
	return enc, nil
}

// Encrypt implements Encryptor
func (e *encryptor) Encrypt(ctx context.Context, plainTxt string) (string, error) {
	return e.encrypt(ctx, plainTxt, false)
}

// FixedEncrypt implements Encryptor
func (e *encryptor) FixedEncrypt(ctx context.Context, plainTxt string) (string, error) {
	return e.encrypt(ctx, plainTxt, true)
}

func (e *encryptor) encrypt(ctx context.Context, plainTxt string, fixed bool) (token string, err error) {
	version := 0

	defer func() {
		if err != nil {
			err = ErrEncryptFailure.
				withBase(err).
				withNamespace(e.namespace).
				withVersion(version)
		}
	}()

	cipher, err := e.Registry.CurrentCipher(ctx)
	if err != nil {
		return "", err
	}
	version = cipher.Version

	alg := cipher.Alg()
	spec, err := alg.Spec()
	if err != nil {
		return "", err
	}
	enc, err := e.encrypterFor(alg)
	if err != nil {
		return "", err
	}

	h := Header{Version: cipher.Version}

	payload := []byte(plainTxt)
	if e.Compression && e.Compressor != nil {
		payload, err = e.Compressor.Compress(payload)
		if err != nil {
			return "", err
		}
		h.Compressed = true
	}

	key := cipher.Key
	if fixed {
		// deterministic mode reuses the version's static IV on purpose:
		// identical plain texts yield identical tokens under a fixed cipher
		h.IV = append([]byte(nil), cipher.IV...)
	} else {
		h.IV = aes.RandomBytes(spec.IVSize)

		// per-message data keys only apply to randomized mode,
		// a fresh wrapped key would break fixed-mode determinism
		if e.KeyWrapper != nil {
			var wrapped []byte
			key, wrapped, err = e.KeyWrapper.WrapKey(ctx, spec.KeySize)
			if err != nil {
				return "", err
			}
			h.EncryptedKey = wrapped
		}
	}

	// record non-default algorithms in the envelope so old tokens survive
	// a same-version algorithm change in the registry
	if alg != core.DefaultAlgorithm {
		h.CipherName = string(alg)
	}

	cipherTxt, authTag, err := enc.Encrypt(key, h.IV, payload, nil)
	if err != nil {
		return "", err
	}
	h.AuthTag = authTag

	blob, err := buildEnvelope(h, cipherTxt)
	if err != nil {
		return "", err
	}

	return encodeToken(blob), nil
}

// Decrypt implements Encryptor
func (e *encryptor) Decrypt(ctx context.Context, token string) (plainTxt string, err error) {
	version := 0

	defer func() {
		if err != nil {
			err = ErrDecryptFailure.
				withBase(err).
				withNamespace(e.namespace).
				withVersion(version)
		}
	}()

	blob, err := decodeToken(token)
	if err != nil {
		return "", err
	}

	cipherTxt, h, err := parseEnvelope(blob)
	if err != nil {
		return "", err
	}
	version = h.Version

	cipher, err := e.Registry.CipherForVersion(ctx, h.Version)
	if err != nil {
		return "", err
	}

	alg := cipher.Alg()
	if h.CipherName != "" {
		alg = core.Algorithm(h.CipherName)
	}
	enc, err := e.encrypterFor(alg)
	if err != nil {
		return "", err
	}

	key := cipher.Key
	if len(h.EncryptedKey) > 0 {
		if e.KeyWrapper == nil {
			return "", fmt.Errorf(
				"%w: envelope carries a wrapped data key but no key wrapper is configured",
				core.ErrCipherFailure)
		}
		key, err = e.KeyWrapper.UnwrapKey(ctx, h.EncryptedKey)
		if err != nil {
			return "", err
		}
	}

	iv := h.IV
	if len(iv) == 0 {
		iv = cipher.IV
	}

	payload, err := enc.Decrypt(key, iv, cipherTxt, h.AuthTag, nil)
	if err != nil {
		return "", err
	}

	if h.Compressed {
		if e.Compressor == nil {
			return "", fmt.Errorf("%w: envelope is compressed but no compressor is configured",
				core.ErrCompressionFailure)
		}
		payload, err = e.Compressor.Decompress(payload)
		if err != nil {
			return "", err
		}
	}

	return string(payload), nil
}

// IsEncrypted implements Encryptor
func (e *encryptor) IsEncrypted(value string) bool {
	return IsEncrypted(value)
}

// Header implements Encryptor
func (e *encryptor) Header(token string) (Header, error) {
	blob, err := decodeToken(token)
	if err != nil {
		return Header{}, err
	}

	_, h, err := parseEnvelope(blob)
	if err != nil {
		return Header{}, err
	}

	return h, nil
}

// SetCipher implements Encryptor
func (e *encryptor) SetCipher(ctx context.Context, cipher core.Cipher) (c core.Cipher, err error) {
	defer func() {
		if err != nil {
			err = ErrSetCipherFailure.
				withBase(err).
				withNamespace(e.namespace).
				withVersion(cipher.Version)
		}
	}()

	if err = cipher.Validate(); err != nil {
		return core.Cipher{}, err
	}

	return e.Registry.SetCipher(ctx, cipher)
}

// Ciphers implements Encryptor
func (e *encryptor) Ciphers(ctx context.Context) (ciphers []core.Cipher, err error) {
	defer func() {
		if err != nil {
			err = ErrGetCiphersFailure.
				withBase(err).
				withNamespace(e.namespace)
		}
	}()

	return e.Registry.Ciphers(ctx)
}

// Clear implements Encryptor
func (e *encryptor) Clear(ctx context.Context, force bool) (err error) {
	defer func() {
		if err != nil {
			err = ErrClearCacheFailure.
				withBase(err).
				withNamespace(e.namespace)
		}
	}()

	if cr, ok := e.Registry.(core.CipherRegistryCache); ok {
		err = cr.ClearCache(ctx, force)
		return
	}

	return
}
