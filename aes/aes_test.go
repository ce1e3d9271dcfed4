package aes

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ln80/symenc/core"
)

func TestEncrypter_256GCM(t *testing.T) {
	enc := New256GCMEncrypter()

	if want, got := core.AES256GCM, enc.Algorithm(); want != got {
		t.Fatalf("expect %v, %v be equals", want, got)
	}

	key, err := enc.KeyGen()(context.Background())
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := aes256KeySize, len(key); want != got {
		t.Fatalf("expect %d, %d be equals", want, got)
	}

	iv := RandomBytes(12)
	aad := []byte("context")
	plainTxt := []byte("Hello Pavel")

	cipherTxt, authTag, err := enc.Encrypt(key, iv, plainTxt, aad)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := len(plainTxt), len(cipherTxt); want != got {
		t.Fatalf("expect %d, %d be equals", want, got)
	}
	if want, got := 16, len(authTag); want != got {
		t.Fatalf("expect %d, %d be equals", want, got)
	}

	got, err := enc.Decrypt(key, iv, cipherTxt, authTag, aad)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if !bytes.Equal(plainTxt, got) {
		t.Fatalf("expect %q, %q be equals", plainTxt, got)
	}

	t.Run("tamper detection", func(t *testing.T) {
		corrupt := append([]byte(nil), cipherTxt...)
		corrupt[0] ^= 0xFF
		if _, err := enc.Decrypt(key, iv, corrupt, authTag, aad); !errors.Is(err, core.ErrAuthenticationFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrAuthenticationFailure, err)
		}

		badTag := append([]byte(nil), authTag...)
		badTag[0] ^= 0xFF
		if _, err := enc.Decrypt(key, iv, cipherTxt, badTag, aad); !errors.Is(err, core.ErrAuthenticationFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrAuthenticationFailure, err)
		}

		if _, err := enc.Decrypt(key, iv, cipherTxt, authTag, []byte("other context")); !errors.Is(err, core.ErrAuthenticationFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrAuthenticationFailure, err)
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		if _, _, err := enc.Encrypt(key[:7], iv, plainTxt, nil); !errors.Is(err, core.ErrCipherFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrCipherFailure, err)
		}
		if _, _, err := enc.Encrypt(key, iv[:4], plainTxt, nil); !errors.Is(err, core.ErrCipherFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrCipherFailure, err)
		}
		if _, err := enc.Decrypt(key, iv[:4], cipherTxt, authTag, aad); !errors.Is(err, core.ErrCipherFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrCipherFailure, err)
		}
	})
}

func TestEncrypter_256CBC(t *testing.T) {
	enc := New256CBCEncrypter()

	if want, got := core.AES256CBC, enc.Algorithm(); want != got {
		t.Fatalf("expect %v, %v be equals", want, got)
	}

	key, err := enc.KeyGen()(context.Background())
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	iv := RandomBytes(16)

	// exercise both sides of the block-size boundary
	for _, plainTxt := range [][]byte{
		{},
		[]byte("Hello Pavel"),
		bytes.Repeat([]byte("b"), 16),
		bytes.Repeat([]byte("b"), 33),
	} {
		cipherTxt, authTag, err := enc.Encrypt(key, iv, plainTxt, nil)
		if err != nil {
			t.Fatalf("expect err be nil, got: %v", err)
		}
		if authTag != nil {
			t.Fatal("expect CBC auth tag be nil")
		}
		if len(cipherTxt)%16 != 0 {
			t.Fatalf("expect cipher text be block aligned, got %d bytes", len(cipherTxt))
		}

		got, err := enc.Decrypt(key, iv, cipherTxt, nil, nil)
		if err != nil {
			t.Fatalf("expect err be nil, got: %v", err)
		}
		if !bytes.Equal(plainTxt, got) {
			t.Fatalf("expect %q, %q be equals", plainTxt, got)
		}
	}

	t.Run("invalid params", func(t *testing.T) {
		if _, _, err := enc.Encrypt(key, iv[:8], []byte("Hello Pavel"), nil); !errors.Is(err, core.ErrCipherFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrCipherFailure, err)
		}
		if _, err := enc.Decrypt(key, iv, []byte("not block aligned"), nil, nil); !errors.Is(err, core.ErrCipherFailure) {
			t.Fatalf("expect err be %v, got: %v", core.ErrCipherFailure, err)
		}
	})
}

func TestPadding(t *testing.T) {
	for size := 0; size < 40; size++ {
		data := RandomBytes(size)

		padded := pad(data, 16)
		if len(padded)%16 != 0 {
			t.Fatalf("expect padded data be block aligned, got %d bytes", len(padded))
		}
		if len(padded) == len(data) {
			t.Fatal("expect padding always add at least one byte")
		}

		got, err := unpad(padded, 16)
		if err != nil {
			t.Fatalf("expect err be nil, got: %v", err)
		}
		if !bytes.Equal(data, got) {
			t.Fatalf("expect %v, %v be equals", data, got)
		}
	}

	t.Run("invalid padding", func(t *testing.T) {
		tcs := [][]byte{
			{},
			{0x00},
			append(bytes.Repeat([]byte{0x01}, 15), 0x11),
			{0x02, 0x01, 0x03, 0x03, 0x02},
		}
		for _, data := range tcs {
			if _, err := unpad(data, 16); !errors.Is(err, core.ErrCipherFailure) {
				t.Fatalf("expect err be %v, got: %v", core.ErrCipherFailure, err)
			}
		}
	})
}
