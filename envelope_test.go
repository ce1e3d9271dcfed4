package symenc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strconv"
	"testing"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	tcs := []struct {
		header    Header
		cipherTxt []byte
	}{
		{
			Header{Version: 1, IV: bytes.Repeat([]byte{0x01}, 12), AuthTag: bytes.Repeat([]byte{0x02}, 16)},
			[]byte("raw cipher text"),
		},
		{
			Header{Version: 42, IV: bytes.Repeat([]byte{0x03}, 16), Compressed: true},
			[]byte{0xFF, 0x00, 0xAB},
		},
		{
			Header{Version: 255, IV: bytes.Repeat([]byte{0x04}, 12),
				EncryptedKey: bytes.Repeat([]byte{0x05}, 184),
				AuthTag:      bytes.Repeat([]byte{0x06}, 16),
				CipherName:   "aes-256-cbc",
			},
			[]byte("another cipher text"),
		},
		{
			// implicit IV layout: decrypting side falls back to the static IV
			Header{Version: 3},
			[]byte("no explicit iv"),
		},
	}

	for i, tc := range tcs {
		t.Run("tc: "+strconv.Itoa(i), func(t *testing.T) {
			blob, err := buildEnvelope(tc.header, tc.cipherTxt)
			if err != nil {
				t.Fatal("expect err be nil, got", err)
			}

			cipherTxt, h, err := parseEnvelope(blob)
			if err != nil {
				t.Fatal("expect err be nil, got", err)
			}

			if want, got := tc.header.Version, h.Version; want != got {
				t.Fatalf("expect %d, %d be equals", want, got)
			}
			if want, got := tc.header.Compressed, h.Compressed; want != got {
				t.Fatalf("expect %v, %v be equals", want, got)
			}
			if !bytes.Equal(tc.header.IV, h.IV) {
				t.Fatalf("expect %v, %v be equals", tc.header.IV, h.IV)
			}
			if !bytes.Equal(tc.header.EncryptedKey, h.EncryptedKey) {
				t.Fatal("expect encrypted keys be equals")
			}
			if !bytes.Equal(tc.header.AuthTag, h.AuthTag) {
				t.Fatal("expect auth tags be equals")
			}
			if want, got := tc.header.CipherName, h.CipherName; want != got {
				t.Fatalf("expect %q, %q be equals", want, got)
			}
			if !bytes.Equal(tc.cipherTxt, cipherTxt) {
				t.Fatalf("expect %v, %v be equals", tc.cipherTxt, cipherTxt)
			}

			// the codec must be bijective
			blob2, err := buildEnvelope(h, cipherTxt)
			if err != nil {
				t.Fatal("expect err be nil, got", err)
			}
			if !bytes.Equal(blob, blob2) {
				t.Fatal("expect rebuilt envelope be identical")
			}
		})
	}
}

func TestEnvelope_BuildInvalid(t *testing.T) {
	if _, err := buildEnvelope(Header{Version: 0}, nil); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expect err be %v, got: %v", ErrInvalidEnvelope, err)
	}
	if _, err := buildEnvelope(Header{Version: 256}, nil); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expect err be %v, got: %v", ErrInvalidEnvelope, err)
	}
	if _, err := buildEnvelope(Header{Version: 1, IV: make([]byte, 300)}, nil); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expect err be %v, got: %v", ErrInvalidEnvelope, err)
	}
}

func TestEnvelope_ParseInvalid(t *testing.T) {
	valid, err := buildEnvelope(Header{Version: 1, IV: bytes.Repeat([]byte{0x01}, 12)}, []byte("cipher text"))
	if err != nil {
		t.Fatal("expect err be nil, got", err)
	}

	reserved := append([]byte(nil), valid...)
	reserved[len(envelopeMagic)+1] |= 0x80

	truncated := append([]byte(nil), valid...)
	truncated = truncated[:len(envelopeMagic)+3]

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'

	tcs := [][]byte{
		nil,
		{},
		[]byte("@S"),
		[]byte("plain text longer than the minimal envelope"),
		badMagic,
		append([]byte(envelopeMagic), 0x00, 0x00), // zero version
		reserved,
		truncated, // IV field claims more bytes than remain
		append([]byte(envelopeMagic), 0x01, flagEncryptedKey),
		append([]byte(envelopeMagic), 0x01, flagEncryptedKey, 0xFF, 0xFF, 0x01),
	}

	for i, blob := range tcs {
		t.Run("tc: "+strconv.Itoa(i), func(t *testing.T) {
			if _, _, err := parseEnvelope(blob); !errors.Is(err, ErrInvalidEnvelope) {
				t.Fatalf("expect err be %v, got: %v", ErrInvalidEnvelope, err)
			}
		})
	}
}

func TestCheckFormat(t *testing.T) {
	blob, err := buildEnvelope(Header{Version: 1, IV: bytes.Repeat([]byte{0x01}, 12)}, []byte("cipher text"))
	if err != nil {
		t.Fatal("expect err be nil, got", err)
	}
	token := encodeToken(blob)

	if err := CheckFormat(token); err != nil {
		t.Fatal("expect err be nil, got", err)
	}
	if !IsEncrypted(token) {
		t.Fatal("expect token be classified as encrypted")
	}

	if err := CheckFormat("not base64 !!"); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expect err be %v, got: %v", ErrInvalidEncoding, err)
	}

	// well-encoded but not an envelope
	if err := CheckFormat(base64.StdEncoding.EncodeToString([]byte("plain text"))); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expect err be %v, got: %v", ErrInvalidEnvelope, err)
	}

	for _, value := range []string{"", "plain text", "<sym::abc", "AA==", token + "corrupt"} {
		if IsEncrypted(value) {
			t.Fatalf("expect %q not be classified as encrypted", value)
		}
	}
}
