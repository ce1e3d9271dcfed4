package symenc

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ln80/symenc/core"
)

var (
	ErrInvalidEncoding = errors.New("invalid token encoding")
	ErrInvalidEnvelope = errors.New("invalid envelope format")
)

// envelopeMagic identifies a binary blob produced by this module.
// It is part of the format contract and must remain stable across versions.
const envelopeMagic = "@SyE"

// Flag bits of the envelope header. Reserved bits must be zero;
// a nonzero reserved bit rejects the envelope rather than risking a
// misparse of a future format revision.
const (
	flagCompressed   = 1 << 0
	flagIV           = 1 << 1
	flagEncryptedKey = 1 << 2
	flagAuthTag      = 1 << 3
	flagCipherName   = 1 << 4

	flagReserved = 0xFF &^ (flagCompressed | flagIV | flagEncryptedKey | flagAuthTag | flagCipherName)
)

// envelopeMinSize covers the magic marker, the version byte and the flags byte.
const envelopeMinSize = len(envelopeMagic) + 2

// Header presents the envelope metadata describing how a cipher text was produced.
//
// Optional fields are empty when the corresponding flag bit is unset: a nil IV
// means the decrypting side falls back to the version's static IV, a nil
// EncryptedKey means the version's static key was used directly, and an empty
// CipherName means the version's default algorithm applies.
type Header struct {
	Version      int
	IV           []byte
	EncryptedKey []byte
	AuthTag      []byte
	Compressed   bool
	CipherName   string
}

// buildEnvelope serializes the header and the cipher text into a single binary blob.
// It is a pure, deterministic function of its inputs.
//
// Layout: magic marker, version byte, flags byte, then the conditional fields
// in a fixed order: encrypted key (uint16 big-endian length prefix), IV,
// auth tag and cipher name (single-byte length prefixes). The remaining bytes
// are the cipher text, with no length prefix of its own.
func buildEnvelope(h Header, cipherTxt []byte) ([]byte, error) {
	if h.Version < 1 || h.Version > core.MaxVersion {
		return nil, fmt.Errorf("%w: version %d out of range [1, %d]",
			ErrInvalidEnvelope, h.Version, core.MaxVersion)
	}
	if len(h.EncryptedKey) > 0xFFFF {
		return nil, fmt.Errorf("%w: encrypted key exceeds %d bytes", ErrInvalidEnvelope, 0xFFFF)
	}
	for _, field := range [][]byte{h.IV, h.AuthTag, []byte(h.CipherName)} {
		if len(field) > 0xFF {
			return nil, fmt.Errorf("%w: header field exceeds %d bytes", ErrInvalidEnvelope, 0xFF)
		}
	}

	var flags byte
	if h.Compressed {
		flags |= flagCompressed
	}
	if len(h.IV) > 0 {
		flags |= flagIV
	}
	if len(h.EncryptedKey) > 0 {
		flags |= flagEncryptedKey
	}
	if len(h.AuthTag) > 0 {
		flags |= flagAuthTag
	}
	if h.CipherName != "" {
		flags |= flagCipherName
	}

	buf := make([]byte, 0, envelopeMinSize+len(h.EncryptedKey)+len(h.IV)+
		len(h.AuthTag)+len(h.CipherName)+5+len(cipherTxt))

	buf = append(buf, envelopeMagic...)
	buf = append(buf, byte(h.Version), flags)

	if len(h.EncryptedKey) > 0 {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(h.EncryptedKey)))
		buf = append(buf, h.EncryptedKey...)
	}
	if len(h.IV) > 0 {
		buf = append(buf, byte(len(h.IV)))
		buf = append(buf, h.IV...)
	}
	if len(h.AuthTag) > 0 {
		buf = append(buf, byte(len(h.AuthTag)))
		buf = append(buf, h.AuthTag...)
	}
	if h.CipherName != "" {
		buf = append(buf, byte(len(h.CipherName)))
		buf = append(buf, h.CipherName...)
	}

	return append(buf, cipherTxt...), nil
}

// parseEnvelope is the inverse of buildEnvelope.
//
// It returns ErrInvalidEnvelope on any structurally invalid input and never
// panics, so IsEncrypted can be built on it as a total predicate.
func parseEnvelope(blob []byte) (cipherTxt []byte, h Header, err error) {
	if len(blob) < envelopeMinSize {
		err = fmt.Errorf("%w: too short", ErrInvalidEnvelope)
		return
	}
	if string(blob[:len(envelopeMagic)]) != envelopeMagic {
		err = fmt.Errorf("%w: magic marker mismatch", ErrInvalidEnvelope)
		return
	}

	version := blob[len(envelopeMagic)]
	if version == 0 {
		err = fmt.Errorf("%w: zero version", ErrInvalidEnvelope)
		return
	}
	flags := blob[len(envelopeMagic)+1]
	if flags&flagReserved != 0 {
		err = fmt.Errorf("%w: reserved flag bits set", ErrInvalidEnvelope)
		return
	}

	h.Version = int(version)
	h.Compressed = flags&flagCompressed != 0

	rest := blob[envelopeMinSize:]

	if flags&flagEncryptedKey != 0 {
		if len(rest) < 2 {
			err = fmt.Errorf("%w: truncated encrypted key length", ErrInvalidEnvelope)
			return
		}
		n := int(binary.BigEndian.Uint16(rest))
		rest = rest[2:]
		if n == 0 || len(rest) < n {
			err = fmt.Errorf("%w: encrypted key claims %d bytes, %d remain",
				ErrInvalidEnvelope, n, len(rest))
			return
		}
		h.EncryptedKey = append([]byte(nil), rest[:n]...)
		rest = rest[n:]
	}

	if flags&flagIV != 0 {
		if h.IV, rest, err = readField(rest); err != nil {
			return
		}
	}
	if flags&flagAuthTag != 0 {
		if h.AuthTag, rest, err = readField(rest); err != nil {
			return
		}
	}
	if flags&flagCipherName != 0 {
		var name []byte
		if name, rest, err = readField(rest); err != nil {
			return
		}
		h.CipherName = string(name)
	}

	cipherTxt = append([]byte(nil), rest...)

	return cipherTxt, h, nil
}

// readField consumes a single-byte length-prefixed header field.
func readField(b []byte) ([]byte, []byte, error) {
	if len(b) < 1 {
		return nil, nil, fmt.Errorf("%w: truncated field length", ErrInvalidEnvelope)
	}
	n := int(b[0])
	b = b[1:]
	if n == 0 || len(b) < n {
		return nil, nil, fmt.Errorf("%w: field claims %d bytes, %d remain",
			ErrInvalidEnvelope, n, len(b))
	}
	return append([]byte(nil), b[:n]...), b[n:], nil
}

func encodeToken(envelope []byte) string {
	return base64.StdEncoding.EncodeToString(envelope)
}

func decodeToken(token string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncoding, err)
	}
	return blob, nil
}

// CheckFormat verifies that the given value decodes to a well-formed envelope.
// It does not check that the envelope's cipher version is known.
func CheckFormat(value string) error {
	blob, err := decodeToken(value)
	if err != nil {
		return err
	}
	_, _, err = parseEnvelope(blob)
	return err
}

// IsEncrypted checks whether the given value is an encrypted token produced by
// this module. It never fails: any malformed input classifies as false.
func IsEncrypted(value string) bool {
	return CheckFormat(value) == nil
}
