// Package zlib implements the payload compression service
// on top of the klauspost/compress zlib codec.
package zlib

import (
	"bytes"
	"errors"
	"io"

	kzlib "github.com/klauspost/compress/zlib"

	"github.com/ln80/symenc/core"
)

type compressor struct{}

var _ core.Compressor = &compressor{}

// NewCompressor returns a core.Compressor implementation using zlib (RFC 1950).
func NewCompressor() core.Compressor {
	return &compressor{}
}

func (c *compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := kzlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Join(core.ErrCompressionFailure, err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Join(core.ErrCompressionFailure, err)
	}

	return buf.Bytes(), nil
}

func (c *compressor) Decompress(data []byte) ([]byte, error) {
	r, err := kzlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(core.ErrCompressionFailure, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(core.ErrCompressionFailure, err)
	}

	return out, nil
}
