package core

import "errors"

// Errors returned by Compressor implementations
var (
	ErrCompressionFailure = errors.New("failed to compress or decompress data")
)

// Compressor presents the payload compression service applied before encryption.
type Compressor interface {

	// Compress compresses the given payload.
	Compress(data []byte) ([]byte, error)

	// Decompress restores the original payload.
	// It returns ErrCompressionFailure on corrupt input.
	Decompress(data []byte) ([]byte, error)
}
