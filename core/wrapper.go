package core

import "context"

// KeyWrapper presents the service that generates and wraps per-message data keys.
//
// The wrapped form travels inside the envelope header; only the wrapper is able
// to recover the plain text data key. The registry cipher then only selects the
// algorithm and IV size while the data key does the actual encryption.
type KeyWrapper interface {

	// WrapKey generates a fresh data key of the given size and returns both
	// its plain text value and its wrapped form.
	WrapKey(ctx context.Context, size int) (key Key, wrapped []byte, err error)

	// UnwrapKey recovers the plain text data key from its wrapped form.
	UnwrapKey(ctx context.Context, wrapped []byte) (Key, error)
}
