package symenc

import (
	"context"
	"sync"
	"time"

	"github.com/ln80/symenc/core"
)

// traceable presents an internal Encryptor wrapper mainly used to trace last activity timestamp.
//
// Its logic may involve in the future to fulfil audits requirements.
type traceable struct {
	Encryptor

	lastOpsAt time.Time
	opsMu     sync.RWMutex
}

var _ Encryptor = &traceable{}

func (te *traceable) markOp() {
	te.opsMu.Lock()
	defer te.opsMu.Unlock()

	te.lastOpsAt = time.Now()
}

// Encrypt implements Encryptor
func (te *traceable) Encrypt(ctx context.Context, plainTxt string) (string, error) {
	defer te.markOp()
	return te.Encryptor.Encrypt(ctx, plainTxt)
}

// FixedEncrypt implements Encryptor
func (te *traceable) FixedEncrypt(ctx context.Context, plainTxt string) (string, error) {
	defer te.markOp()
	return te.Encryptor.FixedEncrypt(ctx, plainTxt)
}

// Decrypt implements Encryptor
func (te *traceable) Decrypt(ctx context.Context, token string) (string, error) {
	defer te.markOp()
	return te.Encryptor.Decrypt(ctx, token)
}

// SetCipher implements Encryptor
func (te *traceable) SetCipher(ctx context.Context, cipher core.Cipher) (core.Cipher, error) {
	defer te.markOp()
	return te.Encryptor.SetCipher(ctx, cipher)
}
