// Package testutil contains reusable test suites, mocks and helpers shared by
// the registry and encryptor implementations' tests.
package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/ln80/symenc/core"
)

// RegistryTestSuite asserts the behavior required from any core.CipherRegistry
// implementation. It expects an empty registry.
func RegistryTestSuite(t *testing.T, ctx context.Context, reg core.CipherRegistry) {

	// Test empty registry behavior
	if _, err := reg.CurrentCipher(ctx); !errors.Is(err, core.ErrNoCipherConfigured) {
		t.Fatalf("expect err be %v, got: %v", core.ErrNoCipherConfigured, err)
	}
	if _, err := reg.CipherForVersion(ctx, 1); !errors.Is(err, core.ErrUnknownCipherVersion) {
		t.Fatalf("expect err be %v, got: %v", core.ErrUnknownCipherVersion, err)
	}
	ciphers, err := reg.Ciphers(ctx)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if len(ciphers) != 0 {
		t.Fatalf("expect ciphers be empty, got: %v", ciphers)
	}

	// Test invalid cipher rejection
	invalid := RandomCipher(1)
	invalid.Key = invalid.Key[:len(invalid.Key)-1]
	if _, err := reg.SetCipher(ctx, invalid); !errors.Is(err, core.ErrInvalidCipher) {
		t.Fatalf("expect err be %v, got: %v", core.ErrInvalidCipher, err)
	}
	if _, err := reg.SetCipher(ctx, RandomCipher(0)); !errors.Is(err, core.ErrInvalidCipher) {
		t.Fatalf("expect err be %v, got: %v", core.ErrInvalidCipher, err)
	}

	// Test set cipher & current version tracking
	c1 := RandomCipher(1)
	if _, err := reg.SetCipher(ctx, c1); err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	cur, err := reg.CurrentCipher(ctx)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := 1, cur.Version; want != got {
		t.Fatalf("expect %d, %d be equals", want, got)
	}

	c3 := RandomCipher(3)
	if _, err := reg.SetCipher(ctx, c3); err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	c2 := RandomCipher(2)
	if _, err := reg.SetCipher(ctx, c2); err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}

	// current must remain the highest version, not the last inserted
	cur, err = reg.CurrentCipher(ctx)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := 3, cur.Version; want != got {
		t.Fatalf("expect %d, %d be equals", want, got)
	}

	// Test lookup by version
	found, err := reg.CipherForVersion(ctx, 2)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := string(c2.Key), string(found.Key); want != got {
		t.Fatal("expect cipher keys be equals")
	}
	if _, err = reg.CipherForVersion(ctx, 9); !errors.Is(err, core.ErrUnknownCipherVersion) {
		t.Fatalf("expect err be %v, got: %v", core.ErrUnknownCipherVersion, err)
	}

	// Test listing
	ciphers, err = reg.Ciphers(ctx)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := []int{1, 2, 3}, VersionsOf(ciphers); !IntsEqual(want, got) {
		t.Fatalf("expect %v, %v be equals", want, got)
	}

	// Test replacement under the same version
	c3bis := RandomCipher(3)
	if _, err := reg.SetCipher(ctx, c3bis); err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	found, err = reg.CipherForVersion(ctx, 3)
	if err != nil {
		t.Fatalf("expect err be nil, got: %v", err)
	}
	if want, got := string(c3bis.Key), string(found.Key); want != got {
		t.Fatal("expect replaced cipher key be returned")
	}
}
