// Package memory contains an in-memory implementation of the cipher registry.
// The same type acts either as a standalone store or, given an origin
// registry, as a TTL-based cache wrapper on top of it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ln80/symenc/core"
)

const (
	cacheTTLDefault = 20 * time.Second
)

type cipherCache struct {
	Cipher core.Cipher
	At     int64
}

func newCipherCache(cipher core.Cipher) cipherCache {
	return cipherCache{
		Cipher: cipher,
		At:     time.Now().Unix(),
	}
}

type registry struct {
	origin core.CipherRegistry

	cache   map[int]cipherCache
	current int

	mu sync.RWMutex

	ttl time.Duration
}

var _ core.CipherRegistry = &registry{}
var _ core.CipherRegistryCache = &registry{}

// NewRegistry returns an in-memory cipher registry.
func NewRegistry() core.CipherRegistry {
	return &registry{
		cache: make(map[int]cipherCache),
	}
}

// NewCacheWrapper returns a cipher registry that caches reads from the given
// origin registry for the given TTL.
func NewCacheWrapper(origin core.CipherRegistry, ttl time.Duration) core.CipherRegistry {
	if origin == nil {
		panic("invalid origin cipher registry, nil value found")
	}
	if ttl == 0 {
		ttl = cacheTTLDefault
	}

	return &registry{
		cache:  make(map[int]cipherCache),
		origin: origin,
		ttl:    ttl,
	}
}

// SetCipher implements core.CipherRegistry
func (r *registry) SetCipher(ctx context.Context, cipher core.Cipher) (core.Cipher, error) {
	if err := cipher.Validate(); err != nil {
		return core.Cipher{}, err
	}

	if r.origin != nil {
		if _, err := r.origin.SetCipher(ctx, cipher); err != nil {
			return core.Cipher{}, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[cipher.Version] = newCipherCache(cipher)
	if cipher.Version > r.current {
		r.current = cipher.Version
	}

	return cipher, nil
}

// CipherForVersion implements core.CipherRegistry
func (r *registry) CipherForVersion(ctx context.Context, version int) (core.Cipher, error) {
	r.mu.RLock()
	if c, ok := r.cache[version]; ok {
		r.mu.RUnlock()
		return c.Cipher, nil
	}
	r.mu.RUnlock()

	if r.origin == nil {
		return core.Cipher{}, core.ErrUnknownCipherVersion
	}

	cipher, err := r.origin.CipherForVersion(ctx, version)
	if err != nil {
		return core.Cipher{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[version] = newCipherCache(cipher)
	if version > r.current {
		r.current = version
	}

	return cipher, nil
}

// CurrentCipher implements core.CipherRegistry
func (r *registry) CurrentCipher(ctx context.Context) (core.Cipher, error) {
	r.mu.RLock()
	if c, ok := r.cache[r.current]; ok {
		r.mu.RUnlock()
		return c.Cipher, nil
	}
	r.mu.RUnlock()

	if r.origin == nil {
		return core.Cipher{}, core.ErrNoCipherConfigured
	}

	cipher, err := r.origin.CurrentCipher(ctx)
	if err != nil {
		return core.Cipher{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[cipher.Version] = newCipherCache(cipher)
	if cipher.Version > r.current {
		r.current = cipher.Version
	}

	return cipher, nil
}

// Ciphers implements core.CipherRegistry
func (r *registry) Ciphers(ctx context.Context) ([]core.Cipher, error) {
	if r.origin != nil {
		ciphers, err := r.origin.Ciphers(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		for _, c := range ciphers {
			r.cache[c.Version] = newCipherCache(c)
			if c.Version > r.current {
				r.current = c.Version
			}
		}
		return ciphers, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ciphers := make([]core.Cipher, 0, len(r.cache))
	for _, c := range r.cache {
		ciphers = append(ciphers, c.Cipher)
	}
	sort.Slice(ciphers, func(i, j int) bool {
		return ciphers[i].Version < ciphers[j].Version
	})

	return ciphers, nil
}

// ClearCache implements core.CipherRegistryCache
func (r *registry) ClearCache(ctx context.Context, force bool) error {
	// If origin is empty then the registry is acting as a store.
	// Therefore silently ignore the clear cache operation.
	if r.origin == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for version, c := range r.cache {
		if expired := c.At+int64(r.ttl.Seconds()) < time.Now().Unix(); expired || force {
			delete(r.cache, version)
		}
	}
	if _, ok := r.cache[r.current]; !ok {
		// force the next CurrentCipher call to hit the origin,
		// a rotation may have occurred elsewhere in the meantime
		r.current = 0
	}

	return nil
}

// Origin implements core.CipherRegistryWrapper
func (r *registry) Origin() core.CipherRegistry {
	return r.origin
}
