package symenc

import (
	"context"
	"sync"
	"time"
)

// FactoryClearFunc presents the function returned by Factory.Instance method.
// It tells the associated Encryptor instance to immediately clear its cache of cipher material.
type FactoryClearFunc func()

// FactoryNewFunc is used by the Factory service to create an Encryptor instance per namespace.
type FactoryNewFunc func(namespace string) Encryptor

// Factory manages and maintains a registry of Encryptor services.
//
// It monitors each Encryptor to track its activity
// and regularly clears cipher material caches.
type Factory interface {

	// Instance creates a new Encryptor instance for the given namespace or returns the existing one.
	Instance(namespace string) (Encryptor, FactoryClearFunc)

	// Monitor starts a long-running process in a separate Goroutine.
	// It checks Encryptors' activities and removes inactive ones,
	// and clears their caches based on their cache TTL config.
	Monitor(ctx context.Context)
}

// FactoryConfig presents the configuration of Factory service
type FactoryConfig struct {

	// IDLE is the duration used to define whether an Encryptor service is inactive.
	IDLE time.Duration

	// MonitorPeriod is the frequency of the regular checks made by the monitoring process.
	MonitorPeriod time.Duration
}

type factory struct {
	mu           sync.RWMutex
	reg          map[string]Encryptor
	newEncryptor FactoryNewFunc
	*FactoryConfig
}

// NewFactory returns a thread-safe factory service instance.
// It panics if newEnc is nil.
// Options params allow overwriting the default configuration.
func NewFactory(newEnc FactoryNewFunc, opts ...func(*FactoryConfig)) Factory {
	if newEnc == nil {
		panic("invalid new Encryptor func, nil value found")
	}

	f := &factory{
		reg:          make(map[string]Encryptor),
		newEncryptor: newEnc,
		FactoryConfig: &FactoryConfig{
			IDLE:          20 * time.Minute,
			MonitorPeriod: 5 * time.Second,
		},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f.FactoryConfig)
	}

	return f
}

// Instance implements Factory interface
func (f *factory) Instance(namespace string) (Encryptor, FactoryClearFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reg[namespace]; !ok {
		// Wraps the returned encryptor to track its activities
		te := &traceable{Encryptor: f.newEncryptor(namespace)}
		f.reg[namespace] = te
		te.markOp()
	}

	clearFunc := func() {
		// Force Encryptor to clear cache without considering the current context.
		// Ignore the returned error, which unlikely to occur.
		_ = f.reg[namespace].Clear(context.Background(), true)
	}

	return f.reg[namespace], clearFunc
}

func (f *factory) clear(ctx context.Context, force bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for nspace, e := range f.reg {
		// clear encryptor cipher material cache
		_ = e.Clear(ctx, force)

		// remove inactive encryptors based on last activity timestamp
		te, ok := e.(*traceable)
		if t := te.lastOpsAt; ok && !t.IsZero() && t.Add(f.IDLE).Before(time.Now()) || force {
			delete(f.reg, nspace)
		}
	}
}

// Monitor implements Factory interface
func (f *factory) Monitor(ctx context.Context) {
	ticker := time.NewTicker(f.MonitorPeriod)
	go func() {
		defer func() {
			// Use a timed-out context to ensure the original context cancellation
			// will not prevent clearing the cache.
			clearCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			f.clear(clearCtx, true)
			cancel()
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				f.clear(ctx, false)
			}
		}
	}()
}
