// Package keylock provides keyed mutual exclusion with bounded waits.
//
// Each key owns a one-slot channel semaphore. Lock blocks until the slot is
// free, the caller's context is done, or the configured wait bound elapses;
// the latter two fail with domain.ErrBusy so callers can retry.
// Idle keys are reference counted and dropped from the table.
package keylock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// Config controls lock acquisition.
type Config struct {
	MaxWait time.Duration // Upper bound on a single Lock wait (0 = context only)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MaxWait: 2 * time.Second}
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Locker is a table of per-key locks. The zero value is not usable.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxWait time.Duration

	// observe is called with the wait time and whether the lock was acquired.
	observe func(wait time.Duration, acquired bool)
}

// New creates a Locker.
func New(cfg Config) *Locker {
	return &Locker{
		entries: make(map[string]*entry),
		maxWait: cfg.MaxWait,
	}
}

// OnWait registers a hook called after every acquisition attempt.
func (l *Locker) OnWait(fn func(wait time.Duration, acquired bool)) {
	l.observe = fn
}

// Lock acquires the lock for key. The returned func releases it and is safe
// to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)
	start := time.Now()

	// Fast path: a free slot wins even if ctx is already done.
	select {
	case e.sem <- struct{}{}:
		l.report(time.Since(start), true)
		return l.unlocker(key, e), nil
	default:
	}

	waitCtx := ctx
	if l.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.maxWait)
		defer cancel()
	}

	select {
	case e.sem <- struct{}{}:
		l.report(time.Since(start), true)
		return l.unlocker(key, e), nil
	case <-waitCtx.Done():
		l.releaseEntry(key, e)
		l.report(time.Since(start), false)
		return nil, fmt.Errorf("%w: lock %q held: %v", domain.ErrBusy, key, waitCtx.Err())
	}
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locker) unlocker(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.releaseEntry(key, e)
		})
	}
}

func (l *Locker) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseEntry(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Locker) report(wait time.Duration, acquired bool) {
	if l.observe != nil {
		l.observe(wait, acquired)
	}
}
