// Package spin implements a cache-line-aware test-and-test-and-set
// spinlock, the base synchronization primitive the rest of this
// module builds on.
package spin

import (
	"runtime"
	"sync/atomic"
)

// cacheLineSize is assumed rather than probed at runtime; it matches
// the common case for current amd64/arm64 hardware.
const cacheLineSize = 64

// Lock is a minimal spinlock. It contains no padding of its own; use
// PaddedLock when many locks are packed into an array and false
// sharing between neighbors matters.
type Lock struct {
	held atomic.Bool
}

// TryLock attempts to acquire the lock without blocking.
func (l *Lock) TryLock() bool {
	return !l.held.Swap(true)
}

// Lock spins until the lock is acquired. It performs a plain atomic
// load (not a write) before each swap attempt (test-and-test-and-set) so that contending
// goroutines spin on a local cache line instead of hammering the
// cache-coherence bus with writes.
func (l *Lock) Lock() {
	for {
		if !l.held.Load() && l.TryLock() {
			return
		}
		runtime.Gosched()
	}
}

// Unlock releases the lock. Unlock on an already-unlocked Lock is a
// caller error and left undefined, matching the original's contract.
func (l *Lock) Unlock() {
	l.held.Store(false)
}

// PaddedLock is a Lock padded out to a full cache line so that an
// array of PaddedLocks (e.g. one per CMAP segment or RING slot) never
// shares a cache line between adjacent entries.
type PaddedLock struct {
	lock Lock
	_    [cacheLineSize - unsafeSizeofLock]byte
}

// TryLock attempts to acquire the lock without blocking.
func (p *PaddedLock) TryLock() bool { return p.lock.TryLock() }

// Lock spins until the lock is acquired.
func (p *PaddedLock) Lock() { p.lock.Lock() }

// Unlock releases the lock.
func (p *PaddedLock) Unlock() { p.lock.Unlock() }

// unsafeSizeofLock is the size of Lock's single atomic.Bool field.
// atomic.Bool wraps a uint32, so this is always less than
// cacheLineSize; the padding above fills out the remainder.
const unsafeSizeofLock = 4
