package cmap

import (
	"sync/atomic"

	"clib/internal/spin"
)

// Bucket occupancy states. A bucket moves 0 -> 1 on insert, 1 -> 0 on
// remove, and 1 -> 2 -> 0 when its contents are displaced elsewhere
// during hopscotch insertion: state 2 marks a bucket whose entry has
// just been moved out and is waiting to be healed back to empty by
// the next observer (see heal, and its callers scanForKey and
// findFreeBucket in cmap.go).
const (
	stateEmpty     uint8 = 0
	stateOccupied  uint8 = 1
	stateTransient uint8 = 2
)

type bucket[K comparable, V any] struct {
	lock    spin.Lock
	hopInfo atomic.Uint32
	state   uint8
	hash    uint32
	key     K
	value   V
}

// heal resets a transient bucket to empty. Called by whichever
// goroutine next locks the bucket and observes state 2, whether
// that's a reader restarting a scan or a writer probing for room.
func (b *bucket[K, V]) heal() {
	if b.state == stateTransient {
		b.state = stateEmpty
	}
}
