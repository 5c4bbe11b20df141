// Package ring implements three bounded, slot-versioned ring buffers:
// SPSC (single-producer/single-consumer), SPMC (single-producer/
// multi-consumer) and MPSC (multi-producer/single-consumer). Each
// slot carries a turn counter whose parity encodes both occupancy and
// generation, avoiding the ABA hazards of plain index comparison.
package ring

import (
	"errors"
	"math/bits"
	"runtime"
	"sync/atomic"
	"time"
)

// ErrInvalidCapacity is returned by the New* constructors when asked
// to build a zero-capacity queue.
var ErrInvalidCapacity = errors.New("ring: capacity must be greater than zero")

func roundUpToPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(n-1))
}

// waitSlotReady spins on turn until it equals expected, following the
// same retry discipline throughout this package: ten PAUSE-equivalent
// (runtime.Gosched) spins, then a 1ms sleep, then the retry budget
// resets. This matches the teacher's own lock-free queue backoff.
func waitSlotReady(turn *atomic.Uint64, expected uint64) {
	retries := 0
	for turn.Load() != expected {
		if retries < 10 {
			runtime.Gosched()
			retries++
		} else {
			time.Sleep(time.Millisecond)
			retries = 0
		}
	}
}

// slot holds one element plus its turn counter. The trailing padding
// is sized for the common case of small T (pointers, small structs);
// it is a best-effort guard against false sharing between adjacent
// slots, not a guarantee for arbitrarily large T.
type slot[T any] struct {
	turn  atomic.Uint64
	value T
	_pad  [48]byte
}
