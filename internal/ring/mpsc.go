package ring

import "sync/atomic"

// MPSC is a bounded multi-producer/single-consumer ring buffer.
// Producers claim a slot by CAS-ing tail forward; the sole consumer
// owns head and never needs atomics for it.
type MPSC[T any] struct {
	capacity uint64
	mask     uint64
	slots    []slot[T]

	tail atomic.Uint64
	_    [56]byte
	head uint64
	_    [56]byte
}

// NewMPSC builds an MPSC queue with at least the requested capacity,
// rounded up to a power of two.
func NewMPSC[T any](capacity int) (*MPSC[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	size := roundUpToPowerOfTwo(uint64(capacity))
	return &MPSC[T]{
		capacity: size,
		mask:     size - 1,
		slots:    make([]slot[T], size),
	}, nil
}

func (q *MPSC[T]) Cap() int { return int(q.capacity) }

// Len is an approximation: tail moves under concurrent CAS from many
// producers, so a snapshot difference against head can be stale the
// instant it's read. It is useful for metrics, not for control flow.
func (q *MPSC[T]) Len() int { return int(q.tail.Load() - q.head) }

// TryPush claims a slot and writes v, returning false if the queue is
// full. Unlike C++'s compare_exchange_strong, Go's CompareAndSwap does
// not refresh its expected value on failure, so each retry explicitly
// reloads tail before re-checking the slot.
func (q *MPSC[T]) TryPush(v T) bool {
	for {
		tail := q.tail.Load()
		s := &q.slots[tail&q.mask]
		expected := (tail / q.capacity) * 2
		if s.turn.Load() != expected {
			return false
		}
		if q.tail.CompareAndSwap(tail, tail+1) {
			s.value = v
			s.turn.Store(expected + 1)
			return true
		}
	}
}

// Push claims a slot and writes v, spin-waiting for room when the
// queue is full instead of giving up.
func (q *MPSC[T]) Push(v T) {
	tail := q.tail.Add(1) - 1
	s := &q.slots[tail&q.mask]
	expected := (tail / q.capacity) * 2
	waitSlotReady(&s.turn, expected)
	s.value = v
	s.turn.Store(expected + 1)
}

// TryPop pops the next element without blocking, returning false if
// the queue is empty. Only one goroutine may call TryPop/Pop on a
// given MPSC.
func (q *MPSC[T]) TryPop() (T, bool) {
	var zero T
	s := &q.slots[q.head&q.mask]
	expected := (q.head/q.capacity)*2 + 1
	if s.turn.Load() != expected {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.turn.Store(expected + 1)
	q.head++
	return v, true
}

// Pop pops the next element, spin-waiting if the queue is empty.
func (q *MPSC[T]) Pop() T {
	s := &q.slots[q.head&q.mask]
	expected := (q.head/q.capacity)*2 + 1
	waitSlotReady(&s.turn, expected)
	v := s.value
	var zero T
	s.value = zero
	s.turn.Store(expected + 1)
	q.head++
	return v
}
