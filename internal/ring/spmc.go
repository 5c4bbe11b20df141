package ring

import "sync/atomic"

// SPMC is a bounded single-producer/multi-consumer ring buffer. The
// sole producer owns tail directly; consumers CAS head forward to
// claim a slot each.
type SPMC[T any] struct {
	capacity uint64
	mask     uint64
	slots    []slot[T]

	head atomic.Uint64
	_    [56]byte
	tail uint64
	_    [56]byte
}

// NewSPMC builds an SPMC queue with at least the requested capacity,
// rounded up to a power of two.
func NewSPMC[T any](capacity int) (*SPMC[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	size := roundUpToPowerOfTwo(uint64(capacity))
	return &SPMC[T]{
		capacity: size,
		mask:     size - 1,
		slots:    make([]slot[T], size),
	}, nil
}

func (q *SPMC[T]) Cap() int { return int(q.capacity) }

// Len is an approximation for the same reason as MPSC.Len: head moves
// under concurrent CAS from many consumers.
func (q *SPMC[T]) Len() int { return int(q.tail - q.head.Load()) }

// TryPush pushes v without blocking. Only one goroutine may call
// TryPush/Push on a given SPMC.
func (q *SPMC[T]) TryPush(v T) bool {
	s := &q.slots[q.tail&q.mask]
	expected := (q.tail / q.capacity) * 2
	if s.turn.Load() != expected {
		return false
	}
	s.value = v
	s.turn.Store(expected + 1)
	q.tail++
	return true
}

// Push pushes v, spin-waiting for room if the queue is full.
func (q *SPMC[T]) Push(v T) {
	s := &q.slots[q.tail&q.mask]
	expected := (q.tail / q.capacity) * 2
	waitSlotReady(&s.turn, expected)
	s.value = v
	s.turn.Store(expected + 1)
	q.tail++
}

// TryPop claims the next element without blocking, returning false if
// the queue is empty.
func (q *SPMC[T]) TryPop() (T, bool) {
	var zero T
	for {
		head := q.head.Load()
		s := &q.slots[head&q.mask]
		expected := (head/q.capacity)*2 + 1
		if s.turn.Load() != expected {
			return zero, false
		}
		if q.head.CompareAndSwap(head, head+1) {
			v := s.value
			s.value = zero
			s.turn.Store(expected + 1)
			return v, true
		}
	}
}

// Pop claims the next element, spin-waiting if the queue is empty.
func (q *SPMC[T]) Pop() T {
	head := q.head.Add(1) - 1
	s := &q.slots[head&q.mask]
	expected := (head/q.capacity)*2 + 1
	waitSlotReady(&s.turn, expected)
	v := s.value
	var zero T
	s.value = zero
	s.turn.Store(expected + 1)
	return v
}
