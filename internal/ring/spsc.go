package ring

// SPSC is a bounded single-producer/single-consumer ring buffer. The
// producer owns tail, the consumer owns head; neither index is
// shared, so they need no atomic protection of their own — only the
// per-slot turn counter needs to be atomic, since it is what the
// other side actually synchronizes on.
type SPSC[T any] struct {
	capacity uint64
	mask     uint64
	slots    []slot[T]

	tail uint64
	_    [56]byte
	head uint64
	_    [56]byte
}

// NewSPSC builds an SPSC queue with at least the requested capacity,
// rounded up to a power of two.
func NewSPSC[T any](capacity int) (*SPSC[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	size := roundUpToPowerOfTwo(uint64(capacity))
	return &SPSC[T]{
		capacity: size,
		mask:     size - 1,
		slots:    make([]slot[T], size),
	}, nil
}

// Cap returns the queue's fixed capacity.
func (q *SPSC[T]) Cap() int { return int(q.capacity) }

// Len returns the number of elements currently queued. Safe to call
// from either the producer or consumer goroutine; from any other
// goroutine it is racy by construction of this type (only the
// producer and consumer are meant to observe it).
func (q *SPSC[T]) Len() int { return int(q.tail - q.head) }

// TryPush pushes v without blocking, returning false if the queue is
// full.
func (q *SPSC[T]) TryPush(v T) bool {
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
func (q *SPSC[T]) Push(v T) {
	s := &q.slots[q.tail&q.mask]
	expected := (q.tail / q.capacity) * 2
	waitSlotReady(&s.turn, expected)
	s.value = v
	s.turn.Store(expected + 1)
	q.tail++
}

// TryPop pops the next element without blocking, returning false if
// the queue is empty.
func (q *SPSC[T]) TryPop() (T, bool) {
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
func (q *SPSC[T]) Pop() T {
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
