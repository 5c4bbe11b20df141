// Package cmap implements a fixed-capacity concurrent hash map using
// hopscotch hashing: each key's home bucket tracks, in a bitmap, which
// nearby buckets within a bounded neighborhood hold its displaced
// collisions, so a lookup never walks further than that neighborhood
// regardless of load factor. Structural changes are serialized by a
// coarse lock per contiguous range of buckets (a segment); individual
// bucket contents are protected by a per-bucket spinlock, so plain
// reads and writes to different keys rarely contend with each other.
//
// The map does not grow: New sizes the table for an expected key
// count up front. Resizing/rehashing, persistence and snapshot
// iteration are out of scope.
package cmap

import (
	"errors"
	"math"
	"math/bits"
	"sync/atomic"
)

const (
	hopRange      = 32   // width of a home bucket's displaceable neighborhood
	addRange      = 1024 // how far a free-bucket probe is allowed to search
	segmentRange  = 4096 // buckets per segment, at most
	maxLoadFactor = 0.82
)

// ErrTableFull describes the condition in which Set reports false for
// a new key: no bucket within addRange of the key's home bucket can be
// freed up through displacement. Set signals it only through its bool
// result and never returns this value. The table needs a larger
// expected capacity; this package does not resize.
var ErrTableFull = errors.New("cmap: no free bucket within probe range")

// Map is a fixed-capacity concurrent hash map.
type Map[K comparable, V any] struct {
	buckets      []bucket[K, V]
	segments     []segment
	bucketMask   uint64
	segmentShift uint
	segmentCount uint64
	hasher       HashFunc[K]
	size         atomic.Int64
}

// New builds a Map sized for expectedCapacity keys at the target load
// factor. expectedCapacity <= 0 is treated as a small default.
func New[K comparable, V any](expectedCapacity int, hasher HashFunc[K]) *Map[K, V] {
	if hasher == nil {
		hasher = DefaultHasher[K]()
	}
	if expectedCapacity <= 0 {
		expectedCapacity = 16
	}

	bucketCount := roundUpToPowerOfTwo(uint64(math.Ceil(float64(expectedCapacity) / maxLoadFactor)))

	segWidth := uint64(segmentRange)
	if bucketCount < segWidth {
		segWidth = bucketCount
	}
	segmentCount := bucketCount / segWidth
	if segmentCount == 0 {
		segmentCount = 1
	}
	segmentShift := uint(bits.TrailingZeros64(bucketCount / segmentCount))

	total := bucketCount + addRange + 1

	return &Map[K, V]{
		buckets:      make([]bucket[K, V], total),
		segments:     make([]segment, segmentCount),
		bucketMask:   bucketCount - 1,
		segmentShift: segmentShift,
		segmentCount: segmentCount,
		hasher:       hasher,
	}
}

// Cap reports the advisory capacity New sized the table for.
func (m *Map[K, V]) Cap() int {
	return int(float64(m.bucketMask+1) * maxLoadFactor)
}

// Len reports the approximate number of entries. It is exact absent
// concurrent writers, and a recent snapshot otherwise.
func (m *Map[K, V]) Len() int {
	return int(m.size.Load())
}

func (m *Map[K, V]) homeIndex(hash uint32) uint64 {
	return uint64(hash) & m.bucketMask
}

func (m *Map[K, V]) segmentFor(home uint64) uint64 {
	return (home >> m.segmentShift) % m.segmentCount
}

func (m *Map[K, V]) keyEqual(a, b K) bool {
	return a == b
}

// Set inserts key's value if key is not already present. It never
// overwrites: if key already exists, Set leaves the existing entry
// untouched and reports false. It also reports false when the table
// has no room for a new key within its probe range.
func (m *Map[K, V]) Set(key K, value V) bool {
	h := m.hasher(key)
	home := m.homeIndex(h)
	segIdx := m.segmentFor(home)
	seg := &m.segments[segIdx]

	seg.lock()
	defer seg.unlock()

	homeBucket := &m.buckets[home]

	if _, found := m.scanForKey(home, h, key); found {
		return false
	}

	free, ok := m.findFreeBucket(home)
	if !ok {
		return false
	}

	for free-home >= hopRange {
		next, ok := m.displaceCloserTo(segIdx, free)
		if !ok {
			return false
		}
		free = next
	}

	fb := &m.buckets[free]
	fb.lock.Lock()
	fb.state = stateOccupied
	fb.hash = h
	fb.key = key
	fb.value = value
	fb.lock.Unlock()

	homeBucket.hopInfo.Store(homeBucket.hopInfo.Load() | (1 << (free - home)))
	seg.bumpTimestamp()
	m.size.Add(1)
	return true
}

// Get returns the value stored for key, if present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	h := m.hasher(key)
	home := m.homeIndex(h)
	seg := &m.segments[m.segmentFor(home)]

	for {
		startTS := seg.timestamp()

		if idx, found := m.scanForKey(home, h, key); found {
			b := &m.buckets[idx]
			b.lock.Lock()
			if b.state == stateOccupied && b.hash == h && m.keyEqual(b.key, key) {
				v := b.value
				b.lock.Unlock()
				return v, true
			}
			b.lock.Unlock()
		}

		if seg.timestamp() == startTS {
			return zero, false
		}
		// A concurrent displacement moved an entry while we were
		// scanning; the hop bitmap we walked may be stale. Restart.
	}
}

// Contains reports whether key is present, without copying its value.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove deletes key, reporting whether it was present.
func (m *Map[K, V]) Remove(key K) bool {
	h := m.hasher(key)
	home := m.homeIndex(h)
	seg := &m.segments[m.segmentFor(home)]

	seg.lock()
	defer seg.unlock()

	homeBucket := &m.buckets[home]
	hop := homeBucket.hopInfo.Load()
	for hop != 0 {
		bit := uint64(bits.TrailingZeros32(hop))
		idx := home + bit
		b := &m.buckets[idx]
		b.lock.Lock()
		if b.state == stateOccupied && b.hash == h && m.keyEqual(b.key, key) {
			var zeroK K
			var zeroV V
			b.state = stateEmpty
			b.key = zeroK
			b.value = zeroV
			b.lock.Unlock()

			homeBucket.hopInfo.Store(homeBucket.hopInfo.Load() &^ (1 << bit))
			seg.bumpTimestamp()
			m.size.Add(-1)
			return true
		}
		b.lock.Unlock()
		hop &^= 1 << bit
	}
	return false
}

// scanForKey walks home's hop bitmap looking for key. Bucket-level
// locks make each individual check race-free; the bitmap itself may
// be stale by the time the caller acts on the result, which callers
// under the segment lock are immune to and callers in Get guard
// against via the segment timestamp.
func (m *Map[K, V]) scanForKey(home uint64, hash uint32, key K) (uint64, bool) {
	hop := m.buckets[home].hopInfo.Load()
	for hop != 0 {
		bit := uint64(bits.TrailingZeros32(hop))
		idx := home + bit
		b := &m.buckets[idx]
		b.lock.Lock()
		match := b.state == stateOccupied && b.hash == hash && m.keyEqual(b.key, key)
		if b.state == stateTransient {
			b.heal()
		}
		b.lock.Unlock()
		if match {
			return idx, true
		}
		hop &^= 1 << bit
	}
	return 0, false
}

// findFreeBucket probes forward from home, within addRange, for an
// empty or reclaimable-transient bucket. Must be called with the
// owning segment locked.
func (m *Map[K, V]) findFreeBucket(home uint64) (uint64, bool) {
	limit := home + addRange
	if limit >= uint64(len(m.buckets)) {
		limit = uint64(len(m.buckets)) - 1
	}
	for i := home; i <= limit; i++ {
		b := &m.buckets[i]
		b.lock.Lock()
		if b.state == stateEmpty {
			b.lock.Unlock()
			return i, true
		}
		if b.state == stateTransient {
			b.heal()
			b.lock.Unlock()
			return i, true
		}
		b.lock.Unlock()
	}
	return 0, false
}

// displaceCloserTo looks for an occupied bucket within [free-hopRange+1,
// free) whose own entry could instead live at free, moves it there,
// and returns the vacated index as the new, closer free slot. Must be
// called with the home segment heldIdx already locked by the caller.
//
// A donor bucket j can belong to a different segment than heldIdx
// once segmentCount > 1: segments are contiguous ranges of bucket
// indices and j ranges over [home, free), so segmentFor(j) is always
// >= heldIdx, making "lock the donor after the held segment" a
// globally consistent order across all callers — the only lock-order
// expansion in the algorithm. hopInfo is read only after the donor
// segment (if different) is locked, so the bitmap this function acts
// on is never a stale pre-lock snapshot.
func (m *Map[K, V]) displaceCloserTo(heldIdx uint64, free uint64) (uint64, bool) {
	start := uint64(0)
	if free >= hopRange-1 {
		start = free - (hopRange - 1)
	}
	for j := start; j < free; j++ {
		if j > m.bucketMask {
			// Overflow-tail buckets are never a home, so they hold no
			// hop bits to donate (and segmentFor would wrap them to 0).
			break
		}
		donorIdx := m.segmentFor(j)
		var donorSeg *segment
		if donorIdx != heldIdx {
			donorSeg = &m.segments[donorIdx]
			donorSeg.lock()
		}

		occupant, moved := m.tryMoveCloser(j, free)
		if moved {
			m.segments[donorIdx].bumpTimestamp()
		}

		if donorSeg != nil {
			donorSeg.unlock()
		}

		if moved {
			return occupant, true
		}
	}
	return 0, false
}

// tryMoveCloser reads j's hop bitmap and, if it holds an entry that
// can live at free instead, moves it and updates the bitmap. Callers
// must already hold whichever segment(s) own j and the home bucket
// the bitmap belongs to.
func (m *Map[K, V]) tryMoveCloser(j, free uint64) (uint64, bool) {
	jb := &m.buckets[j]
	hop := jb.hopInfo.Load()
	for hop != 0 {
		bit := uint64(bits.TrailingZeros32(hop))
		occupant := j + bit
		if occupant < free {
			m.moveEntry(occupant, free)

			newHop := jb.hopInfo.Load()
			newHop &^= 1 << bit
			newHop |= 1 << (free - j)
			jb.hopInfo.Store(newHop)

			return occupant, true
		}
		hop &^= 1 << bit
	}
	return 0, false
}

func (m *Map[K, V]) moveEntry(src, dst uint64) {
	srcB := &m.buckets[src]
	dstB := &m.buckets[dst]

	srcB.lock.Lock()
	dstB.lock.Lock()
	dstB.state = stateOccupied
	dstB.hash = srcB.hash
	dstB.key = srcB.key
	dstB.value = srcB.value

	var zeroK K
	var zeroV V
	srcB.state = stateTransient
	srcB.key = zeroK
	srcB.value = zeroV
	dstB.lock.Unlock()
	srcB.lock.Unlock()
}

func roundUpToPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(n-1))
}
