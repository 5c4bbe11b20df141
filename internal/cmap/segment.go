package cmap

import (
	"sync"
	"sync/atomic"
)

// segment is a coarse lock guarding the free-bucket search and
// displacement sequence for one contiguous range of home buckets.
// Its timestamp is bumped on every structural change (every insert,
// every remove, and every displacement that moves an entry whose home
// bucket lies in this segment) so that opportunistic lock-free
// reads in Get/Contains can detect a concurrent mutation and restart
// instead of racing on stale hop bitmaps.
type segment struct {
	mu sync.Mutex
	ts atomic.Uint32
}

func (s *segment) lock()           { s.mu.Lock() }
func (s *segment) unlock()         { s.mu.Unlock() }
func (s *segment) bumpTimestamp()  { s.ts.Add(1) }
func (s *segment) timestamp() uint32 { return s.ts.Load() }
