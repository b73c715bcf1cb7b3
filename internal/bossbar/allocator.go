package bossbar

import (
	"math"
	"sync"
)

// DefaultGuardBand is the width of the entity id band reserved for bars,
// counted up from math.MinInt32.
const DefaultGuardBand int32 = 15000

// Allocator hands out entity ids for fake entities from the bottom of the
// int32 range, counting down. Real entity ids count up from small positive
// numbers, so the two spaces only meet if the server wraps its own counter.
//
// When the counter reaches math.MinInt32 it jumps back up by the guard band.
// Ids are therefore recycled after guardBand allocations; a recycled id is only
// a problem if a bar from a full cycle ago is still alive, which is accepted.
type Allocator struct {
	mu    sync.Mutex
	next  int32
	guard int32
}

func NewAllocator(guardBand int32) *Allocator {
	if guardBand < 1 {
		guardBand = DefaultGuardBand
	}
	return &Allocator{
		next:  math.MinInt32 + guardBand,
		guard: guardBand,
	}
}

// Next returns the current counter value and decrements it.
// math.MinInt32 itself is never returned.
func (a *Allocator) Next() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next == math.MinInt32 {
		a.next += a.guard
	}
	id := a.next
	a.next--
	return id
}
