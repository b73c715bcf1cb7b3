package system

import (
	"sort"
	"sync/atomic"
	"time"
)

// Runner executes systems in phase order each tick and owns the server tick
// counter.
type Runner struct {
	systems []System
	sorted  bool
	tick    atomic.Int64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick advances the tick counter, then runs every system once.
func (r *Runner) Tick(dt time.Duration) {
	r.tick.Add(1)
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase runs only the systems of one phase without advancing the counter.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// CurrentTick returns the number of completed or in-progress ticks. It is
// safe to call from any goroutine.
func (r *Runner) CurrentTick() int64 {
	return r.tick.Load()
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
