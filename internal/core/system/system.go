package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain packet queues
	PhasePreUpdate               // 1: dispatch queued events
	PhaseUpdate                  // 2: scripts, rotation
	PhasePostUpdate              // 3: keep-alive, boss bar sweep
	PhaseOutput                  // 4: flush packets
)

// System is the interface every game-loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Interval counts ticks and reports when a fixed number have passed.
type Interval struct {
	every int
	count int
}

func NewInterval(every int) *Interval {
	if every < 1 {
		every = 1
	}
	return &Interval{every: every}
}

// Step advances the counter and returns true on every n-th call.
func (iv *Interval) Step() bool {
	iv.count++
	if iv.count >= iv.every {
		iv.count = 0
		return true
	}
	return false
}
