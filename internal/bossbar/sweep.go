package bossbar

import (
	"time"

	coresys "github.com/witherbar/server/internal/core/system"
)

// SweepSystem repositions bars every SweepInterval ticks.
// Phase 3 (PostUpdate), after movement packets of the tick were applied.
type SweepSystem struct {
	bars  *Service
	every *coresys.Interval
}

func NewSweepSystem(bars *Service, interval int) *SweepSystem {
	return &SweepSystem{bars: bars, every: coresys.NewInterval(interval)}
}

func (s *SweepSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SweepSystem) Update(_ time.Duration) {
	if s.every.Step() {
		s.bars.Sweep()
	}
}
