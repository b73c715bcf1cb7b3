package system

import (
	"time"

	"github.com/witherbar/server/internal/bossbar"
	coresys "github.com/witherbar/server/internal/core/system"
	"github.com/witherbar/server/internal/data"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

// RotationSystem shows the current announcement of the rotation table to
// every player who has not pinned a bar of their own. Phase 2 (Update).
type RotationSystem struct {
	world *world.State
	bars  *bossbar.Service
	table *data.RotationTable
	ticks bossbar.TickSource
	every *coresys.Interval
	log   *zap.Logger
}

func NewRotationSystem(
	ws *world.State,
	bars *bossbar.Service,
	table *data.RotationTable,
	ticks bossbar.TickSource,
	interval int,
	log *zap.Logger,
) *RotationSystem {
	return &RotationSystem{
		world: ws,
		bars:  bars,
		table: table,
		ticks: ticks,
		every: coresys.NewInterval(interval),
		log:   log,
	}
}

func (s *RotationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *RotationSystem) Update(_ time.Duration) {
	if !s.every.Step() {
		return
	}
	entry, fraction, ok := s.table.At(s.ticks.CurrentTick())
	if !ok {
		return
	}
	s.world.AllPlayers(func(p *world.PlayerInfo) {
		if p.BarPinned {
			return
		}
		if err := s.bars.Show(p, entry.Text, fraction); err != nil {
			s.log.Warn("rotation bar rejected", zap.String("name", p.Name), zap.Error(err))
		}
	})
}
