package system

import (
	"math/rand"
	"time"

	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/config"
	coresys "github.com/witherbar/server/internal/core/system"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

// KeepAliveSystem probes every player periodically and kicks players whose
// probe goes unanswered. Phase 3 (PostUpdate).
type KeepAliveSystem struct {
	world   *world.State
	ticks   bossbar.TickSource
	every   int64 // ticks between probes
	timeout int64 // ticks a probe may stay unanswered
	log     *zap.Logger
}

func NewKeepAliveSystem(ws *world.State, ticks bossbar.TickSource, cfg config.NetworkConfig, log *zap.Logger) *KeepAliveSystem {
	return &KeepAliveSystem{
		world:   ws,
		ticks:   ticks,
		every:   int64(cfg.KeepAliveTicks),
		timeout: int64(cfg.KeepAliveTimeout),
		log:     log,
	}
}

func (s *KeepAliveSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *KeepAliveSystem) Update(_ time.Duration) {
	now := s.ticks.CurrentTick()
	s.world.AllPlayers(func(p *world.PlayerInfo) {
		if p.Session == nil || p.Session.State() == packet.StateDisconnecting {
			return
		}
		if p.KeepAliveID != 0 {
			if now-p.KeepAliveSentAt > s.timeout {
				s.log.Info("keep-alive timeout, disconnecting", zap.String("name", p.Name))
				p.Send(packet.BuildDisconnect(packet.ChatMessage{Text: "Timed out"}))
				p.Session.CloseAfterFlush()
			}
			return
		}
		if now-p.KeepAliveSentAt >= s.every {
			p.KeepAliveID = rand.Int31n(1<<30) + 1 // never 0, which means "none pending"
			p.KeepAliveSentAt = now
			p.Send(packet.BuildKeepAlive(p.KeepAliveID))
		}
	})
}
