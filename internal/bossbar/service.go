// Package bossbar draws a boss health bar on 1.8 clients by spawning an
// invisible wither that only one player can see. The wither's health is the
// bar's fill and its custom name is the bar's text. Every few ticks the wither
// is moved back in front of the player's view so the bar never disappears.
package bossbar

import (
	"sync"

	"github.com/google/uuid"
	"github.com/witherbar/server/internal/config"
	"github.com/witherbar/server/internal/core/event"
	"github.com/witherbar/server/internal/net/packet"
	"go.uber.org/zap"
)

// Viewer is a connected player that can own a bar.
type Viewer interface {
	UUID() uuid.UUID
	Location() Location
	// Send queues a packet body for the player. An error means the packet
	// will never arrive, usually because the connection is closed.
	Send(data []byte) error
}

// Directory resolves online players by UUID. Offline players are reported as
// not found.
type Directory interface {
	Viewer(id uuid.UUID) (Viewer, bool)
}

// TickSource reports the server's monotonically increasing tick counter.
type TickSource interface {
	CurrentTick() int64
}

// Service shows, updates and removes bars and keeps them in front of their
// owners.
//
// Packet send failures are logged and otherwise ignored: a bar is cosmetic,
// a lost teleport is corrected by the next sweep, and a lost spawn or destroy
// only matters to a client whose connection is already going away. State is
// never rolled back and nothing is retried.
type Service struct {
	cfg     config.BossBarConfig
	ids     *Allocator
	bars    *Registry
	players Directory
	ticks   TickSource
	log     *zap.Logger

	// mu serializes Show and Remove so concurrent callers cannot both see
	// "no bar" and spawn two entities for one player.
	mu sync.Mutex
}

func NewService(cfg config.BossBarConfig, players Directory, ticks TickSource, log *zap.Logger) *Service {
	return &Service{
		cfg:     cfg,
		ids:     NewAllocator(cfg.IDGuardBand),
		bars:    NewRegistry(),
		players: players,
		ticks:   ticks,
		log:     log.Named("bossbar"),
	}
}

// Show displays text with the given fill on v's screen, spawning the bar
// entity on first use and updating it in place afterwards. Empty text removes
// the bar. A fraction outside [0, 1] returns a *ValidationError and changes
// nothing.
//
// Text is cut to MaxTextLength characters before '&' color codes are
// translated, so a code split by the cut stays as a literal '&'.
func (s *Service) Show(v Viewer, text string, fraction float64) error {
	if text == "" {
		s.Remove(v)
		return nil
	}
	if !(fraction >= 0 && fraction <= 1) {
		return &ValidationError{Field: "fraction", Value: fraction}
	}

	text = TranslateColorCodes('&', Truncate(text, s.cfg.MaxTextLength))
	health := float32(fraction * s.cfg.HealthScale)

	s.mu.Lock()
	defer s.mu.Unlock()

	if entityID, ok := s.bars.Get(v.UUID()); ok {
		s.update(v, entityID, text, health)
		return nil
	}
	s.create(v, text, health)
	return nil
}

// Remove destroys v's bar entity if one exists.
func (s *Service) Remove(v Viewer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := v.UUID()
	entityID, ok := s.bars.Get(id)
	if !ok {
		return
	}
	s.send(v, "destroy", packet.BuildDestroyEntities(entityID))
	s.bars.Remove(id)
}

// Forget drops a player's bar without sending anything. Used once the
// player's connection is gone.
func (s *Service) Forget(id uuid.UUID) {
	s.bars.Remove(id)
}

// Active reports whether the player currently has a bar.
func (s *Service) Active(id uuid.UUID) bool {
	return s.bars.Has(id)
}

// EntityID returns the fake entity id behind a player's bar.
func (s *Service) EntityID(id uuid.UUID) (int32, bool) {
	return s.bars.Get(id)
}

// Count returns the number of live bars.
func (s *Service) Count() int {
	return s.bars.Len()
}

// Sweep moves every bar back in front of its owner. Bars of players that
// went offline are dropped. A bar teleported less than RefreshTicks ago is
// skipped.
func (s *Service) Sweep() {
	now := s.ticks.CurrentTick()

	s.bars.ForEach(func(id uuid.UUID, entityID int32) {
		v, ok := s.players.Viewer(id)
		if !ok {
			s.bars.Remove(id)
			s.log.Debug("dropped bar of offline player", zap.Stringer("player", id))
			return
		}

		// The entry may have been removed or respawned since the snapshot.
		if cur, ok := s.bars.Get(id); !ok || cur != entityID {
			return
		}
		if last, _ := s.bars.LastRefresh(id); now-last < s.cfg.RefreshTicks {
			return
		}

		pos := Place(v.Location(), s.cfg.Distance)
		s.send(v, "teleport", packet.BuildEntityTeleport(entityID, pos.X, pos.Y, pos.Z, 0, 0, false))
		s.bars.Touch(id, now)
	})
}

// Subscribe registers the disconnect hook on the event bus.
func (s *Service) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(ev event.PlayerDisconnected) {
		if s.bars.Has(ev.PlayerID) {
			s.log.Debug("forgetting bar of disconnected player",
				zap.String("name", ev.Name),
				zap.Stringer("player", ev.PlayerID),
			)
		}
		s.Forget(ev.PlayerID)
	})
}

func (s *Service) create(v Viewer, text string, health float32) {
	id := v.UUID()
	entityID := s.ids.Next()
	pos := Place(v.Location(), s.cfg.Distance)

	meta := packet.NewMetadata().
		SetByte(packet.MetaIndexFlags, packet.EntityFlagInvisible).
		SetByte(packet.MetaIndexAlwaysShowName, 1).
		SetFloat(packet.MetaIndexHealth, health).
		SetString(packet.MetaIndexCustomName, text)

	s.send(v, "spawn", packet.BuildSpawnMob(entityID, s.cfg.MobType, pos.X, pos.Y, pos.Z, meta))

	s.bars.Put(id, entityID)
	s.bars.Touch(id, s.ticks.CurrentTick())
}

func (s *Service) update(v Viewer, entityID int32, text string, health float32) {
	meta := packet.NewMetadata().
		SetFloat(packet.MetaIndexHealth, health).
		SetString(packet.MetaIndexCustomName, text)

	s.send(v, "metadata", packet.BuildEntityMetadata(entityID, meta))
}

func (s *Service) send(v Viewer, kind string, data []byte) {
	if err := v.Send(data); err != nil {
		s.log.Warn("bar packet not delivered",
			zap.String("packet", kind),
			zap.Stringer("player", v.UUID()),
			zap.Error(err),
		)
	}
}
