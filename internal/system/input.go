package system

import (
	"time"

	"github.com/witherbar/server/internal/core/event"
	coresys "github.com/witherbar/server/internal/core/system"
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

// SessionSource is the part of net.Server the input system consumes.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(sessionID uint64)
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	sessions   SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	world      *world.State
	bus        *event.Bus
	log        *zap.Logger
}

func NewInputSystem(
	sessions SessionSource,
	registry *packet.Registry,
	store *net.SessionStore,
	maxPerTick int,
	ws *world.State,
	bus *event.Bus,
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		sessions:   sessions,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		world:      ws,
		bus:        bus,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.sessions.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.sessions.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	// Drain packets from each session (up to maxPerTick per session)
	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.handleDisconnect(sess)
			s.sessions.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("packet dispatch failed",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
	}

	// Early flush so Phase 0 output (login replies, chat) reaches the writer
	// goroutines while the rest of the tick runs. OutputSystem flushes the
	// remainder in Phase 4.
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// handleDisconnect removes the player from the world and announces the
// departure. Handlers of PlayerDisconnected must not send to the session.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	player := s.world.RemovePlayer(sess.ID)
	if player == nil {
		return
	}

	// A relog already took over the UUID; the newer session owns the state.
	if s.world.GetByID(player.ID) != nil {
		s.log.Debug("replaced session closed",
			zap.String("name", player.Name),
			zap.Uint64("session", sess.ID),
		)
		return
	}

	event.Emit(s.bus, event.PlayerDisconnected{
		PlayerID:  player.ID,
		Name:      player.Name,
		SessionID: sess.ID,
	})
	s.log.Info("player left",
		zap.String("name", player.Name),
		zap.Stringer("uuid", player.ID),
	)
}

// SessionCount returns the current number of active sessions.
func (s *InputSystem) SessionCount() int {
	return s.store.Count()
}
