package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateHandshake SessionState = iota
	StateStatus                 // server list ping
	StateLogin                  // awaiting login start
	StatePlay                   // in world
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateStatus:
		return "Status"
	case StateLogin:
		return "Login"
	case StatePlay:
		return "Play"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for packet handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerKey struct {
	state SessionState
	id    int32
}

// Registry maps (state, packet ID) pairs to handlers. Packet IDs are reused
// across states, so the state is part of the key rather than a filter.
type Registry struct {
	handlers map[handlerKey]HandlerFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[handlerKey]HandlerFunc),
		log:      log,
	}
}

// Register maps a packet ID in the given state to a handler.
func (reg *Registry) Register(state SessionState, id int32, fn HandlerFunc) {
	reg.handlers[handlerKey{state: state, id: id}] = fn
}

// Handles reports whether a handler is registered for the pair.
func (reg *Registry) Handles(state SessionState, id int32) bool {
	_, ok := reg.handlers[handlerKey{state: state, id: id}]
	return ok
}

// Dispatch decodes the packet ID from data, finds its handler for the session
// state, and calls it. Unknown packets are ignored.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty packet")
	}
	r := NewReader(data)
	if err := r.Err(); err != nil {
		return fmt.Errorf("read packet id: %w", err)
	}
	id := r.ID()

	fn, ok := reg.handlers[handlerKey{state: state, id: id}]
	if !ok {
		reg.log.Debug("unhandled packet",
			zap.Int32("id", id),
			zap.Int("size", len(data)),
			zap.String("state", state.String()),
		)
		return nil
	}

	return reg.safeCall(fn, sess, r, state)
}

// safeCall executes a handler with panic recovery to prevent a single
// bad packet from crashing the entire game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, state SessionState) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Int32("id", r.ID()),
				zap.String("state", state.String()),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for packet 0x%02X in %s: %v", r.ID(), state, rec)
		}
	}()
	fn(sess, r)
	return nil
}
