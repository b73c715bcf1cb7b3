package handler

import (
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"go.uber.org/zap"
)

// Handshake next-state values.
const (
	nextStateStatus = 1
	nextStateLogin  = 2
)

// HandleHandshake processes the handshake packet and moves the session to
// status or login. The protocol version is kept so login can refuse other
// client versions with a readable message.
func HandleHandshake(sess *net.Session, r *packet.Reader, deps *Deps) {
	protocol := r.ReadVarInt()
	r.ReadString(255) // server address as typed by the player
	r.ReadUint16()    // port
	next := r.ReadVarInt()
	if err := r.Err(); err != nil {
		deps.Log.Debug("malformed handshake", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
		return
	}

	sess.Protocol = protocol
	switch next {
	case nextStateStatus:
		sess.SetState(packet.StateStatus)
	case nextStateLogin:
		sess.SetState(packet.StateLogin)
	default:
		deps.Log.Debug("handshake with unknown next state",
			zap.Uint64("session", sess.ID),
			zap.Int32("next", next),
		)
		sess.Close()
	}
}
