package handler

import (
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleKeepAlive records the answer to the pending keep-alive probe.
// Answers to older or unknown ids are ignored; the KeepAliveSystem kicks the
// player once the probe goes unanswered for too long.
func HandleKeepAlive(sess *net.Session, r *packet.Reader, deps *Deps) {
	id := r.ReadVarInt()
	if r.Err() != nil {
		return
	}
	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	if p.KeepAliveID == 0 || id != p.KeepAliveID {
		deps.Log.Debug("unexpected keep-alive",
			zap.String("name", p.Name),
			zap.Int32("got", id),
			zap.Int32("want", p.KeepAliveID),
		)
		return
	}
	p.KeepAliveID = 0
	p.LastKeepAlive = deps.Ticks.CurrentTick()
}
