package handler

import (
	"math"

	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

// HandlePlayer processes the bare on-ground packet.
func HandlePlayer(sess *net.Session, r *packet.Reader, deps *Deps) {
	onGround := r.ReadBool()
	if p := movingPlayer(sess, r, deps); p != nil {
		p.SetOnGround(onGround)
	}
}

// HandlePosition processes a position update. Y is the feet position.
func HandlePosition(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, y, z := r.ReadFloat64(), r.ReadFloat64(), r.ReadFloat64()
	onGround := r.ReadBool()
	p := movingPlayer(sess, r, deps)
	if p == nil || !finite(x, y, z) {
		return
	}
	p.SetPosition(x, y, z, onGround)
}

// HandleLook processes a rotation update. The bar sweep reads the new view
// direction on its next pass.
func HandleLook(sess *net.Session, r *packet.Reader, deps *Deps) {
	yaw, pitch := r.ReadFloat32(), r.ReadFloat32()
	onGround := r.ReadBool()
	p := movingPlayer(sess, r, deps)
	if p == nil || !finite(float64(yaw), float64(pitch)) {
		return
	}
	p.SetLook(yaw, pitch, onGround)
}

// HandlePositionLook processes a combined position and rotation update.
func HandlePositionLook(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, y, z := r.ReadFloat64(), r.ReadFloat64(), r.ReadFloat64()
	yaw, pitch := r.ReadFloat32(), r.ReadFloat32()
	onGround := r.ReadBool()
	p := movingPlayer(sess, r, deps)
	if p == nil || !finite(x, y, z, float64(yaw), float64(pitch)) {
		return
	}
	p.SetPosition(x, y, z, onGround)
	p.SetLook(yaw, pitch, onGround)
}

// movingPlayer returns the player behind sess once the packet decoded
// cleanly.
func movingPlayer(sess *net.Session, r *packet.Reader, deps *Deps) *world.PlayerInfo {
	if err := r.Err(); err != nil {
		deps.Log.Debug("malformed movement packet", zap.Uint64("session", sess.ID), zap.Error(err))
		return nil
	}
	return deps.World.GetBySession(sess.ID)
}

// finite rejects NaN and infinite coordinates, which would poison the bar
// placement.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
