package handler

import (
	"crypto/md5"
	"fmt"
	"math"
	"regexp"

	"github.com/google/uuid"
	"github.com/witherbar/server/internal/core/event"
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

// Where players appear. There is no terrain, so any point will do.
const (
	spawnX = 0.5
	spawnY = 64.0
	spawnZ = 0.5
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// OfflineUUID returns the UUID an offline-mode server assigns to a name: an
// MD5 name-based (version 3) UUID of "OfflinePlayer:<name>" with no namespace.
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // RFC 4122 variant
	return uuid.UUID(sum)
}

// HandleLoginStart logs a player in without authentication and enters play
// state. A player already online under the same name is kicked.
func HandleLoginStart(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadString(16 * 4)
	if err := r.Err(); err != nil {
		deps.Log.Debug("malformed login start", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
		return
	}

	if sess.Protocol != packet.ProtocolVersion {
		kickLogin(sess, fmt.Sprintf("Outdated client! Please use %s", VersionName))
		return
	}
	if !validName.MatchString(name) {
		kickLogin(sess, "Invalid username")
		return
	}

	ws := deps.World
	id := OfflineUUID(name)
	old := ws.GetByID(id)
	if old == nil && ws.PlayerCount() >= deps.Config.Server.MaxPlayers {
		kickLogin(sess, "The server is full!")
		return
	}
	if old != nil {
		old.Send(packet.BuildDisconnect(packet.ChatMessage{Text: "You logged in from another location"}))
		old.Session.CloseAfterFlush()
		// The old client's bar entity dies with its connection.
		deps.Bars.Forget(id)
	}

	sess.PlayerName = name
	if t := deps.Config.Network.CompressionThreshold; t >= 0 {
		sess.EnableCompression(t)
	}
	sess.Send(packet.BuildLoginSuccess(id.String(), name))
	sess.SetState(packet.StatePlay)

	now := deps.Ticks.CurrentTick()
	p := &world.PlayerInfo{
		SessionID:       sess.ID,
		Session:         sess,
		ID:              id,
		Name:            name,
		EntityID:        ws.NextEntityID(),
		KeepAliveSentAt: now,
		LastKeepAlive:   now,
	}
	p.SetPosition(spawnX, spawnY, spawnZ, false)
	ws.AddPlayer(p)

	sendJoinSequence(p, deps)
	event.Emit(deps.Bus, event.PlayerJoined{PlayerID: id, Name: name, SessionID: sess.ID})

	deps.Log.Info("player joined",
		zap.String("name", name),
		zap.Stringer("uuid", id),
		zap.String("ip", sess.IP),
	)
}

// sendJoinSequence sends everything a 1.8 client needs to leave the loading
// screen.
func sendJoinSequence(p *world.PlayerInfo, deps *Deps) {
	cfg := deps.Config.Server
	loc := p.Location()

	p.Send(packet.BuildJoinGame(packet.JoinGame{
		EntityID:   p.EntityID,
		GameMode:   cfg.GameMode,
		Dimension:  0,
		Difficulty: 0,
		MaxPlayers: uint8(min(cfg.MaxPlayers, math.MaxUint8)),
		LevelType:  "flat",
	}))
	p.Send(packet.BuildSpawnPosition(int32(math.Floor(loc.X)), int32(math.Floor(loc.Y)), int32(math.Floor(loc.Z))))
	p.Send(packet.BuildPlayerAbilities(abilitiesFor(cfg.GameMode), 0.05, 0.1))
	p.Send(packet.BuildPositionAndLook(loc.X, loc.Y, loc.Z, loc.Yaw, loc.Pitch))
	sendMessage(p, "Type /bar <0-1> <text> to set your own boss bar.", "gray")
}

func abilitiesFor(gameMode uint8) byte {
	switch gameMode {
	case 1: // creative
		return packet.AbilityInvulnerable | packet.AbilityAllowFlying | packet.AbilityCreative
	case 3: // spectator
		return packet.AbilityInvulnerable | packet.AbilityAllowFlying | packet.AbilityFlying
	default:
		return 0
	}
}

func kickLogin(sess *net.Session, reason string) {
	sess.Send(packet.BuildLoginDisconnect(packet.ChatMessage{Text: reason}))
	sess.CloseAfterFlush()
}
