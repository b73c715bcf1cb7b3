package handler

import (
	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/config"
	"github.com/witherbar/server/internal/core/event"
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	World  *world.State
	Bars   *bossbar.Service
	Bus    *event.Bus
	Ticks  bossbar.TickSource
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.StateHandshake, packet.C_OPCODE_HANDSHAKE,
		func(sess any, r *packet.Reader) {
			HandleHandshake(sess.(*net.Session), r, deps)
		},
	)

	// Server list ping
	reg.Register(packet.StateStatus, packet.C_OPCODE_STATUS_REQUEST,
		func(sess any, r *packet.Reader) {
			HandleStatusRequest(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.StateStatus, packet.C_OPCODE_STATUS_PING,
		func(sess any, r *packet.Reader) {
			HandleStatusPing(sess.(*net.Session), r, deps)
		},
	)

	// Login phase (offline mode, no encryption)
	reg.Register(packet.StateLogin, packet.C_OPCODE_LOGIN_START,
		func(sess any, r *packet.Reader) {
			HandleLoginStart(sess.(*net.Session), r, deps)
		},
	)

	// Play phase
	reg.Register(packet.StatePlay, packet.C_OPCODE_KEEP_ALIVE,
		func(sess any, r *packet.Reader) {
			HandleKeepAlive(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.StatePlay, packet.C_OPCODE_CHAT,
		func(sess any, r *packet.Reader) {
			HandleChat(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.StatePlay, packet.C_OPCODE_PLAYER,
		func(sess any, r *packet.Reader) {
			HandlePlayer(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.StatePlay, packet.C_OPCODE_PLAYER_POSITION,
		func(sess any, r *packet.Reader) {
			HandlePosition(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.StatePlay, packet.C_OPCODE_PLAYER_LOOK,
		func(sess any, r *packet.Reader) {
			HandleLook(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.StatePlay, packet.C_OPCODE_PLAYER_POSITION_LK,
		func(sess any, r *packet.Reader) {
			HandlePositionLook(sess.(*net.Session), r, deps)
		},
	)
}

// sendMessage sends a system chat line to a player.
func sendMessage(p *world.PlayerInfo, text, color string) {
	p.Send(packet.BuildChat(packet.ChatMessage{Text: text, Color: color}, packet.ChatPositionSystem))
}

func sendError(p *world.PlayerInfo, text string) {
	sendMessage(p, text, "red")
}
