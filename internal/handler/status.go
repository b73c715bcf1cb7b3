package handler

import (
	"encoding/json"

	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
)

// VersionName is the game version reported to the server list.
const VersionName = "1.8.9"

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type statusPlayers struct {
	Max    int `json:"max"`
	Online int `json:"online"`
}

type statusResponse struct {
	Version     statusVersion      `json:"version"`
	Players     statusPlayers      `json:"players"`
	Description packet.ChatMessage `json:"description"`
}

// HandleStatusRequest answers the server list query with version, player
// counts and the MOTD.
func HandleStatusRequest(sess *net.Session, _ *packet.Reader, deps *Deps) {
	cfg := deps.Config.Server
	resp := statusResponse{
		Version: statusVersion{Name: VersionName, Protocol: packet.ProtocolVersion},
		Players: statusPlayers{Max: cfg.MaxPlayers, Online: deps.World.PlayerCount()},
		Description: packet.ChatMessage{
			Text: bossbar.TranslateColorCodes('&', cfg.MOTD),
		},
	}
	b, _ := json.Marshal(resp) // plain structs, cannot fail
	sess.Send(packet.BuildStatusResponse(string(b)))
}

// HandleStatusPing echoes the ping payload and hangs up, as the vanilla
// server does.
func HandleStatusPing(sess *net.Session, r *packet.Reader, _ *Deps) {
	payload := r.ReadInt64()
	if r.Err() != nil {
		sess.Close()
		return
	}
	sess.Send(packet.BuildStatusPong(payload))
	sess.CloseAfterFlush()
}
