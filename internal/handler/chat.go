package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

const maxChatLength = 100

const barUsage = "Usage: /bar <0-1|0-100%> <text>, /bar clear, /bar auto"

// HandleChat processes a chat line: commands start with '/', anything else
// is broadcast to every player.
func HandleChat(sess *net.Session, r *packet.Reader, deps *Deps) {
	text := r.ReadString(maxChatLength * 4)
	if r.Err() != nil {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	player := deps.World.GetBySession(sess.ID)
	if player == nil {
		return
	}

	if HandleCommand(player, text, deps) {
		return
	}

	deps.Log.Info("chat", zap.String("player", player.Name), zap.String("text", text))

	line := packet.BuildChat(packet.ChatMessage{Text: fmt.Sprintf("<%s> %s", player.Name, text)}, packet.ChatPositionChat)
	deps.World.AllPlayers(func(other *world.PlayerInfo) {
		other.Send(line)
	})
}

// HandleCommand runs a slash command. Returns false when text is not a
// command.
func HandleCommand(player *world.PlayerInfo, text string, deps *Deps) bool {
	if !strings.HasPrefix(text, "/") {
		return false
	}

	cmd, args, _ := strings.Cut(text[1:], " ")
	deps.Log.Debug("command",
		zap.String("player", player.Name),
		zap.String("cmd", cmd),
		zap.String("args", args),
	)

	switch strings.ToLower(cmd) {
	case "bar":
		cmdBar(player, strings.TrimSpace(args), deps)
	default:
		sendError(player, "Unknown command. "+barUsage)
	}
	return true
}

// cmdBar handles /bar. A bar set here pins the player so the rotation stops
// overwriting it; /bar auto hands the bar back to the rotation.
func cmdBar(player *world.PlayerInfo, args string, deps *Deps) {
	first, rest, _ := strings.Cut(args, " ")
	switch strings.ToLower(first) {
	case "":
		sendMessage(player, barUsage, "gray")
		return
	case "clear":
		deps.Bars.Remove(player)
		player.BarPinned = true
		sendMessage(player, "Bar cleared. /bar auto brings the announcements back.", "gray")
		return
	case "auto":
		player.BarPinned = false
		sendMessage(player, "Bar follows the server announcements again.", "gray")
		return
	}

	fraction, err := parseFraction(first)
	if err != nil {
		sendError(player, fmt.Sprintf("%q is not a number. %s", first, barUsage))
		return
	}
	text := strings.TrimSpace(rest)
	if text == "" {
		sendError(player, barUsage)
		return
	}

	if err := deps.Bars.Show(player, text, fraction); err != nil {
		var verr *bossbar.ValidationError
		if errors.As(err, &verr) {
			sendError(player, verr.Error())
			return
		}
		deps.Log.Error("show bar", zap.String("player", player.Name), zap.Error(err))
		return
	}
	player.BarPinned = true
}

// parseFraction accepts "0.25" as well as "25%".
func parseFraction(s string) (float64, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, err
		}
		return v / 100, nil
	}
	return strconv.ParseFloat(s, 64)
}
