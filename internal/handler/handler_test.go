package handler

import (
	"encoding/json"
	stdnet "net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/config"
	"github.com/witherbar/server/internal/core/event"
	"github.com/witherbar/server/internal/net"
	"github.com/witherbar/server/internal/net/packet"
	"github.com/witherbar/server/internal/world"
	"go.uber.org/zap"
)

type tickCounter struct{ now int64 }

func (t *tickCounter) CurrentTick() int64 { return t.now }

type harness struct {
	deps   *Deps
	ticks  *tickCounter
	nextID uint64
	joined []event.PlayerJoined
}

func newHarness() *harness {
	cfg := config.Default()
	ws := world.NewState()
	ticks := &tickCounter{now: 1}
	log := zap.NewNop()
	bus := event.NewBus()

	h := &harness{ticks: ticks}
	event.Subscribe(bus, func(ev event.PlayerJoined) { h.joined = append(h.joined, ev) })
	h.deps = &Deps{
		Config: cfg,
		Log:    log,
		World:  ws,
		Bars:   bossbar.NewService(cfg.BossBar, ws, ticks, log),
		Bus:    bus,
		Ticks:  ticks,
	}
	return h
}

func (h *harness) newSession(t *testing.T) *net.Session {
	t.Helper()
	client, server := stdnet.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	h.nextID++
	return net.NewSession(server, h.nextID, h.deps.Config.Network, 0, zap.NewNop())
}

// login runs the login handler for name and discards the join sequence.
func (h *harness) login(t *testing.T, name string) (*net.Session, *world.PlayerInfo) {
	t.Helper()
	sess := h.newSession(t)
	sess.Protocol = packet.ProtocolVersion
	sess.SetState(packet.StateLogin)
	HandleLoginStart(sess, loginStart(name), h.deps)
	p := h.deps.World.GetBySession(sess.ID)
	require.NotNil(t, p)
	sent(sess)
	return sess, p
}

func (h *harness) dispatchEvents() {
	h.deps.Bus.SwapBuffers()
	h.deps.Bus.DispatchAll()
}

// sent flushes sess and returns a reader for every packet it queued.
func sent(sess *net.Session) []*packet.Reader {
	sess.FlushOutput()
	var out []*packet.Reader
	for {
		select {
		case data := <-sess.OutQueue:
			if len(data) == 0 {
				continue // close or compression marker
			}
			out = append(out, packet.NewReader(data))
		default:
			return out
		}
	}
}

func packetIDs(rs []*packet.Reader) []int32 {
	ids := make([]int32, len(rs))
	for i, r := range rs {
		ids[i] = r.ID()
	}
	return ids
}

func build(id int32, fill func(w *packet.Writer)) *packet.Reader {
	w := packet.NewWriterWithID(id)
	fill(w)
	return packet.NewReader(w.Bytes())
}

func handshake(protocol, next int32) *packet.Reader {
	return build(packet.C_OPCODE_HANDSHAKE, func(w *packet.Writer) {
		w.WriteVarInt(protocol)
		w.WriteString("localhost")
		w.WriteUint16(25565)
		w.WriteVarInt(next)
	})
}

func loginStart(name string) *packet.Reader {
	return build(packet.C_OPCODE_LOGIN_START, func(w *packet.Writer) {
		w.WriteString(name)
	})
}

func chat(text string) *packet.Reader {
	return build(packet.C_OPCODE_CHAT, func(w *packet.Writer) {
		w.WriteString(text)
	})
}

// chatText returns the JSON of a chat packet.
func chatText(t *testing.T, r *packet.Reader) string {
	t.Helper()
	require.Equal(t, packet.S_OPCODE_CHAT, r.ID())
	s := r.ReadString(1 << 16)
	require.NoError(t, r.Err())
	return s
}

func TestHandshakeStates(t *testing.T) {
	h := newHarness()

	sess := h.newSession(t)
	HandleHandshake(sess, handshake(47, 2), h.deps)
	assert.Equal(t, packet.StateLogin, sess.State())
	assert.Equal(t, int32(47), sess.Protocol)

	sess = h.newSession(t)
	HandleHandshake(sess, handshake(47, 1), h.deps)
	assert.Equal(t, packet.StateStatus, sess.State())

	sess = h.newSession(t)
	HandleHandshake(sess, handshake(47, 9), h.deps)
	assert.True(t, sess.IsClosed())
}

func TestRegistryRoutesByState(t *testing.T) {
	h := newHarness()
	reg := packet.NewRegistry(zap.NewNop())
	RegisterAll(reg, h.deps)

	sess := h.newSession(t)
	w := packet.NewWriterWithID(packet.C_OPCODE_HANDSHAKE)
	w.WriteVarInt(47)
	w.WriteString("localhost")
	w.WriteUint16(25565)
	w.WriteVarInt(2)
	require.NoError(t, reg.Dispatch(sess, sess.State(), w.Bytes()))
	assert.Equal(t, packet.StateLogin, sess.State())

	// Login start shares id 0x00 with the handshake.
	name := packet.NewWriterWithID(packet.C_OPCODE_LOGIN_START)
	name.WriteString("Steve")
	require.NoError(t, reg.Dispatch(sess, sess.State(), name.Bytes()))
	assert.Equal(t, packet.StatePlay, sess.State())
	assert.True(t, reg.Handles(packet.StatePlay, packet.C_OPCODE_PLAYER_LOOK))
}

func TestStatusRequest(t *testing.T) {
	h := newHarness()
	h.login(t, "Alex")

	sess := h.newSession(t)
	sess.SetState(packet.StateStatus)
	HandleStatusRequest(sess, nil, h.deps)

	out := sent(sess)
	require.Len(t, out, 1)
	require.Equal(t, packet.S_OPCODE_STATUS_RESPONSE, out[0].ID())

	var resp statusResponse
	require.NoError(t, json.Unmarshal([]byte(out[0].ReadString(1<<16)), &resp))
	assert.Equal(t, 47, resp.Version.Protocol)
	assert.Equal(t, VersionName, resp.Version.Name)
	assert.Equal(t, 1, resp.Players.Online)
	assert.Equal(t, h.deps.Config.Server.MaxPlayers, resp.Players.Max)
}

func TestStatusPing(t *testing.T) {
	h := newHarness()
	sess := h.newSession(t)
	sess.SetState(packet.StateStatus)

	HandleStatusPing(sess, build(packet.C_OPCODE_STATUS_PING, func(w *packet.Writer) {
		w.WriteInt64(987654321)
	}), h.deps)

	out := sent(sess)
	require.Len(t, out, 1)
	assert.Equal(t, packet.S_OPCODE_STATUS_PONG, out[0].ID())
	assert.Equal(t, int64(987654321), out[0].ReadInt64())
	assert.Equal(t, packet.StateDisconnecting, sess.State())
}

func TestOfflineUUID(t *testing.T) {
	id := OfflineUUID("Notch")
	assert.Equal(t, uuid.Version(3), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
	assert.Equal(t, id, OfflineUUID("Notch"))
	assert.NotEqual(t, id, OfflineUUID("notch"))
}

func TestLoginJoinSequence(t *testing.T) {
	h := newHarness()
	sess := h.newSession(t)
	sess.Protocol = packet.ProtocolVersion
	sess.SetState(packet.StateLogin)

	HandleLoginStart(sess, loginStart("Steve"), h.deps)

	out := sent(sess)
	assert.Equal(t, []int32{
		packet.S_OPCODE_SET_COMPRESSION,
		packet.S_OPCODE_LOGIN_SUCCESS,
		packet.S_OPCODE_JOIN_GAME,
		packet.S_OPCODE_SPAWN_POSITION,
		packet.S_OPCODE_PLAYER_ABILITIES,
		packet.S_OPCODE_POSITION_AND_LOOK,
		packet.S_OPCODE_CHAT,
	}, packetIDs(out))
	assert.Equal(t, int32(256), out[0].ReadVarInt())
	assert.Equal(t, 256, sess.Compression())
	assert.Equal(t, OfflineUUID("Steve").String(), out[1].ReadString(36))
	assert.Equal(t, "Steve", out[1].ReadString(64))

	assert.Equal(t, packet.StatePlay, sess.State())
	p := h.deps.World.GetByName("steve")
	require.NotNil(t, p)
	assert.Equal(t, OfflineUUID("Steve"), p.ID)
	assert.Greater(t, p.EntityID, int32(0))
	assert.Equal(t, bossbar.Location{X: spawnX, Y: spawnY, Z: spawnZ}, p.Location())

	joinGame := out[2]
	assert.Equal(t, p.EntityID, joinGame.ReadInt32())
	assert.Equal(t, h.deps.Config.Server.GameMode, joinGame.ReadUint8())

	h.dispatchEvents()
	require.Len(t, h.joined, 1)
	assert.Equal(t, "Steve", h.joined[0].Name)
	assert.Equal(t, p.ID, h.joined[0].PlayerID)
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name     string
		protocol int32
		player   string
	}{
		{"old client", 5, "Steve"},
		{"bad name", packet.ProtocolVersion, "no spaces"},
		{"long name", packet.ProtocolVersion, "abcdefghijklmnopq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			sess := h.newSession(t)
			sess.Protocol = tt.protocol
			sess.SetState(packet.StateLogin)

			HandleLoginStart(sess, loginStart(tt.player), h.deps)

			assert.Equal(t, []int32{packet.S_OPCODE_LOGIN_DISCONNECT}, packetIDs(sent(sess)))
			assert.Equal(t, packet.StateDisconnecting, sess.State())
			assert.Equal(t, 0, h.deps.World.PlayerCount())
		})
	}
}

func TestLoginServerFull(t *testing.T) {
	h := newHarness()
	h.deps.Config.Server.MaxPlayers = 1
	h.login(t, "First")

	sess := h.newSession(t)
	sess.Protocol = packet.ProtocolVersion
	sess.SetState(packet.StateLogin)
	HandleLoginStart(sess, loginStart("Second"), h.deps)

	out := sent(sess)
	require.Len(t, out, 1)
	assert.Equal(t, packet.S_OPCODE_LOGIN_DISCONNECT, out[0].ID())
	assert.Contains(t, out[0].ReadString(1024), "full")
}

func TestRelogKicksOldSession(t *testing.T) {
	h := newHarness()
	oldSess, old := h.login(t, "Steve")
	require.NoError(t, h.deps.Bars.Show(old, "Boss", 1))
	sent(oldSess)

	newSess, p := h.login(t, "Steve")

	assert.Equal(t, []int32{packet.S_OPCODE_DISCONNECT}, packetIDs(sent(oldSess)))
	assert.Equal(t, packet.StateDisconnecting, oldSess.State())
	assert.False(t, h.deps.Bars.Active(p.ID), "old client's bar is forgotten")
	assert.Same(t, p, h.deps.World.GetByID(OfflineUUID("Steve")))
	assert.NotEqual(t, oldSess.ID, newSess.ID)
}

func TestKeepAlive(t *testing.T) {
	h := newHarness()
	sess, p := h.login(t, "Steve")
	p.KeepAliveID = 42
	h.ticks.now = 50

	HandleKeepAlive(sess, build(packet.C_OPCODE_KEEP_ALIVE, func(w *packet.Writer) { w.WriteVarInt(7) }), h.deps)
	assert.Equal(t, int32(42), p.KeepAliveID, "wrong id is ignored")

	HandleKeepAlive(sess, build(packet.C_OPCODE_KEEP_ALIVE, func(w *packet.Writer) { w.WriteVarInt(42) }), h.deps)
	assert.Equal(t, int32(0), p.KeepAliveID)
	assert.Equal(t, int64(50), p.LastKeepAlive)
}

func TestMovementUpdatesLocation(t *testing.T) {
	h := newHarness()
	sess, p := h.login(t, "Steve")

	HandlePosition(sess, build(packet.C_OPCODE_PLAYER_POSITION, func(w *packet.Writer) {
		w.WriteFloat64(10)
		w.WriteFloat64(70)
		w.WriteFloat64(-4)
		w.WriteBool(true)
	}), h.deps)
	HandleLook(sess, build(packet.C_OPCODE_PLAYER_LOOK, func(w *packet.Writer) {
		w.WriteFloat32(45)
		w.WriteFloat32(-10)
		w.WriteBool(false)
	}), h.deps)
	assert.Equal(t, bossbar.Location{X: 10, Y: 70, Z: -4, Yaw: 45, Pitch: -10}, p.Location())
	assert.False(t, p.OnGround())

	HandlePositionLook(sess, build(packet.C_OPCODE_PLAYER_POSITION_LK, func(w *packet.Writer) {
		w.WriteFloat64(1)
		w.WriteFloat64(2)
		w.WriteFloat64(3)
		w.WriteFloat32(180)
		w.WriteFloat32(90)
		w.WriteBool(true)
	}), h.deps)
	assert.Equal(t, bossbar.Location{X: 1, Y: 2, Z: 3, Yaw: 180, Pitch: 90}, p.Location())

	HandlePlayer(sess, build(packet.C_OPCODE_PLAYER, func(w *packet.Writer) { w.WriteBool(false) }), h.deps)
	assert.False(t, p.OnGround())
}

func TestMovementRejectsBadPackets(t *testing.T) {
	h := newHarness()
	sess, p := h.login(t, "Steve")
	before := p.Location()

	// truncated
	HandlePosition(sess, build(packet.C_OPCODE_PLAYER_POSITION, func(w *packet.Writer) {
		w.WriteFloat64(10)
	}), h.deps)
	// NaN
	HandleLook(sess, build(packet.C_OPCODE_PLAYER_LOOK, func(w *packet.Writer) {
		w.WriteFloat32(float32(nan()))
		w.WriteFloat32(0)
		w.WriteBool(true)
	}), h.deps)

	assert.Equal(t, before, p.Location())
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestBarCommand(t *testing.T) {
	h := newHarness()
	sess, p := h.login(t, "Steve")

	HandleChat(sess, chat("/bar 0.5 Hello &cWorld"), h.deps)

	require.True(t, h.deps.Bars.Active(p.ID))
	assert.True(t, p.BarPinned)

	out := sent(sess)
	require.Equal(t, []int32{packet.S_OPCODE_SPAWN_MOB}, packetIDs(out))
	r := out[0]
	r.ReadVarInt()
	r.ReadUint8()
	r.ReadInt32()
	r.ReadInt32()
	r.ReadInt32()
	r.ReadBytes(9)
	meta := r.ReadMetadata()
	require.NoError(t, r.Err())
	name, _ := meta.Get(packet.MetaIndexCustomName)
	assert.Equal(t, "Hello §cWorld", name)
	health, _ := meta.Get(packet.MetaIndexHealth)
	assert.Equal(t, float32(150), health)
}

func TestBarCommandPercent(t *testing.T) {
	h := newHarness()
	sess, p := h.login(t, "Steve")

	HandleChat(sess, chat("/BAR 25% Quarter"), h.deps)
	require.True(t, h.deps.Bars.Active(p.ID))

	HandleChat(sess, chat("/bar 100% Full"), h.deps)
	assert.Equal(t, []int32{packet.S_OPCODE_SPAWN_MOB, packet.S_OPCODE_ENTITY_METADATA}, packetIDs(sent(sess)))
}

func TestBarCommandErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"/bar 2 Too much", "fraction must be between 0 and 1"},
		{"/bar -0.5 Negative", "fraction must be between 0 and 1"},
		{"/bar NaN What", "fraction must be between 0 and 1"},
		{"/bar half Text", "is not a number"},
		{"/bar 0.5", "Usage"},
		{"/bar", "Usage"},
		{"/fly", "Unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h := newHarness()
			sess, p := h.login(t, "Steve")

			HandleChat(sess, chat(tt.line), h.deps)

			assert.False(t, h.deps.Bars.Active(p.ID))
			assert.False(t, p.BarPinned)
			out := sent(sess)
			require.Len(t, out, 1)
			assert.Contains(t, chatText(t, out[0]), tt.want)
		})
	}
}

func TestBarClearAndAuto(t *testing.T) {
	h := newHarness()
	sess, p := h.login(t, "Steve")
	HandleChat(sess, chat("/bar 1 Boss"), h.deps)
	sent(sess)

	HandleChat(sess, chat("/bar clear"), h.deps)
	assert.False(t, h.deps.Bars.Active(p.ID))
	assert.True(t, p.BarPinned)
	assert.Equal(t, []int32{packet.S_OPCODE_DESTROY_ENTITIES, packet.S_OPCODE_CHAT}, packetIDs(sent(sess)))

	HandleChat(sess, chat("/bar auto"), h.deps)
	assert.False(t, p.BarPinned)
}

func TestChatBroadcast(t *testing.T) {
	h := newHarness()
	a, _ := h.login(t, "Alex")
	b, _ := h.login(t, "Steve")

	HandleChat(a, chat("  hello there "), h.deps)

	for _, sess := range []*net.Session{a, b} {
		out := sent(sess)
		require.Len(t, out, 1)
		assert.Contains(t, chatText(t, out[0]), "<Alex> hello there")
	}
}
