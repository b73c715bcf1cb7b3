package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVarIntEncoding(t *testing.T) {
	tests := []struct {
		value int32
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteVarInt(tt.value)
		assert.Equal(t, tt.want, w.Bytes(), "encode %d", tt.value)
		assert.Equal(t, len(tt.want), VarIntSize(tt.value), "size %d", tt.value)

		r := &Reader{data: w.Bytes()}
		assert.Equal(t, tt.value, r.ReadVarInt(), "decode %d", tt.value)
		require.NoError(t, r.Err())
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader([]byte{0x05, 0x00, 0x01})
	assert.Equal(t, int32(5), r.ID())
	assert.Equal(t, int32(0), r.ReadInt32())
	assert.ErrorIs(t, r.Err(), ErrShortPacket)
	assert.Equal(t, 0, r.Remaining())
}

func TestReaderStringLimit(t *testing.T) {
	w := NewWriterWithID(C_OPCODE_CHAT)
	w.WriteString("hello world")

	r := NewReader(w.Bytes())
	assert.Equal(t, "", r.ReadString(4))
	assert.Error(t, r.Err())

	r = NewReader(w.Bytes())
	assert.Equal(t, "hello world", r.ReadString(256))
	assert.NoError(t, r.Err())
}

func TestSpawnMobLayout(t *testing.T) {
	meta := NewMetadata().
		SetByte(MetaIndexFlags, EntityFlagInvisible).
		SetByte(MetaIndexAlwaysShowName, 1).
		SetFloat(MetaIndexHealth, 150).
		SetString(MetaIndexCustomName, "§aHello")

	data := BuildSpawnMob(-2147468648, MobWither, 10.5, -3.25, 100, meta)

	r := NewReader(data)
	assert.Equal(t, S_OPCODE_SPAWN_MOB, r.ID())
	assert.Equal(t, int32(-2147468648), r.ReadVarInt())
	assert.Equal(t, MobWither, r.ReadUint8())
	assert.Equal(t, int32(336), r.ReadInt32())
	assert.Equal(t, int32(-104), r.ReadInt32())
	assert.Equal(t, int32(3200), r.ReadInt32())
	r.ReadBytes(3 + 6) // rotation + velocity

	got := r.ReadMetadata()
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
	assert.Equal(t, []byte{0, 3, 6, 2}, got.Indices())

	health, ok := got.Get(MetaIndexHealth)
	require.True(t, ok)
	assert.Equal(t, float32(150), health)
	name, _ := got.Get(MetaIndexCustomName)
	assert.Equal(t, "§aHello", name)
	flags, _ := got.Get(MetaIndexFlags)
	assert.Equal(t, EntityFlagInvisible, flags)
}

func TestMetadataReplacesIndex(t *testing.T) {
	m := NewMetadata().SetFloat(MetaIndexHealth, 1).SetFloat(MetaIndexHealth, 2)
	assert.Equal(t, 1, m.Len())
	v, _ := m.Get(MetaIndexHealth)
	assert.Equal(t, float32(2), v)
}

func TestEntityTeleportAndDestroy(t *testing.T) {
	r := NewReader(BuildEntityTeleport(42, -1.5, 64, 0.01, 0, 0, false))
	assert.Equal(t, S_OPCODE_ENTITY_TELEPORT, r.ID())
	assert.Equal(t, int32(42), r.ReadVarInt())
	assert.Equal(t, int32(-48), r.ReadInt32())
	assert.Equal(t, int32(2048), r.ReadInt32())
	assert.Equal(t, int32(0), r.ReadInt32())
	r.ReadBytes(3)
	assert.Equal(t, 0, r.Remaining())

	r = NewReader(BuildDestroyEntities(7, -9))
	assert.Equal(t, S_OPCODE_DESTROY_ENTITIES, r.ID())
	assert.Equal(t, int32(2), r.ReadVarInt())
	assert.Equal(t, int32(7), r.ReadVarInt())
	assert.Equal(t, int32(-9), r.ReadVarInt())
	assert.NoError(t, r.Err())
}

func TestFixedPointTruncates(t *testing.T) {
	assert.Equal(t, int32(32), FixedPoint(1.03))
	assert.Equal(t, int32(-32), FixedPoint(-1.03))
	assert.Equal(t, int32(0), FixedPoint(0.02))
}

func TestRegistryDispatchByState(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	var handshake, login int
	reg.Register(StateHandshake, 0x00, func(_ any, _ *Reader) { handshake++ })
	reg.Register(StateLogin, 0x00, func(_ any, _ *Reader) { login++ })

	pkt := NewWriterWithID(0x00).Bytes()
	require.NoError(t, reg.Dispatch(nil, StateLogin, pkt))
	assert.Equal(t, 0, handshake)
	assert.Equal(t, 1, login)

	// unknown pairs are ignored
	require.NoError(t, reg.Dispatch(nil, StatePlay, pkt))
	assert.True(t, reg.Handles(StateHandshake, 0x00))
	assert.False(t, reg.Handles(StatePlay, 0x00))

	assert.Error(t, reg.Dispatch(nil, StatePlay, nil))
}

func TestRegistryRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(StatePlay, C_OPCODE_CHAT, func(_ any, _ *Reader) { panic("boom") })

	err := reg.Dispatch(nil, StatePlay, NewWriterWithID(C_OPCODE_CHAT).Bytes())
	assert.ErrorContains(t, err, "boom")
}

func TestChatMessageJSON(t *testing.T) {
	m := ChatMessage{Text: "<Steve> hi", Color: "red"}
	assert.Equal(t, `{"text":"<Steve> hi","color":"red"}`, m.JSON())

	r := NewReader(BuildChat(m, ChatPositionSystem))
	assert.Equal(t, S_OPCODE_CHAT, r.ID())
	assert.Equal(t, m.JSON(), r.ReadString(1024))
	assert.Equal(t, ChatPositionSystem, r.ReadUint8())
}
