package packet

import (
	"bytes"
	"encoding/json"
)

// ChatMessage is a JSON chat component.
type ChatMessage struct {
	Text  string        `json:"text"`
	Color string        `json:"color,omitempty"`
	Bold  bool          `json:"bold,omitempty"`
	Extra []ChatMessage `json:"extra,omitempty"`
}

// JSON serializes the component without HTML escaping, so "<name>" stays
// readable on the wire. Encoding a struct of strings cannot fail.
func (m ChatMessage) JSON() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(m)
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// Chat positions for S_OPCODE_CHAT.
const (
	ChatPositionChat   byte = 0
	ChatPositionSystem byte = 1
	ChatPositionHotbar byte = 2
)

func BuildStatusResponse(statusJSON string) []byte {
	w := NewWriterWithID(S_OPCODE_STATUS_RESPONSE)
	w.WriteString(statusJSON)
	return w.Bytes()
}

func BuildStatusPong(payload int64) []byte {
	w := NewWriterWithID(S_OPCODE_STATUS_PONG)
	w.WriteInt64(payload)
	return w.Bytes()
}

// BuildLoginSuccess builds the login success packet; the UUID is sent in its
// hyphenated text form.
func BuildLoginSuccess(uuid, name string) []byte {
	w := NewWriterWithID(S_OPCODE_LOGIN_SUCCESS)
	w.WriteString(uuid)
	w.WriteString(name)
	return w.Bytes()
}

// BuildSetCompression announces the compressed frame format. Packets of at
// least threshold bytes are deflated from the next frame on.
func BuildSetCompression(threshold int32) []byte {
	w := NewWriterWithID(S_OPCODE_SET_COMPRESSION)
	w.WriteVarInt(threshold)
	return w.Bytes()
}

func BuildLoginDisconnect(reason ChatMessage) []byte {
	w := NewWriterWithID(S_OPCODE_LOGIN_DISCONNECT)
	w.WriteString(reason.JSON())
	return w.Bytes()
}

// JoinGame carries the fields of S_OPCODE_JOIN_GAME.
type JoinGame struct {
	EntityID   int32
	GameMode   uint8
	Dimension  int8
	Difficulty uint8
	MaxPlayers uint8
	LevelType  string
}

func BuildJoinGame(j JoinGame) []byte {
	w := NewWriterWithID(S_OPCODE_JOIN_GAME)
	w.WriteInt32(j.EntityID)
	w.WriteUint8(j.GameMode)
	w.WriteInt8(j.Dimension)
	w.WriteUint8(j.Difficulty)
	w.WriteUint8(j.MaxPlayers)
	w.WriteString(j.LevelType)
	w.WriteBool(false) // reduced debug info
	return w.Bytes()
}

func BuildSpawnPosition(x, y, z int32) []byte {
	w := NewWriterWithID(S_OPCODE_SPAWN_POSITION)
	w.WritePosition(x, y, z)
	return w.Bytes()
}

// Player ability flags.
const (
	AbilityInvulnerable byte = 0x01
	AbilityFlying       byte = 0x02
	AbilityAllowFlying  byte = 0x04
	AbilityCreative     byte = 0x08
)

func BuildPlayerAbilities(flags byte, flySpeed, walkSpeed float32) []byte {
	w := NewWriterWithID(S_OPCODE_PLAYER_ABILITIES)
	w.WriteUint8(flags)
	w.WriteFloat32(flySpeed)
	w.WriteFloat32(walkSpeed)
	return w.Bytes()
}

// BuildPositionAndLook builds an absolute S_OPCODE_POSITION_AND_LOOK.
func BuildPositionAndLook(x, y, z float64, yaw, pitch float32) []byte {
	w := NewWriterWithID(S_OPCODE_POSITION_AND_LOOK)
	w.WriteFloat64(x)
	w.WriteFloat64(y)
	w.WriteFloat64(z)
	w.WriteFloat32(yaw)
	w.WriteFloat32(pitch)
	w.WriteUint8(0) // all fields absolute
	return w.Bytes()
}

func BuildKeepAlive(id int32) []byte {
	w := NewWriterWithID(S_OPCODE_KEEP_ALIVE)
	w.WriteVarInt(id)
	return w.Bytes()
}

func BuildChat(msg ChatMessage, position byte) []byte {
	w := NewWriterWithID(S_OPCODE_CHAT)
	w.WriteString(msg.JSON())
	w.WriteUint8(position)
	return w.Bytes()
}

func BuildDisconnect(reason ChatMessage) []byte {
	w := NewWriterWithID(S_OPCODE_DISCONNECT)
	w.WriteString(reason.JSON())
	return w.Bytes()
}
