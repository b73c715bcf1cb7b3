package packet

// Packet IDs for protocol 47 (Minecraft 1.8.x). IDs are only unique within a
// session state, so the same number appears under several states.

const ProtocolVersion = 47

// Handshaking, serverbound.
const (
	C_OPCODE_HANDSHAKE int32 = 0x00
)

// Status.
const (
	C_OPCODE_STATUS_REQUEST int32 = 0x00
	C_OPCODE_STATUS_PING    int32 = 0x01

	S_OPCODE_STATUS_RESPONSE int32 = 0x00
	S_OPCODE_STATUS_PONG     int32 = 0x01
)

// Login.
const (
	C_OPCODE_LOGIN_START int32 = 0x00

	S_OPCODE_LOGIN_DISCONNECT int32 = 0x00
	S_OPCODE_LOGIN_SUCCESS    int32 = 0x02
	S_OPCODE_SET_COMPRESSION  int32 = 0x03
)

// Play, serverbound.
const (
	C_OPCODE_KEEP_ALIVE         int32 = 0x00
	C_OPCODE_CHAT               int32 = 0x01
	C_OPCODE_PLAYER             int32 = 0x03
	C_OPCODE_PLAYER_POSITION    int32 = 0x04
	C_OPCODE_PLAYER_LOOK        int32 = 0x05
	C_OPCODE_PLAYER_POSITION_LK int32 = 0x06
)

// Play, clientbound.
const (
	S_OPCODE_KEEP_ALIVE        int32 = 0x00
	S_OPCODE_JOIN_GAME         int32 = 0x01
	S_OPCODE_CHAT              int32 = 0x02
	S_OPCODE_SPAWN_POSITION    int32 = 0x05
	S_OPCODE_POSITION_AND_LOOK int32 = 0x08
	S_OPCODE_SPAWN_MOB         int32 = 0x0F
	S_OPCODE_DESTROY_ENTITIES  int32 = 0x13
	S_OPCODE_ENTITY_TELEPORT   int32 = 0x18
	S_OPCODE_ENTITY_METADATA   int32 = 0x1C
	S_OPCODE_PLAYER_ABILITIES  int32 = 0x39
	S_OPCODE_DISCONNECT        int32 = 0x40
)

// Mob type IDs used with S_OPCODE_SPAWN_MOB.
const (
	MobEnderDragon byte = 63
	MobWither      byte = 64
)
