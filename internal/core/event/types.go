package event

import "github.com/google/uuid"

// PlayerJoined is emitted once a player finishes login and enters play state.
type PlayerJoined struct {
	PlayerID  uuid.UUID
	Name      string
	SessionID uint64
}

// PlayerDisconnected is emitted after a player's session closed and the
// player was removed from the world. The connection is already gone, so
// handlers must not try to send packets to it.
type PlayerDisconnected struct {
	PlayerID  uuid.UUID
	Name      string
	SessionID uint64
}
