package world

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/witherbar/server/internal/bossbar"
	"github.com/witherbar/server/internal/net"
)

var errNoSession = errors.New("player has no session")

// PlayerInfo holds in-memory data for a player currently in-world.
// Identity fields are fixed at join. Position and look are written by the
// movement handlers and read by the bar service, so they sit behind mu.
type PlayerInfo struct {
	SessionID uint64
	Session   *net.Session
	ID        uuid.UUID // offline-mode UUID derived from the name
	Name      string
	EntityID  int32 // real entity id, counted up from 1

	mu       sync.RWMutex
	x, y, z  float64
	yaw      float32
	pitch    float32
	onGround bool

	// Keep-alive bookkeeping, game loop only.
	KeepAliveID     int32 // id of the probe awaiting an answer, 0 = none
	KeepAliveSentAt int64 // tick the pending probe was sent
	LastKeepAlive   int64 // tick of the last answered probe

	// BarPinned is set once the player chose a bar with /bar or a script did.
	// The rotation leaves pinned players alone. Game loop only.
	BarPinned bool
}

// UUID implements bossbar.Viewer.
func (p *PlayerInfo) UUID() uuid.UUID { return p.ID }

// Location implements bossbar.Viewer.
func (p *PlayerInfo) Location() bossbar.Location {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return bossbar.Location{X: p.x, Y: p.y, Z: p.z, Yaw: p.yaw, Pitch: p.pitch}
}

// Send implements bossbar.Viewer by buffering the packet on the session.
func (p *PlayerInfo) Send(data []byte) error {
	if p.Session == nil {
		return errNoSession
	}
	return p.Session.Send(data)
}

// SetPosition records a position update from the client.
func (p *PlayerInfo) SetPosition(x, y, z float64, onGround bool) {
	p.mu.Lock()
	p.x, p.y, p.z = x, y, z
	p.onGround = onGround
	p.mu.Unlock()
}

// SetLook records a rotation update from the client.
func (p *PlayerInfo) SetLook(yaw, pitch float32, onGround bool) {
	p.mu.Lock()
	p.yaw, p.pitch = yaw, pitch
	p.onGround = onGround
	p.mu.Unlock()
}

// SetOnGround records the ground flag of a bare Player packet.
func (p *PlayerInfo) SetOnGround(onGround bool) {
	p.mu.Lock()
	p.onGround = onGround
	p.mu.Unlock()
}

func (p *PlayerInfo) OnGround() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.onGround
}

// State tracks all players currently in-world. Most access comes from the
// game loop, but scripts and the bar service may look players up from other
// goroutines, so the maps are guarded.
type State struct {
	mu        sync.RWMutex
	bySession map[uint64]*PlayerInfo    // SessionID → PlayerInfo
	byID      map[uuid.UUID]*PlayerInfo // UUID → PlayerInfo
	byName    map[string]*PlayerInfo    // lowercased name → PlayerInfo

	nextEntityID atomic.Int32
}

func NewState() *State {
	return &State{
		bySession: make(map[uint64]*PlayerInfo),
		byID:      make(map[uuid.UUID]*PlayerInfo),
		byName:    make(map[string]*PlayerInfo),
	}
}

// NextEntityID returns a fresh positive entity id for a real player. Bar
// entities live far below zero, so the two ranges never meet.
func (s *State) NextEntityID() int32 {
	return s.nextEntityID.Add(1)
}

// AddPlayer registers a player in the world.
func (s *State) AddPlayer(p *PlayerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySession[p.SessionID] = p
	s.byID[p.ID] = p
	s.byName[strings.ToLower(p.Name)] = p
}

// RemovePlayer removes a player from the world.
func (s *State) RemovePlayer(sessionID uint64) *PlayerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	delete(s.bySession, sessionID)
	// A relog may already have replaced the UUID and name entries.
	if s.byID[p.ID] == p {
		delete(s.byID, p.ID)
	}
	if key := strings.ToLower(p.Name); s.byName[key] == p {
		delete(s.byName, key)
	}
	return p
}

// GetBySession returns a player by session ID.
func (s *State) GetBySession(sessionID uint64) *PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bySession[sessionID]
}

// GetByID returns a player by UUID.
func (s *State) GetByID(id uuid.UUID) *PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

// GetByName returns a player by name, ignoring case.
func (s *State) GetByName(name string) *PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byName[strings.ToLower(name)]
}

// PlayerCount returns the number of players in-world.
func (s *State) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySession)
}

// AllPlayers iterates a snapshot of all in-world players. fn may add or
// remove players.
func (s *State) AllPlayers(fn func(*PlayerInfo)) {
	s.mu.RLock()
	players := make([]*PlayerInfo, 0, len(s.bySession))
	for _, p := range s.bySession {
		players = append(players, p)
	}
	s.mu.RUnlock()

	for _, p := range players {
		fn(p)
	}
}

// Viewer implements bossbar.Directory.
func (s *State) Viewer(id uuid.UUID) (bossbar.Viewer, bool) {
	p := s.GetByID(id)
	if p == nil {
		return nil, false
	}
	return p, true
}
