package bossbar

import (
	"sync"

	"github.com/google/uuid"
)

type barEntry struct {
	entityID    int32
	lastRefresh int64
}

// Registry maps a player to the fake entity that renders their bar and the
// tick it was last repositioned. An entry exists exactly while a bar entity is
// alive on that player's client. All methods are safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	bars map[uuid.UUID]barEntry
}

func NewRegistry() *Registry {
	return &Registry{bars: make(map[uuid.UUID]barEntry, 64)}
}

func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bars[id]
	return ok
}

// Put creates or overwrites the entity id for a player. An existing refresh
// tick is kept; new entries start at tick 0 until Touch is called.
func (r *Registry) Put(id uuid.UUID, entityID int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.bars[id]
	e.entityID = entityID
	r.bars[id] = e
}

func (r *Registry) Get(id uuid.UUID) (int32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.bars[id]
	return e.entityID, ok
}

// Remove drops the entity id and refresh tick. Removing an absent player is a
// no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bars, id)
}

// Touch records the tick of the latest reposition. It returns false and does
// nothing if the player has no entry.
func (r *Registry) Touch(id uuid.UUID, tick int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.bars[id]
	if !ok {
		return false
	}
	e.lastRefresh = tick
	r.bars[id] = e
	return true
}

func (r *Registry) LastRefresh(id uuid.UUID) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.bars[id]
	return e.lastRefresh, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bars)
}

// ForEach calls fn for a snapshot of the current entries. The lock is not held
// during the callbacks, so fn may add or remove entries.
func (r *Registry) ForEach(fn func(id uuid.UUID, entityID int32)) {
	type pair struct {
		id       uuid.UUID
		entityID int32
	}

	r.mu.RLock()
	snapshot := make([]pair, 0, len(r.bars))
	for id, e := range r.bars {
		snapshot = append(snapshot, pair{id: id, entityID: e.entityID})
	}
	r.mu.RUnlock()

	for _, p := range snapshot {
		fn(p.id, p.entityID)
	}
}
