package net

// SessionStore holds the live sessions known to the game loop.
// Accessed only from the game loop goroutine.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session, 64)}
}

func (st *SessionStore) Add(sess *Session) {
	st.sessions[sess.ID] = sess
}

func (st *SessionStore) Remove(id uint64) {
	delete(st.sessions, id)
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.sessions[id]
}

func (st *SessionStore) Count() int {
	return len(st.sessions)
}

// ForEach calls fn for every stored session.
func (st *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range st.sessions {
		fn(sess)
	}
}

// Raw exposes the underlying map for callers that delete while iterating.
func (st *SessionStore) Raw() map[uint64]*Session {
	return st.sessions
}
