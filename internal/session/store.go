// Package session keeps the process-wide bearer-token sessions. Sessions live
// until logout, forced removal or process restart.
package session

import (
	"sync"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]domain.Session)}
}

// Issue stores s under a new random token.
func (st *Store) Issue(s domain.Session) string {
	token := uuid.NewString()
	st.mu.Lock()
	st.sessions[token] = s
	st.mu.Unlock()
	return token
}

func (st *Store) Get(token string) (domain.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[token]
	return s, ok
}

func (st *Store) Delete(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

// DeleteUser drops every session owned by userID.
func (st *Store) DeleteUser(userID string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for token, s := range st.sessions {
		if s.UserID == userID {
			delete(st.sessions, token)
			n++
		}
	}
	return n
}

// IsOnline reports whether userID has at least one session.
func (st *Store) IsOnline(userID string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, s := range st.sessions {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// OnlineUserIDs returns the set of users with a session.
func (st *Store) OnlineUserIDs() map[string]bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make(map[string]bool, len(st.sessions))
	for _, s := range st.sessions {
		ids[s.UserID] = true
	}
	return ids
}
