package cmdHandlers

import (
	"sync"
	"time"

	"github.com/ilinovom/linkvault-bot/internal/model"
)

// Session is the in-flight conversation of one operator. A user without a
// session is idle.
type Session struct {
	State      convState
	Items      []model.ContentItem
	Title      string
	SettingKey string

	touched time.Time
}

// SessionStore keeps conversations keyed by user id. Get returns a copy;
// callers write changes back with Put.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[int64]*Session{}, now: time.Now}
}

func (s *SessionStore) Get(userID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	out := *cur
	out.Items = append([]model.ContentItem(nil), cur.Items...)
	return out, true
}

// Put stores sess for userID, replacing any existing session, and refreshes
// its idle timer.
func (s *SessionStore) Put(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.touched = s.now()
	s.sessions[userID] = &sess
}

// Delete drops the session and reports whether one existed.
func (s *SessionStore) Delete(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// Sweep removes sessions untouched for longer than ttl and returns how many
// were removed.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
