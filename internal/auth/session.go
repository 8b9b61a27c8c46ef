package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/foyer/internal/model"
)

// Session is one device's view of the household: which member is active
// and whether a parent has unlocked it. Sessions do not expire.
type Session struct {
	Token               string    `json:"token"`
	Member              string    `json:"member,omitempty"`
	ParentAuthenticated bool      `json:"parent_authenticated"`
	CreatedAt           time.Time `json:"created_at"`
}

type Sessions struct {
	mu       sync.RWMutex
	items    map[string]*Session
	verifier *Verifier
}

func NewSessions(v *Verifier) *Sessions {
	return &Sessions{items: make(map[string]*Session), verifier: v}
}

func (s *Sessions) Create() Session {
	sess := &Session{Token: uuid.NewString(), CreatedAt: time.Now().UTC()}
	s.mu.Lock()
	s.items[sess.Token] = sess
	s.mu.Unlock()
	return *sess
}

func (s *Sessions) Get(token string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.items[token]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Authenticate unlocks parent actions for the session. A wrong code leaves
// the session as it was.
func (s *Sessions) Authenticate(token, code string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[token]
	if !ok {
		return Session{}, &model.NotFoundError{Kind: "session", Key: token}
	}
	if !s.verifier.VerifyParentCode(code) {
		return *sess, &model.AuthenticationError{}
	}
	sess.ParentAuthenticated = true
	return *sess, nil
}

// Logout locks parent actions again. The active member is kept.
func (s *Sessions) Logout(token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[token]
	if !ok {
		return Session{}, &model.NotFoundError{Kind: "session", Key: token}
	}
	sess.ParentAuthenticated = false
	return *sess, nil
}

func (s *Sessions) SetMember(token, member string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[token]
	if !ok {
		return Session{}, &model.NotFoundError{Kind: "session", Key: token}
	}
	sess.Member = member
	return *sess, nil
}

// RenameMember follows a roster rename in every session.
func (s *Sessions) RenameMember(oldName, newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.items {
		if sess.Member == oldName {
			sess.Member = newName
		}
	}
}
