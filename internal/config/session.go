package config

import "github.com/google/uuid"

// User identifies the person logged into the session.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// Session tracks the readiness and identity flags of one chat session. It
// is mutated only from the single dispatch flow, so no locking is applied.
type Session struct {
	id       string
	ready    bool
	firstUse bool
	user     *User
}

// NewSession creates a fresh, unauthenticated session.
func NewSession() *Session {
	return &Session{id: uuid.NewString(), firstUse: true}
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Ready reports whether the remote service was reachable on the last check.
func (s *Session) Ready() bool { return s.ready }

// SetReady records the outcome of the last health check.
func (s *Session) SetReady(ready bool) { s.ready = ready }

// Logged reports whether a user identity is associated with the session.
func (s *Session) Logged() bool { return s.user != nil }

// FirstUse reports whether no user ever logged into this session.
func (s *Session) FirstUse() bool { return s.firstUse }

// User returns the current user, or nil when nobody is logged in.
func (s *Session) User() *User { return s.user }

// SetUser associates a user identity with the session.
func (s *Session) SetUser(u *User) {
	s.user = u
	if u != nil {
		s.firstUse = false
	}
}

// Logout clears the session identity.
func (s *Session) Logout() { s.user = nil }

// UserDisplayName returns the display name of the logged user, or "".
func (s *Session) UserDisplayName() string {
	if s.user == nil {
		return ""
	}
	return s.user.DisplayName
}
