package client

import "sync"

// Session holds the authenticated identity for the life of a client. It is
// an owned object handed to the components that need it, never a package
// global. Last write wins on concurrent creates.
type Session struct {
	mu       sync.Mutex
	username string
	tenant   string
}

// NewSession creates an empty, unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// Create stores the identity of a logged-in user.
func (s *Session) Create(username, tenant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.tenant = tenant
}

// Destroy clears the session unconditionally.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	s.tenant = ""
}

// IsAuthenticated reports whether a username is currently held. It is a
// local check only, not a guarantee the server still honors the session.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username != ""
}

// Username returns the held username, or "".
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Tenant returns the held tenant, or "".
func (s *Session) Tenant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenant
}
