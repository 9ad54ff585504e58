// Package session holds the signed-in identity and its bearer token.
package session

import (
	"fmt"
	"sync"

	"github.com/notepid/campus_connect/internal/db"
	"github.com/notepid/campus_connect/internal/user"
)

// Store is the current session. It is created at startup, changed only by
// login and logout, and read by the API client on every request.
type Store struct {
	db     *db.DB
	origin string

	mu    sync.RWMutex
	token string
	user  *user.User
}

// NewStore creates an empty session bound to one backend origin. database may
// be nil, in which case nothing is persisted.
func NewStore(database *db.DB, origin string) *Store {
	return &Store{db: database, origin: origin}
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, or nil.
func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// UserID returns the signed-in user's id, or 0.
func (s *Store) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

// LoggedIn reports whether a user is signed in.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Set stores token and u in memory and persists them.
func (s *Store) Set(token string, u *user.User) error {
	s.mu.Lock()
	s.token = token
	s.user = u
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	saved := &db.SavedSession{Token: token, Origin: s.origin}
	if u != nil {
		saved.UserID = u.ID
		saved.Username = u.Username
	}
	if err := s.db.SaveSession(saved); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SetUser replaces the cached user after a profile update.
func (s *Store) SetUser(u *user.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// setPending holds a token in memory only, so the follow-up identity call is
// authenticated before anything is persisted.
func (s *Store) setPending(token string) {
	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()
}

// Clear forgets the session in memory and on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// saved returns the persisted session for this origin, or nil.
func (s *Store) saved() (*db.SavedSession, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.LoadSession()
}
