package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/notepid/campus_connect/internal/api"
	"github.com/notepid/campus_connect/internal/user"
)

// ErrNoSession is returned by Restore when there is nothing to resume.
var ErrNoSession = errors.New("no saved session")

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Major     string `json:"major,omitempty"`
}

// Validate checks the required fields.
func (r *RegisterRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Username) == "":
		return fmt.Errorf("username is required")
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("email is required")
	case r.Password == "":
		return fmt.Errorf("password is required")
	case strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "":
		return fmt.Errorf("first and last name are required")
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is what both auth endpoints return.
type authResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Service runs the login, registration, logout and resume flows.
type Service struct {
	store *Store
	api   *api.Client
	users *user.Repo
	now   func() time.Time
}

// NewService creates the auth flows over store.
func NewService(store *Store, client *api.Client, users *user.Repo) *Service {
	return &Service{store: store, api: client, users: users, now: time.Now}
}

// Store returns the session the service writes to.
func (s *Service) Store() *Store { return s.store }

// Login exchanges credentials for a token and loads the identity it belongs to.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	return s.authenticate(ctx, "/api/auth/login", credentials{Email: email, Password: password})
}

// Register creates an account and signs in with it.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "/api/auth/register", req)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*user.User, error) {
	var resp authResponse
	if err := s.api.Post(ctx, path, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if resp.Token == "" {
		return nil, &api.Error{Kind: api.KindAmbiguous, Status: http.StatusOK, Err: fmt.Errorf("%s: response has no token", path)}
	}

	s.store.setPending(resp.Token)
	u, err := s.users.Me(ctx)
	if err != nil {
		if cerr := s.store.Clear(); cerr != nil {
			log.Printf("session: %v", cerr)
		}
		return nil, err
	}
	if err := s.store.Set(resp.Token, u); err != nil {
		// The session works for this run even if it cannot be saved.
		log.Printf("session: %v", err)
	}
	log.Printf("session: signed in as %s", u.Username)
	return u, nil
}

// Logout drops the session locally. The backend keeps no session state.
func (s *Service) Logout() error {
	return s.store.Clear()
}

// Restore resumes a persisted session. Tokens saved for another origin, or
// whose expiry has passed, are discarded without a network call. A token the
// server rejects is discarded too. Any other failure keeps the saved token.
func (s *Service) Restore(ctx context.Context) (*user.User, error) {
	saved, err := s.store.saved()
	if err != nil {
		return nil, err
	}
	if saved == nil || saved.Token == "" {
		return nil, ErrNoSession
	}

	if saved.Origin != "" && saved.Origin != s.api.BaseURL() {
		log.Printf("session: discarding token saved for %s", saved.Origin)
		return nil, s.discard()
	}
	if claims, err := ParseClaims(saved.Token); err == nil && claims.Expired(s.now()) {
		log.Printf("session: saved token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
		return nil, s.discard()
	}

	s.store.setPending(saved.Token)
	u, err := s.users.Me(ctx)
	if err != nil {
		if api.IsAuth(err) {
			return nil, s.discard()
		}
		s.store.setPending("")
		return nil, fmt.Errorf("restore session: %w", err)
	}
	s.store.SetUser(u)
	return u, nil
}

func (s *Service) discard() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	return ErrNoSession
}

// DescribeLogin is the text shown when Login fails.
func DescribeLogin(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Kind == api.KindNetwork:
			return api.Reason(err)
		case apiErr.Message != "":
			return apiErr.Message
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			return "Invalid email or password."
		case apiErr.Kind == api.KindServer:
			return "Server error. Please try again later."
		}
	}
	return "Login failed: " + api.Reason(err)
}

// DescribeRegister is the text shown when Register fails.
func DescribeRegister(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Kind == api.KindNetwork:
			return api.Reason(err)
		case apiErr.Message != "":
			return apiErr.Message
		case apiErr.Kind == api.KindValidation:
			return "Invalid registration data. Please check all fields."
		case apiErr.Kind == api.KindServer:
			return "Server error. Please try again later."
		}
	}
	return "Registration failed: " + api.Reason(err)
}
