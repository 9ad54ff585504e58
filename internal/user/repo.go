package user

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/notepid/campus_connect/internal/api"
)

// Repo reads and updates users through the backend.
type Repo struct {
	api *api.Client
}

// NewRepo creates a new user repository.
func NewRepo(client *api.Client) *Repo {
	return &Repo{api: client}
}

// Me returns the authenticated user.
func (r *Repo) Me(ctx context.Context) (*User, error) {
	u := &User{}
	if err := r.api.Get(ctx, "/api/users/me", nil, u); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return u, nil
}

// Search finds users by name, email or username. A blank query returns nothing
// without calling the backend.
func (r *Repo) Search(ctx context.Context, query string) ([]*User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	var users []*User
	if err := r.api.Get(ctx, "/api/users/search", url.Values{"query": {query}}, &users); err != nil {
		return nil, fmt.Errorf("search users %q: %w", query, err)
	}
	return users, nil
}

// UpdateProfile sends the non-empty fields of d and returns the updated user.
func (r *Repo) UpdateProfile(ctx context.Context, d *ProfileDraft) (*User, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	u := &User{}
	if err := r.api.Put(ctx, "/api/users/me", d.Values(), nil, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
