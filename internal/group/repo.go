package group

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/notepid/campus_connect/internal/api"
)

// Repo reads and mutates groups through the backend.
type Repo struct {
	api *api.Client
}

// NewRepo creates a new group repository.
func NewRepo(client *api.Client) *Repo {
	return &Repo{api: client}
}

func (r *Repo) list(ctx context.Context, path string, query url.Values) ([]*Group, error) {
	var groups []*Group
	if err := r.api.Get(ctx, path, query, &groups); err != nil {
		return nil, fmt.Errorf("list groups %s: %w", path, err)
	}
	return groups, nil
}

// List returns every group visible to the caller.
func (r *Repo) List(ctx context.Context) ([]*Group, error) {
	return r.list(ctx, "/api/groups", nil)
}

// Mine returns the groups the caller belongs to, including created ones.
func (r *Repo) Mine(ctx context.Context) ([]*Group, error) {
	return r.list(ctx, "/api/groups/my-groups", nil)
}

// Created returns the groups the caller created.
func (r *Repo) Created(ctx context.Context) ([]*Group, error) {
	return r.list(ctx, "/api/groups/my-created-groups", nil)
}

// Recommended returns groups suggested for the caller.
func (r *Repo) Recommended(ctx context.Context) ([]*Group, error) {
	return r.list(ctx, "/api/groups/recommended", nil)
}

// Search finds groups by name, course or topic. A blank query lists all groups.
func (r *Repo) Search(ctx context.Context, query string) ([]*Group, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	return r.list(ctx, "/api/groups/search", url.Values{"query": {query}})
}

// Get returns a single group.
func (r *Repo) Get(ctx context.Context, id int64) (*Group, error) {
	g := &Group{}
	if err := r.api.Get(ctx, "/api/groups/"+api.PathID(id), nil, g); err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	return g, nil
}

// Create validates d and creates a group from it.
func (r *Repo) Create(ctx context.Context, d *Draft) (*Group, error) {
	if err := d.ValidateCreate(); err != nil {
		return nil, err
	}
	g := &Group{}
	if err := r.api.Post(ctx, "/api/groups", d.Values(), nil, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

// Update validates d against the current member count and saves it.
func (r *Repo) Update(ctx context.Context, id int64, currentSize int, d *Draft) (*Group, error) {
	if err := d.ValidateEdit(currentSize); err != nil {
		return nil, err
	}
	v := d.Values()
	v.Del("invitedUserIds")
	g := &Group{}
	if err := r.api.Post(ctx, "/api/groups/"+api.PathID(id), v, nil, g); err != nil {
		return nil, fmt.Errorf("update group %d: %w", id, err)
	}
	return g, nil
}

// Delete removes a group. Only its creator may do this.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	if err := r.api.Delete(ctx, "/api/groups/"+api.PathID(id), nil); err != nil {
		return fmt.Errorf("delete group %d: %w", id, err)
	}
	return nil
}

// Join asks to join a group. The optional message is forwarded to the admin
// when the group needs approval.
func (r *Repo) Join(ctx context.Context, id int64, message string) (JoinResult, error) {
	var q url.Values
	if m := strings.TrimSpace(message); m != "" {
		q = url.Values{"message": {m}}
	}
	body, err := r.api.Raw(ctx, http.MethodPost, "/api/groups/"+api.PathID(id)+"/join", q, nil)
	if err != nil {
		return JoinResult{}, fmt.Errorf("join group %d: %w", id, err)
	}
	res, err := DecodeJoin(body)
	if err != nil {
		return JoinResult{}, fmt.Errorf("join group %d: %w", id, err)
	}
	return res, nil
}

// Leave removes the caller from a group.
func (r *Repo) Leave(ctx context.Context, id int64) error {
	if err := r.api.Post(ctx, "/api/groups/"+api.PathID(id)+"/leave", nil, nil, nil); err != nil {
		return fmt.Errorf("leave group %d: %w", id, err)
	}
	return nil
}

// Courses returns the course catalog.
func (r *Repo) Courses(ctx context.Context) ([]*Course, error) {
	var courses []*Course
	if err := r.api.Get(ctx, "/api/courses", nil, &courses); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// JoinedOnly returns mine minus created, matching by id.
func JoinedOnly(mine, created []*Group) []*Group {
	createdIDs := make(map[int64]bool, len(created))
	for _, g := range created {
		createdIDs[g.ID] = true
	}
	out := make([]*Group, 0, len(mine))
	for _, g := range mine {
		if !createdIDs[g.ID] {
			out = append(out, g)
		}
	}
	return out
}
