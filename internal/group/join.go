package group

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/notepid/campus_connect/internal/api"
)

// ErrAmbiguousJoin is returned when a join response is neither a group nor a
// join request. It must never be treated as success.
var ErrAmbiguousJoin = errors.New("join response is neither a group nor a join request")

// JoinKind tags a JoinResult.
type JoinKind int

const (
	// Joined means the user is now a member.
	Joined JoinKind = iota + 1
	// Pending means a join request awaits admin approval.
	Pending
)

func (k JoinKind) String() string {
	switch k {
	case Joined:
		return "joined"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// JoinResult is the normalized answer of POST /api/groups/{id}/join.
// Exactly one of Group and Request is set, matching Kind.
type JoinResult struct {
	Kind    JoinKind
	Group   *Group
	Request *JoinRequest
}

// DecodeJoin normalizes the two response shapes of the join endpoint.
// A body carrying both a non-null id and a non-empty name is a group record.
// This is checked first because group records also carry a status field.
// Otherwise a body with a status is a join request.
func DecodeJoin(body []byte) (JoinResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return JoinResult{}, ambiguous(fmt.Errorf("%w: %v", ErrAmbiguousJoin, err))
	}

	if present(fields["id"]) && nonEmptyString(fields["name"]) {
		g := &Group{}
		if err := json.Unmarshal(body, g); err != nil {
			return JoinResult{}, ambiguous(fmt.Errorf("%w: decode group: %v", ErrAmbiguousJoin, err))
		}
		return JoinResult{Kind: Joined, Group: g}, nil
	}

	if present(fields["status"]) {
		req := &JoinRequest{}
		if err := json.Unmarshal(body, req); err != nil {
			return JoinResult{}, ambiguous(fmt.Errorf("%w: decode request: %v", ErrAmbiguousJoin, err))
		}
		return JoinResult{Kind: Pending, Request: req}, nil
	}

	return JoinResult{}, ambiguous(ErrAmbiguousJoin)
}

func ambiguous(err error) error {
	return &api.Error{Kind: api.KindAmbiguous, Status: http.StatusOK, Err: err}
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func nonEmptyString(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s != ""
}

// Action is what the viewer can do with a group.
type Action int

const (
	ActionNone Action = iota
	// ActionJoin joins directly.
	ActionJoin
	// ActionRequest sends a join request for admin review.
	ActionRequest
	// ActionLeave is offered to members who did not create the group.
	ActionLeave
	// ActionManage is offered to the creator (edit, delete).
	ActionManage
)

// Affordance describes the join control for a viewer.
type Affordance struct {
	Action Action
	Label  string
	// Confirm is set when the action should be confirmed before sending.
	Confirm string
}

// AffordanceFor derives the control a viewer sees. A full group cannot accept a
// direct join, so it is offered the same request path as an invite-only group.
func AffordanceFor(g *Group, viewerID int64) Affordance {
	switch {
	case viewerID == 0:
		return Affordance{Action: ActionNone, Label: "Log in to join"}
	case g.IsCreator(viewerID):
		return Affordance{Action: ActionManage, Label: "Edit Group"}
	case g.IsMember(viewerID):
		return Affordance{Action: ActionLeave, Label: "Leave Group", Confirm: "Are you sure you want to leave this group?"}
	case g.RequiresInvite:
		return Affordance{Action: ActionRequest, Label: "Request to Join", Confirm: "This group requires approval. Send a join request?"}
	case g.Full():
		return Affordance{Action: ActionRequest, Label: "Request to Join", Confirm: "This group is full. Send a join request?"}
	case g.Visibility == VisibilityPrivate:
		return Affordance{Action: ActionJoin, Label: "Join Group (Private)"}
	default:
		return Affordance{Action: ActionJoin, Label: "Join Group"}
	}
}

// Notice is the text shown after a join call succeeds. It is empty for a
// direct join to an open group, which completes silently.
func (r JoinResult) Notice(requiresInvite bool) string {
	switch r.Kind {
	case Joined:
		if requiresInvite {
			return "Successfully joined the group!"
		}
		return ""
	case Pending:
		return "Join request sent! The group admin will review your request."
	default:
		return ""
	}
}
