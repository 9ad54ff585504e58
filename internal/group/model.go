package group

import (
	"slices"

	"github.com/notepid/campus_connect/internal/api"
)

// Visibility controls whether a group shows up in browse and search.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Size limits the forms enforce.
const (
	MinSize     = 2
	MaxSize     = 50
	DefaultSize = 10
)

// Group is the client's copy of a study group.
type Group struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	CourseName     string        `json:"courseName"`
	CourseCode     string        `json:"courseCode"`
	Topic          string        `json:"topic"`
	MaxSize        int           `json:"maxSize"`
	CurrentSize    int           `json:"currentSize"`
	CreatorID      int64         `json:"creatorId"`
	CreatorName    string        `json:"creatorName"`
	MemberIDs      []int64       `json:"memberIds"`
	Status         string        `json:"status"`
	Visibility     Visibility    `json:"visibility"`
	RequiresInvite bool          `json:"requiresInvite"`
	CreatedAt      api.Timestamp `json:"createdAt"`
}

// IsMember reports whether userID is in the member list.
func (g *Group) IsMember(userID int64) bool {
	return userID != 0 && slices.Contains(g.MemberIDs, userID)
}

// IsCreator reports whether userID created the group.
func (g *Group) IsCreator(userID int64) bool {
	return userID != 0 && g.CreatorID == userID
}

// Full reports whether the group has no free seats.
func (g *Group) Full() bool {
	return g.MaxSize > 0 && g.CurrentSize >= g.MaxSize
}

// PrivacyLabel describes visibility and join policy together.
func (g *Group) PrivacyLabel() string {
	if g.Visibility == VisibilityPrivate {
		if g.RequiresInvite {
			return "Private - Invite Only"
		}
		return "Private - Direct Join"
	}
	if g.RequiresInvite {
		return "Public - Invite Only"
	}
	return "Public - Open Join"
}

// CourseLabel renders "Course Name (CODE)".
func (g *Group) CourseLabel() string {
	if g.CourseCode == "" {
		return g.CourseName
	}
	return g.CourseName + " (" + g.CourseCode + ")"
}

// RequestStatus is the state of a join request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// JoinRequest is a pending approval record for an invite-gated group.
type JoinRequest struct {
	ID        int64         `json:"id"`
	Status    RequestStatus `json:"status"`
	Message   string        `json:"message"`
	CreatedAt api.Timestamp `json:"createdAt"`
	Group     *Group        `json:"group,omitempty"`
}

// Course is an entry of the course catalog.
type Course struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}
