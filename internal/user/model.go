package user

import (
	"strings"

	"github.com/notepid/campus_connect/internal/api"
)

// Visibility controls who can see a profile.
type Visibility string

const (
	VisibilityPublic      Visibility = "PUBLIC"
	VisibilityPrivate     Visibility = "PRIVATE"
	VisibilityFriendsOnly Visibility = "FRIENDS_ONLY"
)

// SchoolYears are the values the profile form offers.
var SchoolYears = []string{"Freshman", "Sophomore", "Junior", "Senior", "Graduate"}

// User is the client's copy of a server-owned account.
type User struct {
	ID          int64         `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	Major       string        `json:"major"`
	Bio         string        `json:"bio"`
	Birthday    string        `json:"birthday"` // YYYY-MM-DD
	SchoolYear  string        `json:"schoolYear"`
	PhoneNumber string        `json:"phoneNumber"`
	Location    string        `json:"location"`
	LinkedIn    string        `json:"linkedin"`
	GitHub      string        `json:"github"`
	Interests   []string      `json:"interests"`
	Skills      []string      `json:"skills"`
	Courses     []string      `json:"courses"`
	Visibility  Visibility    `json:"visibility"`
	Role        string        `json:"role"`
	CreatedAt   api.Timestamp `json:"createdAt"`
}

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
