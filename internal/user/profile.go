package user

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ProfileDraft is the editable subset of a profile.
//
// Values only carries non-empty fields, so the backend keeps its current value
// for anything left blank. Blanking a field in the form does not clear it.
type ProfileDraft struct {
	FirstName   string
	LastName    string
	Major       string
	Bio         string
	Visibility  Visibility
	Birthday    string
	SchoolYear  string
	PhoneNumber string
	Location    string
	LinkedIn    string
	GitHub      string
}

// DraftFromUser seeds a draft with the user's current values.
func DraftFromUser(u *User) *ProfileDraft {
	d := &ProfileDraft{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Major:       u.Major,
		Bio:         u.Bio,
		Visibility:  u.Visibility,
		Birthday:    u.Birthday,
		SchoolYear:  u.SchoolYear,
		PhoneNumber: u.PhoneNumber,
		Location:    u.Location,
		LinkedIn:    u.LinkedIn,
		GitHub:      u.GitHub,
	}
	if d.Visibility == "" {
		d.Visibility = VisibilityPublic
	}
	return d
}

// Validate checks the fields the backend would otherwise silently ignore.
func (d *ProfileDraft) Validate() error {
	if b := strings.TrimSpace(d.Birthday); b != "" {
		if _, err := time.Parse("2006-01-02", b); err != nil {
			return fmt.Errorf("birthday must be YYYY-MM-DD")
		}
	}
	if y := strings.TrimSpace(d.SchoolYear); y != "" && !slices.Contains(SchoolYears, y) {
		return fmt.Errorf("school year must be one of %s", strings.Join(SchoolYears, ", "))
	}
	switch d.Visibility {
	case "", VisibilityPublic, VisibilityPrivate, VisibilityFriendsOnly:
	default:
		return fmt.Errorf("unknown visibility %q", d.Visibility)
	}
	return nil
}

// Values serializes the draft as query parameters, dropping empty fields.
func (d *ProfileDraft) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(key, val)
		}
	}
	set("firstName", d.FirstName)
	set("lastName", d.LastName)
	set("major", d.Major)
	set("bio", d.Bio)
	set("visibility", string(d.Visibility))
	set("birthday", d.Birthday)
	set("schoolYear", d.SchoolYear)
	set("phoneNumber", d.PhoneNumber)
	set("location", d.Location)
	set("linkedin", d.LinkedIn)
	set("github", d.GitHub)
	return v
}
