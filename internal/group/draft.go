package group

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Draft is the editable subset of a group used by the create and edit forms.
//
// Values drops empty strings and zero numbers, so anything left blank keeps its
// previous value on the server. A field cannot be cleared through an edit.
type Draft struct {
	Name           string
	Description    string
	CourseName     string
	CourseCode     string
	Topic          string
	MaxSize        int
	Visibility     Visibility
	RequiresInvite bool
	InvitedUserIDs []int64 // create only
}

// NewDraft returns the defaults of the create form.
func NewDraft() *Draft {
	return &Draft{MaxSize: DefaultSize, Visibility: VisibilityPublic}
}

// DraftFromGroup seeds an edit draft with the group's current values.
func DraftFromGroup(g *Group) *Draft {
	d := &Draft{
		Name:           g.Name,
		Description:    g.Description,
		CourseName:     g.CourseName,
		CourseCode:     g.CourseCode,
		Topic:          g.Topic,
		MaxSize:        g.MaxSize,
		Visibility:     g.Visibility,
		RequiresInvite: g.RequiresInvite,
	}
	if d.MaxSize == 0 {
		d.MaxSize = DefaultSize
	}
	if d.Visibility == "" {
		d.Visibility = VisibilityPublic
	}
	return d
}

// SetCourse fills course name and code from a catalog entry.
func (d *Draft) SetCourse(c *Course) {
	d.CourseName = c.Name
	d.CourseCode = c.Code
}

// ValidateCreate checks the create form.
func (d *Draft) ValidateCreate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("group name is required")
	}
	if strings.TrimSpace(d.CourseName) == "" || strings.TrimSpace(d.CourseCode) == "" {
		return fmt.Errorf("select a course from the list")
	}
	if d.MaxSize != 0 && (d.MaxSize < MinSize || d.MaxSize > MaxSize) {
		return fmt.Errorf("max size must be between %d and %d", MinSize, MaxSize)
	}
	return d.validateVisibility()
}

// ValidateEdit checks the edit form. The size may not drop below the current
// member count.
func (d *Draft) ValidateEdit(currentSize int) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("group name is required")
	}
	if strings.TrimSpace(d.CourseName) == "" {
		return fmt.Errorf("course name is required")
	}
	low := max(currentSize, MinSize)
	if d.MaxSize < low || d.MaxSize > MaxSize {
		return fmt.Errorf("max size must be between %d and %d", low, MaxSize)
	}
	return d.validateVisibility()
}

func (d *Draft) validateVisibility() error {
	switch d.Visibility {
	case "", VisibilityPublic, VisibilityPrivate:
		return nil
	default:
		return fmt.Errorf("unknown visibility %q", d.Visibility)
	}
}

// Values serializes the draft as query parameters. requiresInvite is always
// sent; invited users are repeated invitedUserIds parameters.
func (d *Draft) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(key, val)
		}
	}
	set("name", d.Name)
	set("description", d.Description)
	set("courseName", d.CourseName)
	set("courseCode", d.CourseCode)
	set("topic", d.Topic)
	if d.MaxSize > 0 {
		v.Set("maxSize", strconv.Itoa(d.MaxSize))
	}
	set("visibility", string(d.Visibility))
	v.Set("requiresInvite", strconv.FormatBool(d.RequiresInvite))
	for _, id := range d.InvitedUserIDs {
		v.Add("invitedUserIds", strconv.FormatInt(id, 10))
	}
	return v
}
