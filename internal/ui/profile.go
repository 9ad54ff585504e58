package ui

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/user"
)

type profileLoadedMsg struct {
	user *user.User
	err  error
}

type profileSavedMsg struct {
	user *user.User
	err  error
}

type profileModel struct {
	app *app.App
	ctx context.Context

	width  int
	height int

	user    *user.User
	loading bool

	editing bool
	saving  bool
	form    *huh.Form
	draft   *user.ProfileDraft
	save    bool
}

func newProfileModel(a *app.App, ctx context.Context) *profileModel {
	return &profileModel{app: a, ctx: ctx, user: a.Session.User(), loading: true}
}

func (m *profileModel) Init() tea.Cmd {
	ctx, users := m.ctx, m.app.Users
	return func() tea.Msg {
		u, err := users.Me(ctx)
		return profileLoadedMsg{user: u, err: err}
	}
}

func (m *profileModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *profileModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("profile: load: %v", msg.err)
			return nil
		}
		m.user = msg.user
		m.app.Session.SetUser(msg.user)
		return nil
	case profileSavedMsg:
		m.saving = false
		if msg.err != nil {
			if !m.editing {
				return failure("update profile", msg.err)
			}
			m.save = true
			m.form = m.editForm()
			return tea.Batch(failure("update profile", msg.err), m.form.Init())
		}
		m.editing = false
		m.form = nil
		m.user = msg.user
		m.app.Session.SetUser(msg.user)
		return alertCmd("Profile updated successfully!")
	}

	if m.editing {
		return m.updateEdit(msg)
	}
	if isKey(msg, "e") && m.user != nil {
		return m.startEdit()
	}
	return nil
}

func (m *profileModel) startEdit() tea.Cmd {
	m.editing = true
	m.draft = user.DraftFromUser(m.user)
	m.save = true
	m.form = m.editForm()
	return m.form.Init()
}

func (m *profileModel) editForm() *huh.Form {
	years := []huh.Option[string]{huh.NewOption("Select year", "")}
	for _, y := range user.SchoolYears {
		years = append(years, huh.NewOption(y, y))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First Name").Value(&m.draft.FirstName),
			huh.NewInput().Title("Last Name").Value(&m.draft.LastName),
			huh.NewInput().Title("Major").Value(&m.draft.Major),
			huh.NewSelect[string]().Title("School Year").Options(years...).Value(&m.draft.SchoolYear),
			huh.NewInput().Title("Birthday").Placeholder("YYYY-MM-DD").Value(&m.draft.Birthday).Validate(validDate),
		),
		huh.NewGroup(
			huh.NewText().Title("Bio").Placeholder("Tell us about yourself...").Value(&m.draft.Bio),
			huh.NewInput().Title("Phone Number").Value(&m.draft.PhoneNumber),
			huh.NewInput().Title("Location").Value(&m.draft.Location),
			huh.NewInput().Title("LinkedIn").Value(&m.draft.LinkedIn),
			huh.NewInput().Title("GitHub").Value(&m.draft.GitHub),
		),
		huh.NewGroup(
			huh.NewSelect[user.Visibility]().Title("Profile Visibility").Options(
				huh.NewOption("Public", user.VisibilityPublic),
				huh.NewOption("Private", user.VisibilityPrivate),
			).Value(&m.draft.Visibility),
			huh.NewConfirm().Title("Save changes?").Value(&m.save),
		),
	)
}

func validDate(s string) error {
	d := user.ProfileDraft{Birthday: s}
	return d.Validate()
}

func (m *profileModel) updateEdit(msg tea.Msg) tea.Cmd {
	if m.saving {
		return nil
	}
	if isKey(msg, "esc") {
		m.editing = false
		m.form = nil
		return nil
	}
	var cmd tea.Cmd
	var err error
	m.form, cmd, err = updateForm(m.form, msg)
	if err != nil {
		m.editing = false
		return failure("update profile", err)
	}
	if m.form.State != huh.StateCompleted {
		return cmd
	}
	if !m.save {
		m.editing = false
		m.form = nil
		return nil
	}

	m.saving = true
	ctx, users, d := m.ctx, m.app.Users, m.draft
	return func() tea.Msg {
		if _, err := users.UpdateProfile(ctx, d); err != nil {
			return profileSavedMsg{err: err}
		}
		u, err := users.Me(ctx)
		return profileSavedMsg{user: u, err: err}
	}
}

func (m *profileModel) View() string {
	if m.editing {
		if m.saving {
			return "Saving profile..."
		}
		return titleStyle.Render("Edit Profile") + "\n\n" + m.form.View() + "\n\n(esc to cancel)"
	}
	if m.user == nil {
		if m.loading {
			return "Loading profile..."
		}
		return "Profile unavailable."
	}

	u := m.user
	var b strings.Builder
	b.WriteString(titleStyle.Render(u.DisplayName()) + "  " + mutedStyle.Render("@"+u.Username) + "\n")
	b.WriteString(u.Email + "\n")
	if !u.CreatedAt.IsZero() {
		b.WriteString(mutedStyle.Render("Member since "+humanize.Time(u.CreatedAt.Time)) + "\n")
	}
	b.WriteString("\n")

	rows := [][2]string{
		{"Major", u.Major},
		{"School Year", u.SchoolYear},
		{"Birthday", u.Birthday},
		{"Phone", u.PhoneNumber},
		{"Location", u.Location},
		{"LinkedIn", u.LinkedIn},
		{"GitHub", u.GitHub},
		{"Visibility", string(u.Visibility)},
		{"Interests", strings.Join(u.Interests, ", ")},
		{"Skills", strings.Join(u.Skills, ", ")},
		{"Courses", strings.Join(u.Courses, ", ")},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%-12s %s\n", r[0]+":", orDash(r[1]))
	}
	if u.Bio != "" {
		b.WriteString("\n" + u.Bio + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("e edit profile"))
	return b.String()
}
