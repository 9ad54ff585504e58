package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/session"
)

type registerModel struct {
	app *app.App
	ctx context.Context

	width  int
	height int

	form       *huh.Form
	req        session.RegisterRequest
	submitting bool
	errText    string
}

func newRegisterModel(a *app.App, ctx context.Context) *registerModel {
	m := &registerModel{app: a, ctx: ctx}
	m.buildForm()
	return m
}

func (m *registerModel) buildForm() {
	m.req.Password = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username *").Value(&m.req.Username).Validate(nonEmpty("username")),
			huh.NewInput().Title("Email *").Value(&m.req.Email).Validate(nonEmpty("email")),
			huh.NewInput().Title("Password *").EchoMode(huh.EchoModePassword).Value(&m.req.Password).Validate(nonEmpty("password")),
		),
		huh.NewGroup(
			huh.NewInput().Title("First Name *").Value(&m.req.FirstName).Validate(nonEmpty("first name")),
			huh.NewInput().Title("Last Name *").Value(&m.req.LastName).Validate(nonEmpty("last name")),
			huh.NewInput().Title("Major").Value(&m.req.Major),
		),
	)
}

func (m *registerModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *registerModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *registerModel) Update(msg tea.Msg) tea.Cmd {
	if r, ok := msg.(authResultMsg); ok {
		m.submitting = false
		if r.err != nil {
			m.errText = session.DescribeRegister(r.err)
			m.buildForm()
			return m.form.Init()
		}
		return func() tea.Msg { return loggedInMsg{user: r.user} }
	}
	if m.submitting {
		return nil
	}
	if isKey(msg, "esc") {
		return navigate(screenLogin)
	}

	var cmd tea.Cmd
	var err error
	m.form, cmd, err = updateForm(m.form, msg)
	if err != nil {
		m.errText = err.Error()
		m.buildForm()
		return nil
	}
	if m.form.State == huh.StateCompleted {
		m.submitting = true
		m.errText = ""
		ctx, auth, req := m.ctx, m.app.Auth, m.req
		return func() tea.Msg {
			u, err := auth.Register(ctx, &req)
			return authResultMsg{user: u, err: err}
		}
	}
	return cmd
}

func (m *registerModel) View() string {
	s := titleStyle.Render("Create an Account") + "\n\n"
	if m.errText != "" {
		s += errStyle.Render(m.errText) + "\n\n"
	}
	if m.submitting {
		return s + "Creating account..."
	}
	return s + m.form.View() + "\n\n" + mutedStyle.Render("Already have an account? esc to log in")
}
