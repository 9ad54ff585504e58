package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/session"
	"github.com/notepid/campus_connect/internal/user"
)

type authResultMsg struct {
	user *user.User
	err  error
}

type loginModel struct {
	app *app.App
	ctx context.Context

	width  int
	height int

	form       *huh.Form
	email      string
	password   string
	submitting bool
	errText    string
}

func newLoginModel(a *app.App, ctx context.Context) *loginModel {
	m := &loginModel{app: a, ctx: ctx}
	m.buildForm()
	return m
}

func (m *loginModel) buildForm() {
	m.password = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&m.email).Validate(nonEmpty("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&m.password).Validate(nonEmpty("password")),
		),
	)
}

func (m *loginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *loginModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *loginModel) Update(msg tea.Msg) tea.Cmd {
	if r, ok := msg.(authResultMsg); ok {
		m.submitting = false
		if r.err != nil {
			m.errText = session.DescribeLogin(r.err)
			m.buildForm()
			return m.form.Init()
		}
		return func() tea.Msg { return loggedInMsg{user: r.user} }
	}
	if m.submitting {
		return nil
	}
	if isKey(msg, "ctrl+n") {
		return navigate(screenRegister)
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
		ctx, auth, email, password := m.ctx, m.app.Auth, m.email, m.password
		return func() tea.Msg {
			u, err := auth.Login(ctx, email, password)
			return authResultMsg{user: u, err: err}
		}
	}
	return cmd
}

func (m *loginModel) View() string {
	s := titleStyle.Render("Login to Campus Connect") + "\n\n"
	if m.errText != "" {
		s += errStyle.Render(m.errText) + "\n\n"
	}
	if m.submitting {
		return s + "Logging in..."
	}
	return s + m.form.View() + "\n\n" + mutedStyle.Render("Don't have an account? ctrl+n to register")
}
