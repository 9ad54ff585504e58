package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/session"
	"github.com/notepid/campus_connect/internal/user"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenDashboard
	screenGroups
	screenGroupDetail
	screenMessages
	screenProfile
)

type tab struct {
	key   string
	title string
	to    screen
}

var tabs = []tab{
	{key: "f1", title: "Dashboard", to: screenDashboard},
	{key: "f2", title: "Groups", to: screenGroups},
	{key: "f3", title: "Messages", to: screenMessages},
	{key: "f4", title: "Profile", to: screenProfile},
}

const logoutKey = "f9"

// chrome is the number of lines taken by the navbar and footer.
const chrome = 3

type restoredMsg struct {
	user *user.User
	err  error
}

type loggedInMsg struct{ user *user.User }

type rootModel struct {
	app    *app.App
	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int

	active    screen
	returnTo  screen
	restoring bool
	alert     string

	login     *loginModel
	register  *registerModel
	dashboard *dashboardModel
	groups    *groupsModel
	detail    *groupDetailModel
	messages  *messagesModel
	profile   *profileModel
}

func NewRootModel(a *app.App) tea.Model {
	ctx, cancel := context.WithCancel(context.Background())
	return &rootModel{
		app:       a,
		ctx:       ctx,
		cancel:    cancel,
		active:    screenLogin,
		restoring: true,
	}
}

func (m *rootModel) Init() tea.Cmd {
	ctx, auth := m.ctx, m.app.Auth
	return func() tea.Msg {
		u, err := auth.Restore(ctx)
		return restoredMsg{user: u, err: err}
	}
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}
		if m.alert != "" {
			switch msg.String() {
			case "enter", "esc", " ", "q":
				m.alert = ""
			}
			return m, nil
		}
		if m.app.Session.LoggedIn() {
			if msg.String() == logoutKey {
				return m, m.logout()
			}
			for _, t := range tabs {
				if msg.String() == t.key {
					return m, m.activate(navigateMsg{to: t.to})
				}
			}
		}
	case alertMsg:
		m.alert = msg.text
		return m, nil
	case restoredMsg:
		m.restoring = false
		if msg.err != nil {
			if !errors.Is(msg.err, session.ErrNoSession) {
				log.Printf("ui: restore session: %v", msg.err)
			}
			return m, m.activate(navigateMsg{to: screenLogin})
		}
		return m, m.activate(navigateMsg{to: screenDashboard})
	case loggedInMsg:
		return m, m.activate(navigateMsg{to: screenDashboard})
	case navigateMsg:
		return m, m.activate(msg)
	}

	if m.restoring {
		return m, nil
	}

	switch m.active {
	case screenLogin:
		if m.login != nil {
			return m, m.login.Update(msg)
		}
	case screenRegister:
		if m.register != nil {
			return m, m.register.Update(msg)
		}
	case screenDashboard:
		if m.dashboard != nil {
			return m, m.dashboard.Update(msg)
		}
	case screenGroups:
		if m.groups != nil {
			return m, m.groups.Update(msg)
		}
	case screenGroupDetail:
		if m.detail != nil {
			cmd := m.detail.Update(msg)
			if m.detail.Done {
				return m, tea.Batch(cmd, m.activate(navigateMsg{to: m.returnTo}))
			}
			return m, cmd
		}
	case screenMessages:
		if m.messages != nil {
			return m, m.messages.Update(msg)
		}
	case screenProfile:
		if m.profile != nil {
			return m, m.profile.Update(msg)
		}
	}
	return m, nil
}

// activate switches to a freshly created screen. Screens fetch their data on
// creation and drop it when left.
func (m *rootModel) activate(nav navigateMsg) tea.Cmd {
	to := nav.to
	loggedIn := m.app.Session.LoggedIn()
	if !loggedIn && to != screenLogin && to != screenRegister {
		to = screenLogin
	}
	if loggedIn && (to == screenLogin || to == screenRegister) {
		to = screenDashboard
	}

	if to == screenGroupDetail && m.active != screenGroupDetail {
		m.returnTo = m.active
	}
	m.leave()
	m.active = to

	w, h := m.contentSize()
	switch to {
	case screenLogin:
		m.login = newLoginModel(m.app, m.ctx)
		m.login.SetSize(w, h)
		return m.login.Init()
	case screenRegister:
		m.register = newRegisterModel(m.app, m.ctx)
		m.register.SetSize(w, h)
		return m.register.Init()
	case screenDashboard:
		m.dashboard = newDashboardModel(m.app, m.ctx)
		m.dashboard.SetSize(w, h)
		return m.dashboard.Init()
	case screenGroups:
		m.groups = newGroupsModel(m.app, m.ctx)
		m.groups.SetSize(w, h)
		return m.groups.Init()
	case screenGroupDetail:
		m.detail = newGroupDetailModel(m.app, m.ctx, nav.groupID)
		m.detail.SetSize(w, h)
		return m.detail.Init()
	case screenMessages:
		m.messages = newMessagesModel(m.app, m.ctx, nav.peer)
		m.messages.SetSize(w, h)
		return m.messages.Init()
	case screenProfile:
		m.profile = newProfileModel(m.app, m.ctx)
		m.profile.SetSize(w, h)
		return m.profile.Init()
	}
	return nil
}

// leave tears down the active screen.
func (m *rootModel) leave() {
	if m.messages != nil {
		m.messages.Close()
	}
	m.login, m.register, m.dashboard, m.groups = nil, nil, nil, nil
	m.detail, m.messages, m.profile = nil, nil, nil
}

func (m *rootModel) logout() tea.Cmd {
	if err := m.app.Auth.Logout(); err != nil {
		log.Printf("ui: logout: %v", err)
	}
	return m.activate(navigateMsg{to: screenLogin})
}

func (m *rootModel) shutdown() {
	m.leave()
	m.cancel()
}

func (m *rootModel) contentSize() (int, int) {
	return m.width, max(m.height-chrome, 0)
}

func (m *rootModel) resize() {
	w, h := m.contentSize()
	if m.login != nil {
		m.login.SetSize(w, h)
	}
	if m.register != nil {
		m.register.SetSize(w, h)
	}
	if m.dashboard != nil {
		m.dashboard.SetSize(w, h)
	}
	if m.groups != nil {
		m.groups.SetSize(w, h)
	}
	if m.detail != nil {
		m.detail.SetSize(w, h)
	}
	if m.messages != nil {
		m.messages.SetSize(w, h)
	}
	if m.profile != nil {
		m.profile.SetSize(w, h)
	}
}

func (m *rootModel) View() string {
	if m.restoring {
		return "Loading..."
	}
	if m.alert != "" {
		box := alertStyle.Render(m.alert + "\n\n" + mutedStyle.Render("Press Enter to continue."))
		return lipgloss.Place(max(m.width, 1), max(m.height, 1), lipgloss.Center, lipgloss.Center, box)
	}

	return m.navbar() + "\n" + m.body() + "\n" + m.footer()
}

func (m *rootModel) body() string {
	switch m.active {
	case screenLogin:
		if m.login != nil {
			return m.login.View()
		}
	case screenRegister:
		if m.register != nil {
			return m.register.View()
		}
	case screenDashboard:
		if m.dashboard != nil {
			return m.dashboard.View()
		}
	case screenGroups:
		if m.groups != nil {
			return m.groups.View()
		}
	case screenGroupDetail:
		if m.detail != nil {
			return m.detail.View()
		}
	case screenMessages:
		if m.messages != nil {
			return m.messages.View()
		}
	case screenProfile:
		if m.profile != nil {
			return m.profile.View()
		}
	}
	return titleStyle.Render("Unknown screen") + "\n" + fmt.Sprint(m.active)
}

func (m *rootModel) navbar() string {
	brand := accentStyle.Render("Campus Connect")
	u := m.app.Session.User()
	if u == nil {
		return brand
	}

	parts := []string{brand, " "}
	for _, t := range tabs {
		label := fmt.Sprintf("%s %s", strings.ToUpper(t.key), t.title)
		if t.to == m.active || (t.to == screenGroups && m.active == screenGroupDetail) {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	parts = append(parts, "  ", "Welcome, "+u.Username, "  ", mutedStyle.Render(strings.ToUpper(logoutKey)+" Logout"))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *rootModel) footer() string {
	return mutedStyle.Render("ctrl+c quit")
}
