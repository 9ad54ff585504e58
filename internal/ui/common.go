package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/notepid/campus_connect/internal/api"
	"github.com/notepid/campus_connect/internal/message"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	badgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Padding(0, 1)
	alertStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11")).Padding(1, 3)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Bold(true)

	sentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	receivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// timeNow is replaced in tests.
var timeNow = time.Now

// alertMsg raises a blocking notification the user must acknowledge.
type alertMsg struct{ text string }

func alertCmd(text string) tea.Cmd {
	return func() tea.Msg { return alertMsg{text: text} }
}

// failure logs a failed mutation and raises an alert describing it.
func failure(action string, err error) tea.Cmd {
	log.Printf("ui: %s: %v", action, err)
	return alertCmd(api.Describe(action, err))
}

// navigateMsg asks the root model to switch screens.
type navigateMsg struct {
	to      screen
	groupID int64
	peer    *message.Recipient
}

func navigate(to screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

func openGroup(id int64) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: screenGroupDetail, groupID: id} }
}

func openConversation(r message.Recipient) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: screenMessages, peer: &r} }
}

type entry struct {
	id    int64
	title string
	desc  string
	kind  string
}

func (i entry) Title() string       { return i.title }
func (i entry) Description() string { return i.desc }
func (i entry) FilterValue() string { return i.title }

func newList(items []list.Item, title string, w, h int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), w, max(h, 3))
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// updateForm feeds msg to a huh form.
func updateForm(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd, error) {
	if form == nil {
		return nil, nil, fmt.Errorf("internal error: form not initialized")
	}
	updated, cmd := form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		return nil, nil, fmt.Errorf("internal error: unexpected form model type")
	}
	return f, cmd, nil
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func isKey(msg tea.Msg, keys ...string) bool {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	for _, want := range keys {
		if k.String() == want {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func joinColumns(left, right string, leftWidth int) string {
	l := lipgloss.NewStyle().Width(leftWidth).MarginRight(2).Render(left)
	return lipgloss.JoinHorizontal(lipgloss.Top, l, right)
}
