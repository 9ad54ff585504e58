package ui

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/group"
)

type statsMsg struct {
	stats app.Stats
	err   error
}

type groupsLoadedMsg struct {
	kind   string
	groups []*group.Group
	err    error
}

func loadGroups(kind string, fetch func() ([]*group.Group, error)) tea.Cmd {
	return func() tea.Msg {
		groups, err := fetch()
		return groupsLoadedMsg{kind: kind, groups: groups, err: err}
	}
}

type dashboardModel struct {
	app *app.App
	ctx context.Context

	width  int
	height int

	stats       app.Stats
	recommended []*group.Group
	loading     bool
	list        list.Model

	dialog  *joinDialog
	joining map[int64]bool
}

func newDashboardModel(a *app.App, ctx context.Context) *dashboardModel {
	m := &dashboardModel{app: a, ctx: ctx, loading: true, joining: make(map[int64]bool)}
	m.list = newList(nil, "Recommended Study Groups", 0, 0)
	return m
}

func (m *dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadStats(), m.loadRecommended())
}

func (m *dashboardModel) loadStats() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		s, err := a.Stats(ctx)
		return statsMsg{stats: s, err: err}
	}
}

func (m *dashboardModel) loadRecommended() tea.Cmd {
	ctx, groups := m.ctx, m.app.Groups
	return loadGroups("recommended", func() ([]*group.Group, error) { return groups.Recommended(ctx) })
}

func (m *dashboardModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, max(h-5, 3))
}

func (m *dashboardModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case statsMsg:
		if msg.err != nil {
			log.Printf("dashboard: %v", msg.err)
		}
		m.stats = msg.stats
		return nil
	case groupsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("dashboard: load recommended groups: %v", msg.err)
		}
		m.recommended = msg.groups
		m.refreshList()
		return nil
	case joinResultMsg:
		delete(m.joining, msg.group.ID)
		m.refreshList()
		return tea.Batch(joinOutcome(msg), m.loadStats(), m.loadRecommended())
	}

	if m.dialog != nil {
		done, send, cmd, err := m.dialog.Update(msg)
		if err != nil {
			log.Printf("dashboard: %v", err)
		}
		if !done {
			return cmd
		}
		g := m.dialog.group
		note := m.dialog.note
		m.dialog = nil
		if send {
			m.joining[g.ID] = true
			m.refreshList()
			return joinCmd(m.ctx, m.app, g, note)
		}
		return nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		g := m.selected()
		switch k.String() {
		case "enter", "v":
			if g != nil {
				return openGroup(g.ID)
			}
			return nil
		case "j":
			if g == nil || m.joining[g.ID] {
				return nil
			}
			d, cmd := startJoin(m.ctx, m.app, g)
			m.dialog = d
			if d == nil && cmd != nil {
				m.joining[g.ID] = true
				m.refreshList()
			}
			return cmd
		case "r":
			m.loading = true
			return tea.Batch(m.loadStats(), m.loadRecommended())
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *dashboardModel) selected() *group.Group {
	it, ok := m.list.SelectedItem().(entry)
	if !ok {
		return nil
	}
	for _, g := range m.recommended {
		if g.ID == it.id {
			return g
		}
	}
	return nil
}

func (m *dashboardModel) refreshList() {
	me := m.app.Session.UserID()
	items := make([]list.Item, 0, len(m.recommended))
	for _, g := range m.recommended {
		action := group.AffordanceFor(g, me).Label
		if m.joining[g.ID] {
			action = "Joining..."
		}
		desc := fmt.Sprintf("%s • %d/%d members • %s", g.CourseLabel(), g.CurrentSize, g.MaxSize, action)
		items = append(items, entry{id: g.ID, title: g.Name, desc: desc, kind: "group"})
	}
	m.list.SetItems(items)
}

func (m *dashboardModel) View() string {
	if m.dialog != nil {
		return m.dialog.View()
	}

	card := func(label string, v any) string {
		return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 2).Render(
			fmt.Sprintf("%v\n%s", v, mutedStyle.Render(label)))
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		card("My Groups", m.stats.MyGroups),
		card("Messages", m.stats.Messages),
		card("Unread", m.stats.Unread),
	)

	body := m.list.View()
	switch {
	case m.loading && len(m.recommended) == 0:
		body = "Loading recommendations..."
	case len(m.recommended) == 0:
		body = "No recommendations yet. Join some groups to get personalized suggestions!"
	}
	return stats + "\n" + body + "\n" + mutedStyle.Render("enter view details • j join • r refresh")
}
