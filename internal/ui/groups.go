package ui

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/huh"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/group"
	"github.com/notepid/campus_connect/internal/user"
)

// courseMatches is how many catalog entries the course picker shows.
const courseMatches = 10

type groupsState int

const (
	groupsStateList groupsState = iota
	groupsStateSearch
	groupsStateCreate
	groupsStateCourse
	groupsStateInvite
	groupsStateConfirm
	groupsStateJoin
)

type groupsView int

const (
	viewAll groupsView = iota
	viewCreated
	viewJoined
)

var groupsViewTitles = []string{"All Groups", "My Created Groups", "My Joined Groups"}

type coursesMsg struct {
	courses []*group.Course
	err     error
}

type usersFoundMsg struct {
	query string
	users []*user.User
	err   error
}

type groupCreatedMsg struct {
	group *group.Group
	err   error
}

type groupsModel struct {
	app *app.App
	ctx context.Context

	width  int
	height int

	state groupsState
	view  groupsView
	list  list.Model

	all     []*group.Group
	mine    []*group.Group
	created []*group.Group
	query   string
	loading bool

	search  textinput.Model
	dialog  *joinDialog
	joining map[int64]bool

	// create flow
	form     *huh.Form
	draft    *group.Draft
	maxSize  string
	save     bool
	creating bool
	courses  []*group.Course
	picker   *picker
	found    []*user.User
	invited  []*user.User
}

func newGroupsModel(a *app.App, ctx context.Context) *groupsModel {
	in := textinput.New()
	in.Placeholder = "Search by name, course, or topic..."
	in.CharLimit = 100

	m := &groupsModel{app: a, ctx: ctx, loading: true, search: in, joining: make(map[int64]bool)}
	m.list = newList(nil, groupsViewTitles[viewAll], 0, 0)
	return m
}

func (m *groupsModel) Init() tea.Cmd {
	return m.reload()
}

func (m *groupsModel) reload() tea.Cmd {
	m.loading = true
	ctx, groups, query := m.ctx, m.app.Groups, m.query
	return tea.Batch(
		loadGroups("all", func() ([]*group.Group, error) { return groups.Search(ctx, query) }),
		loadGroups("mine", func() ([]*group.Group, error) { return groups.Mine(ctx) }),
		loadGroups("created", func() ([]*group.Group, error) { return groups.Created(ctx) }),
	)
}

func (m *groupsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, max(h-3, 3))
	m.search.Width = max(w-4, 10)
	if m.picker != nil {
		m.picker.SetSize(w, h-2)
	}
}

func (m *groupsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case groupsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("groups: load %s: %v", msg.kind, msg.err)
		}
		switch msg.kind {
		case "all":
			m.all = msg.groups
		case "mine":
			m.mine = msg.groups
		case "created":
			m.created = msg.groups
		}
		m.refreshList()
		return nil
	case joinResultMsg:
		delete(m.joining, msg.group.ID)
		return tea.Batch(joinOutcome(msg), m.reload())
	case coursesMsg:
		if msg.err != nil {
			log.Printf("groups: load courses: %v", msg.err)
		}
		m.courses = msg.courses
		m.filterCourses()
		return nil
	case usersFoundMsg:
		if msg.err != nil {
			log.Printf("groups: search users: %v", msg.err)
		}
		if m.picker != nil && strings.TrimSpace(m.picker.Query()) == msg.query {
			m.found = msg.users
			m.showFoundUsers()
		}
		return nil
	case groupCreatedMsg:
		m.creating = false
		if msg.err != nil {
			m.state = groupsStateList
			return failure("create group", msg.err)
		}
		m.resetCreate()
		m.state = groupsStateList
		return tea.Batch(alertCmd("Group created successfully!"), m.reload())
	}

	switch m.state {
	case groupsStateSearch:
		return m.updateSearch(msg)
	case groupsStateCreate, groupsStateConfirm:
		return m.updateForm(msg)
	case groupsStateCourse:
		return m.updateCourse(msg)
	case groupsStateInvite:
		return m.updateInvite(msg)
	case groupsStateJoin:
		return m.updateJoin(msg)
	default:
		return m.updateList(msg)
	}
}

func (m *groupsModel) updateList(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab":
			m.view = (m.view + 1) % groupsView(len(groupsViewTitles))
			m.refreshList()
			return nil
		case "/":
			m.state = groupsStateSearch
			m.search.SetValue(m.query)
			return m.search.Focus()
		case "n":
			return m.startCreate()
		case "r":
			return m.reload()
		case "enter":
			if g := m.selected(); g != nil {
				return openGroup(g.ID)
			}
			return nil
		case "j":
			g := m.selected()
			if g == nil || m.joining[g.ID] {
				return nil
			}
			d, cmd := startJoin(m.ctx, m.app, g)
			if d != nil {
				m.dialog = d
				m.state = groupsStateJoin
			} else if cmd != nil {
				m.joining[g.ID] = true
				m.refreshList()
			}
			return cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *groupsModel) updateSearch(msg tea.Msg) tea.Cmd {
	switch {
	case isKey(msg, "esc"):
		m.search.Blur()
		m.state = groupsStateList
		return nil
	case isKey(msg, "enter"):
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.view = viewAll
		m.state = groupsStateList
		return m.reload()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *groupsModel) updateJoin(msg tea.Msg) tea.Cmd {
	done, send, cmd, err := m.dialog.Update(msg)
	if err != nil {
		log.Printf("groups: %v", err)
	}
	if !done {
		return cmd
	}
	g, note := m.dialog.group, m.dialog.note
	m.dialog = nil
	m.state = groupsStateList
	if !send {
		return nil
	}
	m.joining[g.ID] = true
	m.refreshList()
	return joinCmd(m.ctx, m.app, g, note)
}

func (m *groupsModel) startCreate() tea.Cmd {
	m.resetCreate()
	m.state = groupsStateCreate
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Group Name *").Value(&m.draft.Name).Validate(nonEmpty("group name")),
			huh.NewText().Title("Description").Value(&m.draft.Description),
			huh.NewInput().Title("Topic").Placeholder("e.g., Midterm Prep, Final Exam Review").Value(&m.draft.Topic),
		),
		huh.NewGroup(
			huh.NewInput().Title("Max Size").Value(&m.maxSize).Validate(validSize(group.MinSize)),
			huh.NewSelect[group.Visibility]().Title("Visibility").Options(
				huh.NewOption("Public", group.VisibilityPublic),
				huh.NewOption("Private", group.VisibilityPrivate),
			).Value(&m.draft.Visibility),
			huh.NewConfirm().Title("Require approval to join?").Value(&m.draft.RequiresInvite),
		),
	)

	ctx, groups := m.ctx, m.app.Groups
	load := func() tea.Msg {
		courses, err := groups.Courses(ctx)
		return coursesMsg{courses: courses, err: err}
	}
	return tea.Batch(m.form.Init(), load)
}

func (m *groupsModel) resetCreate() {
	m.draft = group.NewDraft()
	m.maxSize = strconv.Itoa(m.draft.MaxSize)
	m.form = nil
	m.picker = nil
	m.found = nil
	m.invited = nil
	m.save = true
}

func validSize(low int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("max size must be a number")
		}
		if v < low || v > group.MaxSize {
			return fmt.Errorf("max size must be between %d and %d", low, group.MaxSize)
		}
		return nil
	}
}

func (m *groupsModel) updateForm(msg tea.Msg) tea.Cmd {
	if isKey(msg, "esc") {
		m.resetCreate()
		m.state = groupsStateList
		return nil
	}
	var cmd tea.Cmd
	var err error
	m.form, cmd, err = updateForm(m.form, msg)
	if err != nil {
		m.state = groupsStateList
		return failure("create group", err)
	}
	if m.form.State != huh.StateCompleted {
		return cmd
	}

	if m.state == groupsStateCreate {
		m.draft.MaxSize, _ = strconv.Atoi(strings.TrimSpace(m.maxSize))
		m.state = groupsStateCourse
		m.picker = newPicker("Course *", "Search courses (e.g., CSCI 1301 or Computer Science)", m.width, m.height-2)
		m.filterCourses()
		return nil
	}

	// confirm
	if !m.save || m.creating {
		m.resetCreate()
		m.state = groupsStateList
		return nil
	}
	m.draft.InvitedUserIDs = m.draft.InvitedUserIDs[:0]
	for _, u := range m.invited {
		m.draft.InvitedUserIDs = append(m.draft.InvitedUserIDs, u.ID)
	}
	m.creating = true
	ctx, groups, d := m.ctx, m.app.Groups, m.draft
	return func() tea.Msg {
		g, err := groups.Create(ctx, d)
		return groupCreatedMsg{group: g, err: err}
	}
}

func (m *groupsModel) filterCourses() {
	if m.picker == nil {
		return
	}
	matches := group.FilterCourses(m.courses, m.picker.Query(), courseMatches)
	items := make([]list.Item, 0, len(matches))
	for _, c := range matches {
		items = append(items, entry{id: c.ID, title: c.Code, desc: c.Name, kind: "course"})
	}
	m.picker.SetItems(items)
}

func (m *groupsModel) updateCourse(msg tea.Msg) tea.Cmd {
	switch {
	case isKey(msg, "esc"):
		m.resetCreate()
		m.state = groupsStateList
		return nil
	case isKey(msg, "enter"):
		it, ok := m.picker.Selected()
		if !ok {
			return nil
		}
		for _, c := range m.courses {
			if c.ID == it.id && c.Code == it.title {
				m.draft.SetCourse(c)
			}
		}
		if m.draft.CourseCode == "" {
			return nil
		}
		m.state = groupsStateInvite
		m.picker = newPicker("Invite users (optional)", "Search by name, email, or username", m.width, m.height-2)
		return nil
	}
	changed, cmd := m.picker.Update(msg)
	if changed {
		m.filterCourses()
	}
	return cmd
}

func (m *groupsModel) updateInvite(msg tea.Msg) tea.Cmd {
	switch {
	case isKey(msg, "esc"):
		m.resetCreate()
		m.state = groupsStateList
		return nil
	case isKey(msg, "ctrl+s"):
		return m.startConfirm()
	case isKey(msg, "enter"):
		it, ok := m.picker.Selected()
		if !ok {
			return nil
		}
		m.toggleInvite(it.id)
		m.showFoundUsers()
		return nil
	}

	changed, cmd := m.picker.Update(msg)
	if !changed {
		return cmd
	}
	q := strings.TrimSpace(m.picker.Query())
	if len(q) < 2 {
		m.found = nil
		m.showFoundUsers()
		return cmd
	}
	ctx, users := m.ctx, m.app.Users
	return tea.Batch(cmd, func() tea.Msg {
		found, err := users.Search(ctx, q)
		return usersFoundMsg{query: q, users: found, err: err}
	})
}

func (m *groupsModel) toggleInvite(id int64) {
	if i := slices.IndexFunc(m.invited, func(u *user.User) bool { return u.ID == id }); i >= 0 {
		m.invited = slices.Delete(m.invited, i, i+1)
		return
	}
	for _, u := range m.found {
		if u.ID == id {
			m.invited = append(m.invited, u)
			return
		}
	}
}

func (m *groupsModel) showFoundUsers() {
	if m.picker == nil {
		return
	}
	me := m.app.Session.UserID()
	items := make([]list.Item, 0, len(m.found))
	for _, u := range m.found {
		if u.ID == me {
			continue
		}
		mark := "[ ]"
		if slices.ContainsFunc(m.invited, func(x *user.User) bool { return x.ID == u.ID }) {
			mark = "[x]"
		}
		items = append(items, entry{id: u.ID, title: mark + " " + u.DisplayName(), desc: "@" + u.Username + " • " + u.Email, kind: "user"})
	}
	m.picker.SetItems(items)
}

func (m *groupsModel) startConfirm() tea.Cmd {
	m.state = groupsStateConfirm
	m.picker = nil
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("New group").Description(m.draftSummary()),
			huh.NewConfirm().Title("Create group?").Value(&m.save),
		),
	)
	return m.form.Init()
}

func (m *groupsModel) draftSummary() string {
	d := m.draft
	names := make([]string, 0, len(m.invited))
	for _, u := range m.invited {
		names = append(names, u.Username)
	}
	return fmt.Sprintf("%s\nCourse: %s (%s)\nTopic: %s\nMax size: %d\nVisibility: %s\nApproval required: %v\nInvited: %s",
		d.Name, d.CourseName, d.CourseCode, orDash(d.Topic), d.MaxSize, d.Visibility, d.RequiresInvite, orDash(strings.Join(names, ", ")))
}

// visible returns the groups of the current view.
func (m *groupsModel) visible() []*group.Group {
	switch m.view {
	case viewCreated:
		return m.created
	case viewJoined:
		return group.JoinedOnly(m.mine, m.created)
	default:
		return m.all
	}
}

func (m *groupsModel) selected() *group.Group {
	it, ok := m.list.SelectedItem().(entry)
	if !ok {
		return nil
	}
	for _, g := range m.visible() {
		if g.ID == it.id {
			return g
		}
	}
	return nil
}

func (m *groupsModel) refreshList() {
	me := m.app.Session.UserID()
	groups := m.visible()
	items := make([]list.Item, 0, len(groups))
	for _, g := range groups {
		status := group.AffordanceFor(g, me).Label
		switch {
		case m.joining[g.ID]:
			status = "Joining..."
		case g.IsCreator(me):
			status = "Creator"
		case g.IsMember(me):
			status = "Member"
		}
		desc := fmt.Sprintf("%s • %d/%d members • %s • %s", g.CourseLabel(), g.CurrentSize, g.MaxSize, g.PrivacyLabel(), status)
		items = append(items, entry{id: g.ID, title: g.Name, desc: desc, kind: "group"})
	}
	m.list.SetItems(items)

	title := groupsViewTitles[m.view]
	if m.view == viewAll && m.query != "" {
		title = fmt.Sprintf("Search results for %q", m.query)
	}
	m.list.Title = title
}

func (m *groupsModel) View() string {
	switch m.state {
	case groupsStateSearch:
		return titleStyle.Render("Search groups") + "\n" + m.search.View() + "\n\n" + mutedStyle.Render("enter search (empty shows all) • esc cancel")
	case groupsStateCreate, groupsStateConfirm:
		if m.creating {
			return "Creating group..."
		}
		return titleStyle.Render("Create New Group") + "\n\n" + m.form.View() + "\n\n(esc to cancel)"
	case groupsStateCourse:
		hint := "enter select course • esc cancel"
		if len(m.courses) == 0 {
			hint = "Loading courses... • esc cancel"
		}
		return m.picker.View() + "\n" + mutedStyle.Render(hint)
	case groupsStateInvite:
		return m.picker.View() + "\n" + mutedStyle.Render(fmt.Sprintf("%d invited • enter toggle • ctrl+s continue • esc cancel", len(m.invited)))
	case groupsStateJoin:
		return m.dialog.View()
	}

	body := m.list.View()
	if len(m.visible()) == 0 {
		switch {
		case m.loading:
			body = "Loading groups..."
		case m.view == viewAll && m.query != "":
			body = fmt.Sprintf("No groups match %q.", m.query)
		case m.view == viewCreated:
			body = "You haven't created any groups yet."
		case m.view == viewJoined:
			body = "You haven't joined any groups yet."
		default:
			body = "No groups available. Create the first one!"
		}
	}
	return body + "\n" + mutedStyle.Render("tab switch list • / search • enter details • j join • n create • r refresh")
}
