package ui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/group"
	"github.com/notepid/campus_connect/internal/message"
)

type detailState int

const (
	detailStateInfo detailState = iota
	detailStateChat
	detailStateEdit
	detailStateJoin
	detailStateConfirm
)

type groupLoadedMsg struct {
	group *group.Group
	err   error
}

type groupChatMsg struct {
	messages []*message.Message
	err      error
}

type groupSentMsg struct {
	err error
}

type groupMutatedMsg struct {
	action string
	err    error
}

type groupDetailModel struct {
	app *app.App
	ctx context.Context
	id  int64

	width  int
	height int

	Done bool

	state   detailState
	group   *group.Group
	loading bool
	chat    []*message.Message

	viewport viewport.Model
	input    textinput.Model
	sending  bool

	dialog *joinDialog
	busy   bool // join, leave, delete or save in flight

	form    *huh.Form
	draft   *group.Draft
	maxSize string
	save    bool

	confirm       bool
	confirmAction string
}

func newGroupDetailModel(a *app.App, ctx context.Context, id int64) *groupDetailModel {
	in := textinput.New()
	in.Placeholder = "Type a message..."
	in.CharLimit = 1000

	return &groupDetailModel{
		app:      a,
		ctx:      ctx,
		id:       id,
		loading:  true,
		viewport: viewport.New(0, 0),
		input:    in,
	}
}

func (m *groupDetailModel) Init() tea.Cmd {
	return m.load()
}

func (m *groupDetailModel) load() tea.Cmd {
	ctx, groups, id := m.ctx, m.app.Groups, m.id
	return func() tea.Msg {
		g, err := groups.Get(ctx, id)
		return groupLoadedMsg{group: g, err: err}
	}
}

func (m *groupDetailModel) loadChat() tea.Cmd {
	ctx, msgs, id := m.ctx, m.app.Messages, m.id
	return func() tea.Msg {
		chat, err := msgs.Group(ctx, id)
		return groupChatMsg{messages: chat, err: err}
	}
}

func (m *groupDetailModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.input.Width = max(w-4, 10)
	m.viewport.Width = w
	m.viewport.Height = max(h-12, 3)
	m.renderChat()
}

func (m *groupDetailModel) member() bool {
	if m.group == nil {
		return false
	}
	me := m.app.Session.UserID()
	return m.group.IsMember(me) || m.group.IsCreator(me)
}

func (m *groupDetailModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case groupLoadedMsg:
		m.loading = false
		if msg.err != nil {
			log.Printf("group detail: load group %d: %v", m.id, msg.err)
			m.group = nil
			return nil
		}
		m.group = msg.group
		if m.member() {
			return m.loadChat()
		}
		m.chat = nil
		m.renderChat()
		return nil
	case groupChatMsg:
		if msg.err != nil {
			log.Printf("group detail: load chat %d: %v", m.id, msg.err)
		}
		m.chat = msg.messages
		m.renderChat()
		return nil
	case groupSentMsg:
		m.sending = false
		if msg.err != nil {
			return failure("send message", msg.err)
		}
		m.input.Reset()
		return m.loadChat()
	case joinResultMsg:
		m.busy = false
		return tea.Batch(joinOutcome(msg), m.load())
	case groupMutatedMsg:
		m.busy = false
		if msg.err != nil {
			if msg.action == "update group" && m.state == detailStateEdit {
				m.save = true
				m.form = m.editForm()
				return tea.Batch(failure(msg.action, msg.err), m.form.Init())
			}
			return failure(msg.action, msg.err)
		}
		switch msg.action {
		case "delete group":
			m.Done = true
			return alertCmd("Group deleted successfully!")
		case "update group":
			m.state = detailStateInfo
			return tea.Batch(alertCmd("Group updated successfully!"), m.load())
		default:
			return m.load()
		}
	}

	switch m.state {
	case detailStateChat:
		return m.updateChat(msg)
	case detailStateEdit:
		return m.updateEdit(msg)
	case detailStateJoin:
		return m.updateJoin(msg)
	case detailStateConfirm:
		return m.updateConfirm(msg)
	default:
		return m.updateInfo(msg)
	}
}

func (m *groupDetailModel) updateInfo(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "esc", "q":
		m.Done = true
		return nil
	case "r":
		m.loading = true
		return m.load()
	}
	if m.group == nil || m.busy {
		return nil
	}

	aff := group.AffordanceFor(m.group, m.app.Session.UserID())
	switch k.String() {
	case "j":
		if aff.Action != group.ActionJoin && aff.Action != group.ActionRequest {
			return nil
		}
		d, cmd := startJoin(m.ctx, m.app, m.group)
		if d != nil {
			m.dialog = d
			m.state = detailStateJoin
		} else if cmd != nil {
			m.busy = true
		}
		return cmd
	case "l":
		if aff.Action == group.ActionLeave {
			return m.startConfirm("leave group", aff.Confirm)
		}
	case "e":
		if aff.Action == group.ActionManage {
			return m.startEdit()
		}
	case "d":
		if aff.Action == group.ActionManage {
			return m.startConfirm("delete group", "Are you sure you want to delete this group? This cannot be undone.")
		}
	case "c":
		if m.member() {
			m.state = detailStateChat
			return m.input.Focus()
		}
	case "m":
		me := m.app.Session.UserID()
		if m.group.CreatorID != 0 && m.group.CreatorID != me {
			return openConversation(message.Recipient{ID: m.group.CreatorID, Username: m.group.CreatorName})
		}
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *groupDetailModel) updateChat(msg tea.Msg) tea.Cmd {
	switch {
	case isKey(msg, "esc"):
		m.input.Blur()
		m.state = detailStateInfo
		return nil
	case isKey(msg, "enter"):
		content := strings.TrimSpace(m.input.Value())
		if content == "" || m.sending {
			return nil
		}
		m.sending = true
		ctx, msgs, id := m.ctx, m.app.Messages, m.id
		return func() tea.Msg {
			_, err := msgs.SendGroup(ctx, id, content)
			return groupSentMsg{err: err}
		}
	case isKey(msg, "pgup", "pgdown"):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *groupDetailModel) updateJoin(msg tea.Msg) tea.Cmd {
	done, send, cmd, err := m.dialog.Update(msg)
	if err != nil {
		log.Printf("group detail: %v", err)
	}
	if !done {
		return cmd
	}
	g, note := m.dialog.group, m.dialog.note
	m.dialog = nil
	m.state = detailStateInfo
	if !send {
		return nil
	}
	m.busy = true
	return joinCmd(m.ctx, m.app, g, note)
}

func (m *groupDetailModel) startConfirm(action, question string) tea.Cmd {
	m.state = detailStateConfirm
	m.confirmAction = action
	m.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(question).Affirmative("Yes").Negative("No").Value(&m.confirm),
		),
	)
	return m.form.Init()
}

func (m *groupDetailModel) updateConfirm(msg tea.Msg) tea.Cmd {
	if isKey(msg, "esc") {
		m.form = nil
		m.state = detailStateInfo
		return nil
	}
	var cmd tea.Cmd
	var err error
	m.form, cmd, err = updateForm(m.form, msg)
	if err != nil {
		m.state = detailStateInfo
		return failure(m.confirmAction, err)
	}
	if m.form.State != huh.StateCompleted {
		return cmd
	}
	m.form = nil
	m.state = detailStateInfo
	if !m.confirm {
		return nil
	}

	m.busy = true
	ctx, groups, id, action := m.ctx, m.app.Groups, m.id, m.confirmAction
	return func() tea.Msg {
		var err error
		switch action {
		case "leave group":
			err = groups.Leave(ctx, id)
		case "delete group":
			err = groups.Delete(ctx, id)
		}
		return groupMutatedMsg{action: action, err: err}
	}
}

func (m *groupDetailModel) startEdit() tea.Cmd {
	m.state = detailStateEdit
	m.draft = group.DraftFromGroup(m.group)
	m.maxSize = strconv.Itoa(m.draft.MaxSize)
	m.save = true
	m.form = m.editForm()
	return m.form.Init()
}

// editForm binds a fresh form to the current draft, so a failed save keeps
// what was typed.
func (m *groupDetailModel) editForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Group Name *").Value(&m.draft.Name).Validate(nonEmpty("group name")),
			huh.NewText().Title("Description").Value(&m.draft.Description),
			huh.NewInput().Title("Course Name *").Value(&m.draft.CourseName).Validate(nonEmpty("course name")),
			huh.NewInput().Title("Course Code").Value(&m.draft.CourseCode),
			huh.NewInput().Title("Topic").Value(&m.draft.Topic),
		),
		huh.NewGroup(
			huh.NewInput().Title(fmt.Sprintf("Max Size (%d-%d)", max(m.group.CurrentSize, group.MinSize), group.MaxSize)).
				Value(&m.maxSize).Validate(validSize(max(m.group.CurrentSize, group.MinSize))),
			huh.NewSelect[group.Visibility]().Title("Visibility").Options(
				huh.NewOption("Public", group.VisibilityPublic),
				huh.NewOption("Private", group.VisibilityPrivate),
			).Value(&m.draft.Visibility),
			huh.NewConfirm().Title("Require approval to join?").Value(&m.draft.RequiresInvite),
			huh.NewConfirm().Title("Save changes?").Value(&m.save),
		),
	)
}

func (m *groupDetailModel) updateEdit(msg tea.Msg) tea.Cmd {
	if m.busy {
		return nil
	}
	if isKey(msg, "esc") {
		m.form = nil
		m.state = detailStateInfo
		return nil
	}
	var cmd tea.Cmd
	var err error
	m.form, cmd, err = updateForm(m.form, msg)
	if err != nil {
		m.state = detailStateInfo
		return failure("update group", err)
	}
	if m.form.State != huh.StateCompleted {
		return cmd
	}
	m.form = nil
	if !m.save {
		m.state = detailStateInfo
		return nil
	}

	m.draft.MaxSize, _ = strconv.Atoi(strings.TrimSpace(m.maxSize))
	m.busy = true
	ctx, groups, id, current, d := m.ctx, m.app.Groups, m.id, m.group.CurrentSize, m.draft
	return func() tea.Msg {
		_, err := groups.Update(ctx, id, current, d)
		return groupMutatedMsg{action: "update group", err: err}
	}
}

func (m *groupDetailModel) renderChat() {
	if len(m.chat) == 0 {
		m.viewport.SetContent(mutedStyle.Render("No messages yet. Start the conversation!"))
		return
	}
	me := m.app.Session.UserID()
	var b strings.Builder
	for _, msg := range m.chat {
		style := receivedStyle
		name := msg.SenderName
		if msg.SentBy(me) {
			style = sentStyle
			name = "You"
		}
		fmt.Fprintf(&b, "%s %s\n%s\n\n",
			titleStyle.Render(name),
			mutedStyle.Render(message.FormatListTime(msg.CreatedAt.Time, timeNow())),
			style.Render(msg.Content),
		)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *groupDetailModel) View() string {
	if m.loading && m.group == nil {
		return "Loading group..."
	}
	if m.group == nil {
		return "Group not found\n\n(esc to go back)"
	}

	switch m.state {
	case detailStateEdit:
		if m.busy {
			return "Saving..."
		}
		return titleStyle.Render("Edit Group") + "\n\n" + m.form.View() + "\n\n(esc to cancel)"
	case detailStateJoin:
		return m.dialog.View()
	case detailStateConfirm:
		return m.form.View() + "\n\n(esc to cancel)"
	}

	g := m.group
	me := m.app.Session.UserID()
	aff := group.AffordanceFor(g, me)

	var b strings.Builder
	b.WriteString(titleStyle.Render(g.Name))
	if g.Full() {
		b.WriteString(" " + badgeStyle.Render("FULL"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s • %s\n", g.CourseLabel(), g.PrivacyLabel())
	if g.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", g.Topic)
	}
	fmt.Fprintf(&b, "Members: %s/%s", humanize.Comma(int64(g.CurrentSize)), humanize.Comma(int64(g.MaxSize)))
	if g.CreatorName != "" {
		fmt.Fprintf(&b, " • Created by %s", g.CreatorName)
	}
	if !g.CreatedAt.IsZero() {
		fmt.Fprintf(&b, " %s", humanize.Time(g.CreatedAt.Time))
	}
	b.WriteString("\n")
	if g.Description != "" {
		b.WriteString("\n" + g.Description + "\n")
	}
	b.WriteString("\n")

	if m.member() {
		b.WriteString(titleStyle.Render("Group Chat") + "\n")
		b.WriteString(m.viewport.View() + "\n")
		if m.state == detailStateChat {
			b.WriteString(m.input.View() + "\n")
		}
	}

	var keys []string
	switch {
	case m.busy:
		keys = append(keys, "working...")
	case aff.Action == group.ActionJoin || aff.Action == group.ActionRequest:
		keys = append(keys, "j "+aff.Label)
	case aff.Action == group.ActionLeave:
		keys = append(keys, "l "+aff.Label)
	case aff.Action == group.ActionManage:
		keys = append(keys, "e "+aff.Label, "d Delete Group")
	}
	if m.state == detailStateChat {
		keys = append(keys, "enter send", "esc stop typing")
	} else {
		if m.member() {
			keys = append(keys, "c chat")
		}
		if g.CreatorID != 0 && g.CreatorID != me {
			keys = append(keys, "m message creator")
		}
		keys = append(keys, "r refresh", "esc back")
	}
	b.WriteString(mutedStyle.Render(strings.Join(keys, " • ")))
	return b.String()
}
