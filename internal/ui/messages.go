package ui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/message"
)

type messagesState int

const (
	messagesStateList messagesState = iota
	messagesStateThread
	messagesStateCompose
	messagesStateNew
)

type inboxMsg struct {
	result message.PollResult
	polled bool
}

type threadMsg struct {
	peerID   int64
	messages []*message.Message
	err      error
}

type markedReadMsg struct {
	outcome message.ReadOutcome
}

type directSentMsg struct {
	to  message.Recipient
	msg *message.Message
	err error
}

type messagesModel struct {
	app    *app.App
	ctx    context.Context
	poller *message.Poller

	width  int
	height int

	state   messagesState
	inbox   []*message.Message
	convs   []*message.Conversation
	loaded  bool
	list    list.Model
	pending *message.Recipient

	peer     *message.Recipient
	thread   []*message.Message
	viewport viewport.Model
	input    textinput.Model
	sending  bool

	form       *huh.Form
	newTo      string
	newContent string
}

func newMessagesModel(a *app.App, ctx context.Context, peer *message.Recipient) *messagesModel {
	in := textinput.New()
	in.Placeholder = "Type a message..."
	in.CharLimit = 1000

	m := &messagesModel{
		app:      a,
		ctx:      ctx,
		poller:   a.NewPoller(),
		pending:  peer,
		viewport: viewport.New(0, 0),
		input:    in,
	}
	m.list = newList(nil, "Conversations", 0, 0)
	return m
}

// Init starts inbox polling for as long as the screen is open.
func (m *messagesModel) Init() tea.Cmd {
	m.poller.Start(m.ctx)
	cmds := []tea.Cmd{m.waitPoll()}
	if m.pending != nil {
		cmds = append(cmds, m.open(*m.pending))
		m.pending = nil
	}
	return tea.Batch(cmds...)
}

// Close stops polling.
func (m *messagesModel) Close() {
	m.poller.Stop()
}

func (m *messagesModel) waitPoll() tea.Cmd {
	p := m.poller
	return func() tea.Msg {
		r, ok := p.Next()
		if !ok {
			return nil
		}
		return inboxMsg{result: r, polled: true}
	}
}

func (m *messagesModel) fetchInbox() tea.Cmd {
	ctx, msgs := m.ctx, m.app.Messages
	return func() tea.Msg {
		inbox, err := msgs.Inbox(ctx)
		return inboxMsg{result: message.PollResult{Messages: inbox, Err: err, At: timeNow()}}
	}
}

func (m *messagesModel) fetchThread(peerID int64) tea.Cmd {
	ctx, msgs := m.ctx, m.app.Messages
	return func() tea.Msg {
		thread, err := msgs.Direct(ctx, peerID)
		return threadMsg{peerID: peerID, messages: thread, err: err}
	}
}

func (m *messagesModel) markRead(thread []*message.Message) tea.Cmd {
	me := m.app.Session.UserID()
	unread := false
	for _, msg := range thread {
		if msg.UnreadFor(me) {
			unread = true
			break
		}
	}
	if !unread {
		return nil
	}
	ctx, msgs := m.ctx, m.app.Messages
	return func() tea.Msg {
		return markedReadMsg{outcome: msgs.MarkThreadRead(ctx, thread, me)}
	}
}

func (m *messagesModel) SetSize(w, h int) {
	m.width, m.height = w, h
	listW := min(max(w/3, 24), w)
	m.list.SetSize(listW, max(h-1, 3))
	m.viewport.Width = max(w-listW-2, 10)
	m.viewport.Height = max(h-4, 3)
	m.input.Width = max(w-listW-6, 10)
	m.renderThread()
}

func (m *messagesModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case inboxMsg:
		var next tea.Cmd
		if msg.polled {
			next = m.waitPoll()
		}
		if msg.result.Err != nil {
			log.Printf("messages: fetch inbox: %v", msg.result.Err)
			return next
		}
		m.loaded = true
		m.inbox = msg.result.Messages
		m.convs = message.Conversations(m.inbox, m.app.Session.UserID())
		m.refreshList()
		return next
	case threadMsg:
		if m.peer == nil || msg.peerID != m.peer.ID {
			return nil
		}
		if msg.err != nil {
			log.Printf("messages: fetch thread %d: %v", msg.peerID, msg.err)
			m.thread = nil
		} else {
			m.thread = msg.messages
		}
		m.renderThread()
		return m.markRead(m.thread)
	case markedReadMsg:
		if len(msg.outcome.Failed) > 0 {
			log.Printf("messages: mark read: %s", msg.outcome)
		}
		return nil
	case directSentMsg:
		m.sending = false
		if msg.err != nil {
			if m.state == messagesStateNew {
				m.form = m.newForm()
				return tea.Batch(failure("send message", msg.err), m.form.Init())
			}
			return failure("send message", msg.err)
		}
		m.input.Reset()
		if m.state == messagesStateNew && msg.msg != nil {
			name := msg.msg.RecipientName
			if name == "" {
				name = msg.to.Username
			}
			m.peer = &message.Recipient{ID: msg.msg.RecipientID, Username: name}
			m.state = messagesStateThread
		}
		cmds := []tea.Cmd{m.fetchInbox()}
		if m.peer != nil && m.peer.ID != 0 {
			cmds = append(cmds, m.fetchThread(m.peer.ID))
		}
		return tea.Batch(cmds...)
	}

	switch m.state {
	case messagesStateThread, messagesStateCompose:
		return m.updateThread(msg)
	case messagesStateNew:
		return m.updateNew(msg)
	default:
		return m.updateList(msg)
	}
}

func (m *messagesModel) updateList(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			it, ok := m.list.SelectedItem().(entry)
			if !ok {
				return nil
			}
			for _, c := range m.convs {
				if c.PeerID == it.id {
					return m.open(message.Recipient{ID: c.PeerID, Username: c.PeerName})
				}
			}
			return nil
		case "n":
			return m.startNew()
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

// open selects a conversation and loads its full thread. The thread is seeded
// from the inbox so it shows at once.
func (m *messagesModel) open(peer message.Recipient) tea.Cmd {
	m.peer = &peer
	m.state = messagesStateCompose
	m.thread = message.Thread(m.inbox, m.app.Session.UserID(), peer.ID)
	m.renderThread()
	return tea.Batch(m.input.Focus(), m.fetchThread(peer.ID))
}

func (m *messagesModel) updateThread(msg tea.Msg) tea.Cmd {
	switch {
	case isKey(msg, "esc"):
		if m.state == messagesStateCompose {
			m.input.Blur()
			m.state = messagesStateThread
			return nil
		}
		m.peer = nil
		m.thread = nil
		m.state = messagesStateList
		return nil
	case m.state == messagesStateThread && isKey(msg, "c", "i"):
		m.state = messagesStateCompose
		return m.input.Focus()
	case isKey(msg, "pgup", "pgdown", "up", "down"):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	case m.state == messagesStateCompose && isKey(msg, "enter"):
		content := strings.TrimSpace(m.input.Value())
		if content == "" || m.sending || m.peer == nil {
			return nil
		}
		m.sending = true
		return m.send(*m.peer, content)
	}
	if m.state != messagesStateCompose {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *messagesModel) send(to message.Recipient, content string) tea.Cmd {
	ctx, msgs := m.ctx, m.app.Messages
	return func() tea.Msg {
		sent, err := msgs.SendDirect(ctx, to, content)
		return directSentMsg{to: to, msg: sent, err: err}
	}
}

func (m *messagesModel) startNew() tea.Cmd {
	m.state = messagesStateNew
	m.newTo, m.newContent = "", ""
	m.form = m.newForm()
	return m.form.Init()
}

func (m *messagesModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("To (username)").Value(&m.newTo).Validate(nonEmpty("username")),
			huh.NewText().Title("Message").Value(&m.newContent).Validate(nonEmpty("message")),
		),
	)
}

func (m *messagesModel) updateNew(msg tea.Msg) tea.Cmd {
	if isKey(msg, "esc") {
		m.form = nil
		m.state = messagesStateList
		return nil
	}
	if m.sending {
		return nil
	}
	var cmd tea.Cmd
	var err error
	m.form, cmd, err = updateForm(m.form, msg)
	if err != nil {
		m.state = messagesStateList
		return failure("send message", err)
	}
	if m.form.State != huh.StateCompleted {
		return cmd
	}
	m.sending = true
	return m.send(message.Recipient{Username: strings.TrimSpace(m.newTo)}, m.newContent)
}

func (m *messagesModel) refreshList() {
	now := timeNow()
	items := make([]list.Item, 0, len(m.convs))
	for _, c := range m.convs {
		title := c.PeerName
		if c.Unread > 0 {
			title += " " + badgeStyle.Render(fmt.Sprint(c.Unread))
		}
		desc := message.FormatListTime(c.Last.CreatedAt.Time, now) + " • " + message.Preview(c.Last.Content)
		items = append(items, entry{id: c.PeerID, title: title, desc: desc, kind: "conversation"})
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Conversations (%d unread)", message.TotalUnread(m.convs))
}

func (m *messagesModel) renderThread() {
	if m.peer == nil {
		m.viewport.SetContent("")
		return
	}
	if len(m.thread) == 0 {
		m.viewport.SetContent(mutedStyle.Render("No messages yet. Start the conversation!"))
		return
	}
	me := m.app.Session.UserID()
	now := timeNow()
	var b strings.Builder
	for _, msg := range m.thread {
		stamp := message.FormatListTime(msg.CreatedAt.Time, now)
		if msg.SentBy(me) {
			status := "✓"
			if msg.IsRead {
				status = "✓✓"
			}
			fmt.Fprintf(&b, "%s\n%s\n\n", sentStyle.Render(msg.Content), mutedStyle.Render(stamp+" "+status))
		} else {
			fmt.Fprintf(&b, "%s\n%s\n\n", receivedStyle.Render(msg.Content), mutedStyle.Render(stamp))
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *messagesModel) View() string {
	if m.state == messagesStateNew {
		if m.sending {
			return "Sending..."
		}
		return titleStyle.Render("New Message") + "\n\n" + m.form.View() + "\n\n(esc to cancel)"
	}

	left := m.list.View()
	if len(m.convs) == 0 {
		if m.loaded {
			left = "No conversations yet.\n\nPress n to start one."
		} else {
			left = "Loading conversations..."
		}
	}

	var right string
	if m.peer == nil {
		right = mutedStyle.Render("Select a conversation to start messaging")
	} else {
		right = titleStyle.Render(m.peer.Username) + "\n" + m.viewport.View()
		if m.state == messagesStateCompose {
			right += "\n" + m.input.View()
		}
	}

	var hint string
	switch m.state {
	case messagesStateCompose:
		hint = "enter send • esc stop typing"
	case messagesStateThread:
		hint = "c reply • esc back to list"
	default:
		hint = "enter open • n new message"
	}

	leftW := m.list.Width()
	return joinColumns(left, right, leftW) + "\n" + mutedStyle.Render(hint)
}
