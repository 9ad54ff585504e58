package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/notepid/campus_connect/internal/api"
)

// markReadLimit bounds concurrent mark-read calls.
const markReadLimit = 4

// ErrEmptyMessage is returned when sending blank content.
var ErrEmptyMessage = errors.New("message cannot be empty")

// Repo reads and sends messages through the backend.
type Repo struct {
	api *api.Client
}

// NewRepo creates a new message repository.
func NewRepo(client *api.Client) *Repo {
	return &Repo{api: client}
}

func (r *Repo) list(ctx context.Context, path string) ([]*Message, error) {
	var msgs []*Message
	if err := r.api.Get(ctx, path, nil, &msgs); err != nil {
		return nil, fmt.Errorf("list messages %s: %w", path, err)
	}
	return msgs, nil
}

// Inbox returns the direct messages involving the caller.
func (r *Repo) Inbox(ctx context.Context) ([]*Message, error) {
	return r.list(ctx, "/api/messages/inbox")
}

// Group returns a group's chat history, oldest first.
func (r *Repo) Group(ctx context.Context, groupID int64) ([]*Message, error) {
	msgs, err := r.list(ctx, "/api/messages/group/"+api.PathID(groupID))
	if err != nil {
		return nil, err
	}
	SortOldestFirst(msgs)
	return msgs, nil
}

// Direct returns the full thread with a peer, oldest first.
func (r *Repo) Direct(ctx context.Context, peerID int64) ([]*Message, error) {
	msgs, err := r.list(ctx, "/api/messages/direct/"+api.PathID(peerID))
	if err != nil {
		return nil, err
	}
	SortOldestFirst(msgs)
	return msgs, nil
}

// UnreadCount returns the number of unread direct messages for the caller.
func (r *Repo) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.api.Get(ctx, "/api/messages/unread-count", nil, &n); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}

// SendGroup posts content to a group chat.
func (r *Repo) SendGroup(ctx context.Context, groupID int64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	q := url.Values{
		"groupId": {api.PathID(groupID)},
		"content": {content},
	}
	m := &Message{}
	if err := r.api.Post(ctx, "/api/messages/group", q, nil, m); err != nil {
		return nil, fmt.Errorf("send group message %d: %w", groupID, err)
	}
	return m, nil
}

// SendDirect sends content to a user, addressed by id when known and by
// username otherwise.
func (r *Repo) SendDirect(ctx context.Context, to Recipient, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	q := url.Values{"content": {content}}
	switch {
	case to.ID != 0:
		q.Set("recipientId", api.PathID(to.ID))
	case strings.TrimSpace(to.Username) != "":
		q.Set("recipientUsername", strings.TrimSpace(to.Username))
	default:
		return nil, fmt.Errorf("recipient is required")
	}

	m := &Message{}
	if err := r.api.Post(ctx, "/api/messages/direct", q, nil, m); err != nil {
		return nil, fmt.Errorf("send direct message: %w", err)
	}
	return m, nil
}

// MarkRead marks one message as read.
func (r *Repo) MarkRead(ctx context.Context, id int64) error {
	if err := r.api.Post(ctx, "/api/messages/"+api.PathID(id)+"/read", nil, nil, nil); err != nil {
		return fmt.Errorf("mark message %d read: %w", id, err)
	}
	return nil
}

// ReadFailure is a message that could not be marked read.
type ReadFailure struct {
	ID  int64
	Err error
}

// ReadOutcome reports a batch of mark-read calls. Partial failure is normal.
type ReadOutcome struct {
	Marked []int64
	Failed []ReadFailure
}

// Err joins the failures, or returns nil if every call succeeded.
func (o ReadOutcome) Err() error {
	if len(o.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(o.Failed))
	for _, f := range o.Failed {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

func (o ReadOutcome) String() string {
	return strconv.Itoa(len(o.Marked)) + " marked, " + strconv.Itoa(len(o.Failed)) + " failed"
}

// MarkThreadRead marks every unread message addressed to me. The calls run
// concurrently and are not retried; each result is reported in the outcome.
func (r *Repo) MarkThreadRead(ctx context.Context, msgs []*Message, me int64) ReadOutcome {
	var (
		mu  sync.Mutex
		out ReadOutcome
		g   errgroup.Group
	)
	g.SetLimit(markReadLimit)

	for _, m := range msgs {
		if m == nil || !m.UnreadFor(me) {
			continue
		}
		id := m.ID
		g.Go(func() error {
			err := r.MarkRead(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("messages: %v", err)
				out.Failed = append(out.Failed, ReadFailure{ID: id, Err: err})
				return nil
			}
			out.Marked = append(out.Marked, id)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out.Marked, func(i, j int) bool { return out.Marked[i] < out.Marked[j] })
	sort.Slice(out.Failed, func(i, j int) bool { return out.Failed[i].ID < out.Failed[j].ID })
	return out
}
