package message

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/notepid/campus_connect/internal/api"
	"github.com/notepid/campus_connect/internal/apitest"
)

func newRepo(t *testing.T) (*Repo, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	return NewRepo(api.New(srv.URL, apitest.StaticToken("tok"), 0)), srv
}

func TestSendDirectPrefersRecipientID(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Reply(http.MethodPost, "/api/messages/direct", http.StatusOK, gin.H{"id": 10, "content": "hey"})

	if _, err := repo.SendDirect(context.Background(), Recipient{ID: 7, Username: "alice"}, " hey "); err != nil {
		t.Fatalf("SendDirect returned error: %v", err)
	}
	r, _ := srv.Last(http.MethodPost, "/api/messages/direct")
	if r.Query.Get("recipientId") != "7" || r.Query.Has("recipientUsername") || r.Query.Get("content") != "hey" {
		t.Fatalf("unexpected query %v", r.Query)
	}

	if _, err := repo.SendDirect(context.Background(), Recipient{Username: "alice"}, "hey"); err != nil {
		t.Fatalf("SendDirect returned error: %v", err)
	}
	r, _ = srv.Last(http.MethodPost, "/api/messages/direct")
	if r.Query.Get("recipientUsername") != "alice" || r.Query.Has("recipientId") {
		t.Fatalf("unexpected query %v", r.Query)
	}
}

func TestSendRejectsBlankContent(t *testing.T) {
	repo, srv := newRepo(t)
	if _, err := repo.SendGroup(context.Background(), 3, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := repo.SendDirect(context.Background(), Recipient{ID: 2}, ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestSendGroup(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Reply(http.MethodPost, "/api/messages/group", http.StatusOK, gin.H{"id": 11, "groupId": 3, "content": "hello"})

	m, err := repo.SendGroup(context.Background(), 3, "hello")
	if err != nil {
		t.Fatalf("SendGroup returned error: %v", err)
	}
	if m.GroupID != 3 {
		t.Fatalf("unexpected message %+v", m)
	}
	r, _ := srv.Last(http.MethodPost, "/api/messages/group")
	if r.Query.Get("groupId") != "3" || r.Query.Get("content") != "hello" {
		t.Fatalf("unexpected query %v", r.Query)
	}
}

func TestUnreadCountBareNumber(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Reply(http.MethodGet, "/api/messages/unread-count", http.StatusOK, 4)

	n, err := repo.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadCount returned error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
}

func TestDirectSortsOldestFirst(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Reply(http.MethodGet, "/api/messages/direct/:peer", http.StatusOK, []gin.H{
		{"id": 2, "createdAt": "2024-03-01T10:05:00"},
		{"id": 1, "createdAt": "2024-03-01T10:01:00"},
	})

	msgs, err := repo.Direct(context.Background(), 2)
	if err != nil {
		t.Fatalf("Direct returned error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != 1 {
		t.Fatalf("unexpected order %+v", msgs)
	}
	if r, _ := srv.Last(http.MethodGet, "/api/messages/direct/:peer"); r.Path != "/api/messages/direct/2" {
		t.Fatalf("unexpected path %s", r.Path)
	}
}

func TestMarkThreadReadReportsPartialFailure(t *testing.T) {
	repo, srv := newRepo(t)
	srv.Handle(http.MethodPost, "/api/messages/:id/read", func(c *gin.Context) {
		if c.Param("id") == "3" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
			return
		}
		c.Status(http.StatusOK)
	})

	msgs := []*Message{
		direct(1, 2, me, 1, false),
		direct(2, me, 2, 2, false), // mine
		direct(3, 2, me, 3, false),
		direct(4, 2, me, 4, true), // already read
		direct(5, 2, me, 5, false),
	}
	out := repo.MarkThreadRead(context.Background(), msgs, me)

	if len(out.Marked) != 2 || out.Marked[0] != 1 || out.Marked[1] != 5 {
		t.Fatalf("unexpected marked %v", out.Marked)
	}
	if len(out.Failed) != 1 || out.Failed[0].ID != 3 {
		t.Fatalf("unexpected failures %+v", out.Failed)
	}
	if api.KindOf(out.Err()) != api.KindServer {
		t.Fatalf("expected server error kind, got %v", out.Err())
	}
	if n := srv.Count(http.MethodPost, "/api/messages/:id/read"); n != 3 {
		t.Fatalf("expected 3 mark-read calls, got %d", n)
	}
}

func TestMarkThreadReadNothingToDo(t *testing.T) {
	repo, srv := newRepo(t)
	out := repo.MarkThreadRead(context.Background(), []*Message{direct(1, me, 2, 1, false)}, me)
	if len(out.Marked) != 0 || out.Err() != nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}
