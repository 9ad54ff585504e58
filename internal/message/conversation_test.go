package message

import (
	"testing"
	"time"

	"github.com/notepid/campus_connect/internal/api"
)

const me = int64(1)

func at(minute int) api.Timestamp {
	return api.Timestamp{Time: time.Date(2024, 3, 1, 10, minute, 0, 0, time.Local)}
}

func direct(id, from, to int64, minute int, read bool) *Message {
	names := map[int64]string{1: "me", 2: "alice", 3: "bob", 4: "carol"}
	return &Message{
		ID:            id,
		SenderID:      from,
		SenderName:    names[from],
		RecipientID:   to,
		RecipientName: names[to],
		Content:       "hi",
		Type:          TypeDirect,
		IsRead:        read,
		CreatedAt:     at(minute),
	}
}

func TestConversationsOnePerPeer(t *testing.T) {
	msgs := []*Message{
		direct(1, 2, me, 1, false),
		direct(2, me, 2, 2, false), // sent by me, never counts as unread
		direct(3, 3, me, 3, false),
		direct(4, 3, me, 4, true),
		direct(5, me, 4, 5, true),
		direct(6, 2, me, 6, false),
	}

	convs := Conversations(msgs, me)
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(convs))
	}

	byPeer := map[int64]*Conversation{}
	for _, c := range convs {
		if _, dup := byPeer[c.PeerID]; dup {
			t.Fatalf("duplicate conversation for peer %d", c.PeerID)
		}
		byPeer[c.PeerID] = c
	}
	if c := byPeer[2]; c.Unread != 2 || len(c.Messages) != 3 || c.Last.ID != 6 || c.PeerName != "alice" {
		t.Fatalf("unexpected alice conversation %+v", c)
	}
	if c := byPeer[3]; c.Unread != 1 || c.Last.ID != 4 {
		t.Fatalf("unexpected bob conversation %+v", c)
	}
	if c := byPeer[4]; c.Unread != 0 || c.PeerName != "carol" {
		t.Fatalf("unexpected carol conversation %+v", c)
	}
	if n := TotalUnread(convs); n != 3 {
		t.Fatalf("expected 3 unread, got %d", n)
	}
}

func TestConversationsSortedByLatestDescending(t *testing.T) {
	msgs := []*Message{
		direct(1, 4, me, 30, true),
		direct(2, 2, me, 10, true),
		direct(3, me, 3, 20, true),
		direct(4, 2, me, 5, true),
	}
	forward := Conversations(msgs, me)
	reversed := Conversations([]*Message{msgs[3], msgs[2], msgs[1], msgs[0]}, me)

	want := []int64{4, 3, 2}
	for _, convs := range [][]*Conversation{forward, reversed} {
		if len(convs) != len(want) {
			t.Fatalf("expected %d conversations, got %d", len(want), len(convs))
		}
		for i, c := range convs {
			if c.PeerID != want[i] {
				t.Fatalf("position %d: expected peer %d, got %d", i, want[i], c.PeerID)
			}
		}
	}
}

func TestConversationsIgnoreGroupMessages(t *testing.T) {
	msgs := []*Message{
		{ID: 1, SenderID: 2, GroupID: 9, Type: TypeGroup, CreatedAt: at(1)},
		direct(2, 2, me, 2, false),
	}
	convs := Conversations(msgs, me)
	if len(convs) != 1 || len(convs[0].Messages) != 1 {
		t.Fatalf("expected only the direct message, got %+v", convs)
	}
}

func TestConversationsEmpty(t *testing.T) {
	if convs := Conversations(nil, me); len(convs) != 0 {
		t.Fatalf("expected no conversations, got %d", len(convs))
	}
}

func TestThreadOldestFirst(t *testing.T) {
	msgs := []*Message{
		direct(3, 2, me, 9, false),
		direct(1, me, 2, 1, true),
		direct(2, 3, me, 5, false),
		direct(4, 2, me, 3, true),
	}
	thread := Thread(msgs, me, 2)
	if len(thread) != 3 || thread[0].ID != 1 || thread[1].ID != 4 || thread[2].ID != 3 {
		t.Fatalf("unexpected thread %+v", thread)
	}
}

func TestPreview(t *testing.T) {
	short := "see you at the library"
	if got := Preview(short); got != short {
		t.Fatalf("expected short content unchanged, got %q", got)
	}
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
	if got := Preview(long); got != long[:50]+"..." {
		t.Fatalf("unexpected preview %q", got)
	}
}

func TestFormatListTime(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.Local)
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-2 * time.Hour), "4:00 PM"},
		{now.Add(-30 * time.Hour), "Yesterday"},
		{time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local), "Tue"},
		{time.Date(2024, 2, 2, 9, 0, 0, 0, time.Local), "Feb 2"},
		{time.Time{}, ""},
	}
	for _, tc := range cases {
		if got := FormatListTime(tc.t, now); got != tc.want {
			t.Fatalf("FormatListTime(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}
