package message

import (
	"sort"
	"time"
)

// previewLimit is the number of characters shown in a conversation preview.
const previewLimit = 50

// Conversation summarizes the direct messages exchanged with one peer.
type Conversation struct {
	PeerID   int64
	PeerName string
	Messages []*Message
	Last     *Message
	Unread   int
}

// Conversations partitions direct messages by the other party and returns one
// summary per peer, most recent first. Unread counts only messages addressed
// to me. Group messages are ignored.
func Conversations(msgs []*Message, me int64) []*Conversation {
	byPeer := make(map[int64]*Conversation)
	var out []*Conversation

	for _, m := range msgs {
		if m == nil || m.GroupID != 0 || m.Type == TypeGroup {
			continue
		}
		peerID, peerName := m.RecipientID, m.RecipientName
		if m.RecipientID == me {
			peerID, peerName = m.SenderID, m.SenderName
		}

		c, ok := byPeer[peerID]
		if !ok {
			c = &Conversation{PeerID: peerID, PeerName: peerName}
			byPeer[peerID] = c
			out = append(out, c)
		}
		if c.PeerName == "" {
			c.PeerName = peerName
		}
		c.Messages = append(c.Messages, m)
		if c.Last == nil || m.CreatedAt.After(c.Last.CreatedAt.Time) {
			c.Last = m
		}
		if m.UnreadFor(me) {
			c.Unread++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Last.CreatedAt.After(out[j].Last.CreatedAt.Time)
	})
	return out
}

// TotalUnread sums the unread counts of all conversations.
func TotalUnread(convs []*Conversation) int {
	n := 0
	for _, c := range convs {
		n += c.Unread
	}
	return n
}

// Thread returns the messages exchanged with peer, oldest first.
func Thread(msgs []*Message, me, peer int64) []*Message {
	var out []*Message
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if (m.SenderID == me && m.RecipientID == peer) || (m.SenderID == peer && m.RecipientID == me) {
			out = append(out, m)
		}
	}
	SortOldestFirst(out)
	return out
}

// SortOldestFirst orders msgs by creation time, keeping ties in input order.
func SortOldestFirst(msgs []*Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt.Time)
	})
}

// Preview shortens content for the conversation list.
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLimit {
		return content
	}
	return string(r[:previewLimit]) + "..."
}

// FormatListTime renders t relative to now: clock time within the last day,
// "Yesterday", a short weekday within a week, otherwise "Jan 2".
func FormatListTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return t.Format("3:04 PM")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return t.Format("Mon")
	default:
		return t.Format("Jan 2")
	}
}
