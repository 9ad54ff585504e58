package message

import (
	"github.com/notepid/campus_connect/internal/api"
)

// Type distinguishes direct messages from group broadcasts.
type Type string

const (
	TypeDirect Type = "DIRECT"
	TypeGroup  Type = "GROUP"
)

// Message is a direct or group message. Both kinds share this shape; a direct
// message has a recipient and a group message has a group.
type Message struct {
	ID            int64         `json:"id"`
	SenderID      int64         `json:"senderId"`
	SenderName    string        `json:"senderName"`
	RecipientID   int64         `json:"recipientId"`
	RecipientName string        `json:"recipientName"`
	GroupID       int64         `json:"groupId"`
	GroupName     string        `json:"groupName"`
	Content       string        `json:"content"`
	Type          Type          `json:"type"`
	IsRead        bool          `json:"isRead"`
	CreatedAt     api.Timestamp `json:"createdAt"`
}

// SentBy reports whether userID wrote the message.
func (m *Message) SentBy(userID int64) bool {
	return m.SenderID == userID
}

// UnreadFor reports whether the message is addressed to userID and not yet read.
func (m *Message) UnreadFor(userID int64) bool {
	return !m.IsRead && m.RecipientID != 0 && m.RecipientID == userID
}

// Recipient identifies the other party of a direct message. ID wins when set;
// Username is used to start a conversation with someone not yet in the inbox.
type Recipient struct {
	ID       int64
	Username string
}
