package comm

import (
	"fmt"
	"strings"
	"time"
)

// Message is an immutable entry in the append-only conversation log.
// Exactly one of ReceiverID or BookingID is the primary addressing key;
// both may be set for a booking-scoped reply, and ChatType disambiguates.
// IsRead transitions false -> true only, flipped in batch by the recipient.
type Message struct {
	ID         string      `db:"id"`
	SenderID   string      `db:"sender_id"`
	ReceiverID *string     `db:"receiver_id"`
	BookingID  *string     `db:"booking_id"`
	Content    string      `db:"content"`
	ChatType   ChannelType `db:"chat_type"`
	IsRead     bool        `db:"is_read"`
	CreatedAt  time.Time   `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
// The server assigns the timestamp; content survives as sent otherwise.
func NewMessage(m Message) (*Message, error) {
	if m.SenderID == "" {
		return nil, fmt.Errorf("%w: sender_id is required", ErrValidation)
	}
	if m.ReceiverID == nil && m.BookingID == nil {
		return nil, fmt.Errorf("%w: receiver_id or booking_id is required", ErrValidation)
	}
	if strings.TrimSpace(m.Content) == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrValidation)
	}
	if m.ChatType == "" {
		return nil, fmt.Errorf("%w: chat_type is required", ErrValidation)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}

// ConversationSummary is one distinct channel with its latest message and
// the unread count for the identity the listing was built for.
type ConversationSummary struct {
	Key         ChannelKey  `json:"key"`
	ChatType    ChannelType `json:"chat_type"`
	PeerID      string      `json:"peer_id,omitempty"`
	BookingID   string      `json:"booking_id,omitempty"`
	LastMessage Message     `json:"last_message"`
	Unread      int         `json:"unread"`
	Online      bool        `json:"online"`
}
