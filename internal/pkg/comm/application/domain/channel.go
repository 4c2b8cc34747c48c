package comm

import "strings"

// ChannelType is the logical conversation scope governing who may exchange
// messages. It is decided once by the authorization engine and stored on the
// message at write time, never re-derived at read time.
type ChannelType string

const (
	ChannelDirect  ChannelType = "direct"
	ChannelBooking ChannelType = "booking"
	ChannelAdmin   ChannelType = "admin"
)

// ChannelKey is the canonical identifier of a conversation, used to
// deduplicate messages into conversation summaries. Direct and admin
// channels key on the unordered peer pair, booking channels on the booking.
type ChannelKey string

// DirectKey builds the key for a direct or admin channel between two peers.
// The pair is ordered so both directions map to the same key.
func DirectKey(a, b string) ChannelKey {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return ChannelKey("d:" + a + ":" + b)
}

// BookingKey builds the key for a booking-scoped channel.
func BookingKey(bookingID string) ChannelKey {
	return ChannelKey("b:" + bookingID)
}

// Key derives the canonical channel key for a message.
func (m Message) Key() ChannelKey {
	if m.ChatType == ChannelBooking && m.BookingID != nil {
		return BookingKey(*m.BookingID)
	}
	receiver := ""
	if m.ReceiverID != nil {
		receiver = *m.ReceiverID
	}
	return DirectKey(m.SenderID, receiver)
}
