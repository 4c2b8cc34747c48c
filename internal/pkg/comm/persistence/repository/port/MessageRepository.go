package repository

import (
	"context"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
)

// ChannelQuery addresses one conversation for reads and read-flag updates.
// Exactly one of PeerID or BookingID is set; IdentityID is the requesting
// side of the channel.
type ChannelQuery struct {
	IdentityID string
	PeerID     string
	BookingID  string
}

// MessageRepository defines persistence for the append-only message log and
// its read/unread projection.
type MessageRepository interface {
	// Save appends a message and returns the id the store assigned.
	Save(ctx context.Context, m comm.Message) (string, error)

	// ListByChannel returns the channel's messages oldest to newest,
	// restartable via limit/offset. Direct and admin channels return the
	// union of both directions between the pair; booking channels return
	// everything tagged with the booking.
	ListByChannel(ctx context.Context, q ChannelQuery, limit, offset int) ([]comm.Message, error)

	// ListByIdentity returns every message the identity sent or received,
	// oldest to newest. Conversation summaries are derived from this in a
	// single pass by the caller.
	ListByIdentity(ctx context.Context, identityID string) ([]comm.Message, error)

	// MarkRead flips is_read on all unread messages addressed to the
	// identity within the channel, atomically, and reports how many rows
	// changed. Calling twice is a no-op the second time.
	MarkRead(ctx context.Context, q ChannelQuery) (int64, error)
}
