package repository

import (
	"context"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
)

// Directory is the read-only view of the identity and booking subsystems.
// Lookups return comm.ErrNotFound (wrapped) for unknown ids. Results are
// never cached by callers: grants must reflect the latest booking state.
type Directory interface {
	GetIdentity(ctx context.Context, id string) (comm.Identity, error)
	GetBookingParticipants(ctx context.Context, bookingID string) (comm.BookingContext, error)
	HasActiveBooking(ctx context.Context, userA, userB string) (bool, error)
}

// AuditRepository records best-effort activity entries. Failures here must
// never fail a primary write; the queue handler owns retry policy.
type AuditRepository interface {
	Record(ctx context.Context, actorID, action, detail string) error
}
