package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// PgDirectoryRepository reads identities and bookings from the marketplace
// schema. The tables are owned by the main CRUD side of the platform; this
// repository only ever reads them.
type PgDirectoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgDirectoryRepository(pool *pgxpool.Pool) *PgDirectoryRepository {
	return &PgDirectoryRepository{pool: pool}
}

var _ repository.Directory = (*PgDirectoryRepository)(nil)

func (r *PgDirectoryRepository) GetIdentity(ctx context.Context, id string) (comm.Identity, error) {
	if r == nil || r.pool == nil {
		return comm.Identity{}, errors.New("PgDirectoryRepository: nil pool")
	}
	var ident comm.Identity
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, role, COALESCE(phone, '')
		FROM users WHERE id = $1::uuid
	`, id).Scan(&ident.ID, &ident.Role, &ident.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return comm.Identity{}, fmt.Errorf("%w: user %s", comm.ErrNotFound, id)
	}
	if err != nil {
		return comm.Identity{}, err
	}
	return ident, nil
}

func (r *PgDirectoryRepository) GetBookingParticipants(ctx context.Context, bookingID string) (comm.BookingContext, error) {
	if r == nil || r.pool == nil {
		return comm.BookingContext{}, errors.New("PgDirectoryRepository: nil pool")
	}
	var b comm.BookingContext
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, customer_user_id::text, provider_user_id::text, status
		FROM bookings WHERE id = $1::uuid
	`, bookingID).Scan(&b.ID, &b.CustomerID, &b.ProviderID, &b.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return comm.BookingContext{}, fmt.Errorf("%w: booking %s", comm.ErrNotFound, bookingID)
	}
	if err != nil {
		return comm.BookingContext{}, err
	}
	return b, nil
}

func (r *PgDirectoryRepository) HasActiveBooking(ctx context.Context, userA, userB string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgDirectoryRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE status IN ('confirmed', 'in_progress')
			  AND ((customer_user_id = $1::uuid AND provider_user_id = $2::uuid)
			    OR (customer_user_id = $2::uuid AND provider_user_id = $1::uuid))
		)
	`, userA, userB).Scan(&exists)
	return exists, err
}

// PgAuditRepository appends activity entries to the audit log.
type PgAuditRepository struct {
	pool *pgxpool.Pool
}

func NewPgAuditRepository(pool *pgxpool.Pool) *PgAuditRepository {
	return &PgAuditRepository{pool: pool}
}

var _ repository.AuditRepository = (*PgAuditRepository)(nil)

func (r *PgAuditRepository) Record(ctx context.Context, actorID, action, detail string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgAuditRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_id, action, detail, created_at)
		VALUES ($1, $2, $3, now())
	`, actorID, action, detail)
	return err
}
