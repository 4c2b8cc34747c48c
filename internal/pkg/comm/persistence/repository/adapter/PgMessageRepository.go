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

const messageColumns = "id::text, sender_id::text, receiver_id::text, booking_id::text, content, chat_type, is_read, created_at"

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) Save(ctx context.Context, m comm.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessageRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, booking_id, content, chat_type, is_read, created_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, false, $6)
		RETURNING id::text
	`, m.SenderID, m.ReceiverID, m.BookingID, m.Content, m.ChatType, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessageRepository) ListByChannel(ctx context.Context, q repository.ChannelQuery, limit, offset int) ([]comm.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		rows pgx.Rows
		err  error
	)
	if q.BookingID != "" {
		rows, err = r.pool.Query(ctx, fmt.Sprintf(`
			SELECT %s FROM messages
			WHERE booking_id = $1::uuid AND chat_type = 'booking'
			ORDER BY created_at ASC
			LIMIT $2 OFFSET $3
		`, messageColumns), q.BookingID, limit, offset)
	} else {
		rows, err = r.pool.Query(ctx, fmt.Sprintf(`
			SELECT %s FROM messages
			WHERE chat_type <> 'booking'
			  AND ((sender_id = $1::uuid AND receiver_id = $2::uuid)
			    OR (sender_id = $2::uuid AND receiver_id = $1::uuid))
			ORDER BY created_at ASC
			LIMIT $3 OFFSET $4
		`, messageColumns), q.IdentityID, q.PeerID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageRepository) ListByIdentity(ctx context.Context, identityID string) ([]comm.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM messages
		WHERE sender_id = $1::uuid OR receiver_id = $1::uuid
		ORDER BY created_at ASC
	`, messageColumns), identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, q repository.ChannelQuery) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	if q.BookingID != "" {
		ct, err := r.pool.Exec(ctx, `
			UPDATE messages SET is_read = true
			WHERE booking_id = $1::uuid AND chat_type = 'booking'
			  AND receiver_id = $2::uuid AND is_read = false
		`, q.BookingID, q.IdentityID)
		if err != nil {
			return 0, err
		}
		return ct.RowsAffected(), nil
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE chat_type <> 'booking'
		  AND receiver_id = $1::uuid AND sender_id = $2::uuid AND is_read = false
	`, q.IdentityID, q.PeerID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func scanMessages(rows pgx.Rows) ([]comm.Message, error) {
	var msgs []comm.Message
	for rows.Next() {
		var (
			msg      comm.Message
			receiver *string
			booking  *string
		)
		if err := rows.Scan(&msg.ID, &msg.SenderID, &receiver, &booking, &msg.Content, &msg.ChatType, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.ReceiverID = receiver
		msg.BookingID = booking
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}
