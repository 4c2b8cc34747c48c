package usecase

import (
	"context"
	"fmt"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// MarkReadInput identifies the conversation the identity just opened.
type MarkReadInput struct {
	IdentityID string
	PeerID     string
	BookingID  string
}

// MarkReadUseCase flips the unread messages of one conversation for the
// recipient, in batch. Idempotent: the second call reports zero rows.
type MarkReadUseCase struct {
	Repo repository.MessageRepository
}

func NewMarkReadUseCase(repo repository.MessageRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (int64, error) {
	if in.IdentityID == "" {
		return 0, comm.ErrUnauthorized
	}
	if (in.PeerID == "") == (in.BookingID == "") {
		return 0, fmt.Errorf("%w: exactly one of peer_id or booking_id is required", comm.ErrValidation)
	}
	count, err := uc.Repo.MarkRead(ctx, repository.ChannelQuery{
		IdentityID: in.IdentityID,
		PeerID:     in.PeerID,
		BookingID:  in.BookingID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
