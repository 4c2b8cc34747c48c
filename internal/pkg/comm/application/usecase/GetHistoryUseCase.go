package usecase

import (
	"context"
	"errors"
	"fmt"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// GetHistoryInput addresses one conversation. Exactly one of PeerID or
// BookingID must be set.
type GetHistoryInput struct {
	IdentityID string
	PeerID     string
	BookingID  string
	Limit      int
	Offset     int
}

// GetHistoryUseCase pages a channel's messages oldest to newest. History
// outlives the channel: a terminated booking channel stays readable to its
// participants even though new sends are denied.
type GetHistoryUseCase struct {
	Dir  repository.Directory
	Repo repository.MessageRepository
}

func NewGetHistoryUseCase(dir repository.Directory, repo repository.MessageRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Dir: dir, Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]comm.Message, error) {
	if in.IdentityID == "" {
		return nil, comm.ErrUnauthorized
	}
	if (in.PeerID == "") == (in.BookingID == "") {
		return nil, fmt.Errorf("%w: exactly one of peer_id or booking_id is required", comm.ErrValidation)
	}

	if in.BookingID != "" {
		booking, err := uc.Dir.GetBookingParticipants(ctx, in.BookingID)
		if err != nil {
			if errors.Is(err, comm.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !booking.HasParticipant(in.IdentityID) {
			ident, err := uc.Dir.GetIdentity(ctx, in.IdentityID)
			if err != nil || ident.Role != comm.RoleAdmin {
				return nil, comm.Forbidden(comm.ReasonNotParticipant)
			}
		}
	}

	msgs, err := uc.Repo.ListByChannel(ctx, repository.ChannelQuery{
		IdentityID: in.IdentityID,
		PeerID:     in.PeerID,
		BookingID:  in.BookingID,
	}, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
