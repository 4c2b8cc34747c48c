package usecase

import (
	"context"
	"errors"
	"fmt"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// RequestPhoneInput asks for the target's phone number, optionally in the
// context of a specific booking.
type RequestPhoneInput struct {
	RequesterID string
	TargetID    string
	BookingID   string
}

// RequestPhoneUseCase gates contact disclosure on roles and booking activity.
// The active-booking lookup is always fresh; disclosure never relies on a
// cached grant.
type RequestPhoneUseCase struct {
	Dir repository.Directory
}

func NewRequestPhoneUseCase(dir repository.Directory) *RequestPhoneUseCase {
	return &RequestPhoneUseCase{Dir: dir}
}

func (uc *RequestPhoneUseCase) Execute(ctx context.Context, in RequestPhoneInput) (string, error) {
	if in.RequesterID == "" {
		return "", comm.ErrUnauthorized
	}

	requester, err := uc.Dir.GetIdentity(ctx, in.RequesterID)
	if err != nil {
		if errors.Is(err, comm.ErrNotFound) {
			return "", comm.ErrUnauthorized
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	target, err := uc.Dir.GetIdentity(ctx, in.TargetID)
	if err != nil {
		if errors.Is(err, comm.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	active, err := uc.activeBookingBetween(ctx, in, requester)
	if err != nil {
		return "", err
	}

	if !comm.CanSeePhone(requester.Role, target.Role, active) {
		return "", comm.Forbidden(comm.ReasonNoDisclosure)
	}
	return target.Phone, nil
}

// activeBookingBetween resolves "do these two share a live booking". A named
// booking must actually bind the pair; otherwise the directory is asked for
// any live booking between them.
func (uc *RequestPhoneUseCase) activeBookingBetween(ctx context.Context, in RequestPhoneInput, requester comm.Identity) (bool, error) {
	if in.BookingID != "" {
		booking, err := uc.Dir.GetBookingParticipants(ctx, in.BookingID)
		if err != nil {
			if errors.Is(err, comm.ErrNotFound) {
				return false, err
			}
			return false, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		participantOK := booking.HasParticipant(in.RequesterID) || requester.Role == comm.RoleAdmin
		return participantOK && booking.HasParticipant(in.TargetID) && booking.Status.Live(), nil
	}
	active, err := uc.Dir.HasActiveBooking(ctx, in.RequesterID, in.TargetID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return active, nil
}
