package usecase

import (
	"context"
	"fmt"
	"sort"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// PresenceChecker reports whether a peer is currently online. Advisory only.
type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) bool
}

// ListConversationsInput wraps the identity whose inbox is being listed.
type ListConversationsInput struct {
	IdentityID string
}

// ListConversationsUseCase builds one summary per distinct channel out of the
// identity's message set. It issues a single repository call and makes a
// single pass over the result keyed by canonical channel id, so the cost is
// one scan plus the final sort, not a re-query per partner.
type ListConversationsUseCase struct {
	Repo     repository.MessageRepository
	Presence PresenceChecker // optional
}

func NewListConversationsUseCase(repo repository.MessageRepository, presence PresenceChecker) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Presence: presence}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]comm.ConversationSummary, error) {
	if in.IdentityID == "" {
		return nil, comm.ErrUnauthorized
	}

	msgs, err := uc.Repo.ListByIdentity(ctx, in.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	byKey := make(map[comm.ChannelKey]*comm.ConversationSummary)
	for _, m := range msgs {
		key := m.Key()
		s := byKey[key]
		if s == nil {
			s = &comm.ConversationSummary{
				Key:      key,
				ChatType: m.ChatType,
			}
			if m.ChatType == comm.ChannelBooking && m.BookingID != nil {
				s.BookingID = *m.BookingID
			}
			byKey[key] = s
		}
		if peer := peerOf(m, in.IdentityID); peer != "" {
			s.PeerID = peer
		}
		// Input is ordered oldest to newest, so the running message is
		// always the latest seen for its key.
		if !m.CreatedAt.Before(s.LastMessage.CreatedAt) {
			s.LastMessage = m
		}
		if m.ReceiverID != nil && *m.ReceiverID == in.IdentityID && !m.IsRead {
			s.Unread++
		}
	}

	out := make([]comm.ConversationSummary, 0, len(byKey))
	for _, s := range byKey {
		if uc.Presence != nil && s.PeerID != "" {
			s.Online = uc.Presence.IsOnline(ctx, s.PeerID)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out, nil
}

func peerOf(m comm.Message, identityID string) string {
	if m.SenderID != identityID {
		return m.SenderID
	}
	if m.ReceiverID != nil {
		return *m.ReceiverID
	}
	return ""
}
