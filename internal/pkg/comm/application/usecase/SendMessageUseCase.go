package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/task"
	repository "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/port"
)

// Notifier delivers an already-persisted chat payload to the recipient's open
// connections. A zero delivery count is fine: offline recipients read the
// message later via history.
type Notifier interface {
	DeliverChat(toID string, payload []byte) int
}

// SendMessageInput carries the data needed to send a new message.
// Exactly one of ReceiverID or BookingID must steer the addressing; both may
// be present for a booking-scoped reply.
type SendMessageInput struct {
	SenderID   string
	ReceiverID *string
	BookingID  *string
	Content    string
}

// SendMessageUseCase is the accept path for outbound chat: authorization
// decision first, then persistence, then best-effort live relay, then a
// fire-and-forget audit entry.
type SendMessageUseCase struct {
	Dir      repository.Directory
	Repo     repository.MessageRepository
	Notifier Notifier
	Queue    qport.Client // optional; nil disables the audit trail
}

func NewSendMessageUseCase(dir repository.Directory, repo repository.MessageRepository, notifier Notifier, queue qport.Client) *SendMessageUseCase {
	return &SendMessageUseCase{Dir: dir, Repo: repo, Notifier: notifier, Queue: queue}
}

// chatFrame is the live-relay representation of a persisted message.
type chatFrame struct {
	Type    string       `json:"type"`
	Message comm.Message `json:"message"`
}

// Execute authorizes, persists and relays one message. Authorization and
// validation errors return synchronously; a persistence failure is a hard
// error and the message is not considered sent. Relay and audit failures
// never affect the outcome.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*comm.Message, error) {
	if in.SenderID == "" {
		return nil, comm.ErrUnauthorized
	}

	sender, err := uc.Dir.GetIdentity(ctx, in.SenderID)
	if err != nil {
		if errors.Is(err, comm.ErrNotFound) {
			return nil, comm.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var booking *comm.BookingContext
	if in.BookingID != nil && *in.BookingID != "" {
		b, err := uc.Dir.GetBookingParticipants(ctx, *in.BookingID)
		if err != nil {
			if errors.Is(err, comm.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		booking = &b
	}

	receiverID := ""
	if in.ReceiverID != nil {
		receiverID = *in.ReceiverID
	}
	if receiverID == "" && booking != nil {
		receiverID = booking.Counterpart(sender.ID)
	}
	if receiverID == "" {
		return nil, fmt.Errorf("%w: receiver_id or booking_id is required", comm.ErrValidation)
	}

	receiver, err := uc.Dir.GetIdentity(ctx, receiverID)
	if err != nil {
		if errors.Is(err, comm.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	decision := comm.CanCommunicate(sender, receiver, booking)
	if !decision.Allowed {
		return nil, decision.Err
	}

	draft := comm.Message{
		SenderID:   sender.ID,
		ReceiverID: &receiver.ID,
		Content:    in.Content,
		ChatType:   decision.Channel,
	}
	if booking != nil {
		draft.BookingID = &booking.ID
	}
	msg, err := comm.NewMessage(draft)
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.Save(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	// Dual path: persisted above, relayed live only if the recipient is
	// connected right now.
	if uc.Notifier != nil {
		if payload, err := json.Marshal(chatFrame{Type: "message", Message: *msg}); err == nil {
			uc.Notifier.DeliverChat(receiver.ID, payload)
		}
	}

	uc.audit(ctx, *msg)
	return msg, nil
}

// audit enqueues the activity entry; enqueue failure is logged, never
// propagated, so the side write cannot fail the primary one.
func (uc *SendMessageUseCase) audit(ctx context.Context, m comm.Message) {
	if uc.Queue == nil {
		return
	}
	t, err := task.NewAuditTask(task.AuditPayload{
		ActorID: m.SenderID,
		Action:  "message_sent",
		Detail:  string(m.ChatType) + ":" + m.ID,
		At:      time.Now().UTC(),
	})
	if err != nil {
		log.Printf("comm: encode audit task: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := uc.Queue.Enqueue(ctx, t, qport.EnqueueOption{Queue: "comm", MaxRetry: 5}); err != nil {
		log.Printf("comm: enqueue audit: %v", err)
	}
}
