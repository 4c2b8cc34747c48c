package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/task"
)

func sendFixture() (*fakeDirectory, *fakeMessageRepo, *fakeNotifier, *fakeQueue, *SendMessageUseCase) {
	dir := newFakeDirectory()
	dir.addIdentity("cust", comm.RoleCustomer, "+111")
	dir.addIdentity("prov", comm.RoleProvider, "+222")
	dir.addIdentity("adm", comm.RoleAdmin, "+999")
	repo := newFakeMessageRepo()
	notifier := newFakeNotifier()
	queue := &fakeQueue{}
	return dir, repo, notifier, queue, NewSendMessageUseCase(dir, repo, notifier, queue)
}

func TestSendMessageDirectHappyPath(t *testing.T) {
	_, repo, notifier, queue, uc := sendFixture()

	prov := "prov"
	msg, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", ReceiverID: &prov, Content: "can you come tomorrow?",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("message id not assigned")
	}
	if msg.ChatType != comm.ChannelDirect {
		t.Fatalf("chat type = %q, want direct", msg.ChatType)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(repo.messages))
	}

	// The live frame carries the persisted message verbatim.
	payloads := notifier.payloadsFor("prov")
	if len(payloads) != 1 {
		t.Fatalf("relayed %d payloads, want 1", len(payloads))
	}
	var frame struct {
		Type    string       `json:"type"`
		Message comm.Message `json:"message"`
	}
	if err := json.Unmarshal(payloads[0], &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Type != "message" || frame.Message.ID != msg.ID {
		t.Fatalf("frame = %+v", frame)
	}

	if types := queue.typesSeen(); len(types) != 1 || types[0] != task.AuditTaskType {
		t.Fatalf("audit tasks = %v", types)
	}
}

func TestSendMessageOfflineRecipientStillPersists(t *testing.T) {
	// The notifier reports zero deliveries; the send must still succeed.
	_, repo, _, _, uc := sendFixture()

	cust := "cust"
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "prov", ReceiverID: &cust, Content: "on my way",
	}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(repo.messages))
	}
}

func TestSendMessageBookingChannel(t *testing.T) {
	dir, repo, _, _, uc := sendFixture()
	dir.addBooking(comm.BookingContext{ID: "bk1", CustomerID: "cust", ProviderID: "prov", Status: comm.BookingConfirmed})

	bk := "bk1"
	msg, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", BookingID: &bk, Content: "gate code is 4411",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if msg.ChatType != comm.ChannelBooking {
		t.Fatalf("chat type = %q, want booking", msg.ChatType)
	}
	// Receiver resolved from the booking counterpart.
	if msg.ReceiverID == nil || *msg.ReceiverID != "prov" {
		t.Fatalf("receiver = %v, want prov", msg.ReceiverID)
	}
	if msg.BookingID == nil || *msg.BookingID != "bk1" {
		t.Fatalf("booking id = %v", msg.BookingID)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("persisted %d messages, want 1", len(repo.messages))
	}
}

func TestSendMessageBookingLifecycleGates(t *testing.T) {
	cases := []struct {
		name   string
		status comm.BookingStatus
		reason string
	}{
		{"pending booking", comm.BookingPending, comm.ReasonChannelNotActive},
		{"completed booking", comm.BookingCompleted, comm.ReasonChannelClosed},
		{"cancelled booking", comm.BookingCancelled, comm.ReasonChannelClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir, repo, _, _, uc := sendFixture()
			dir.addBooking(comm.BookingContext{ID: "bk1", CustomerID: "cust", ProviderID: "prov", Status: tc.status})

			bk := "bk1"
			_, err := uc.Execute(context.Background(), SendMessageInput{
				SenderID: "cust", BookingID: &bk, Content: "hello?",
			})
			if !errors.Is(err, comm.ErrForbidden) {
				t.Fatalf("err = %v, want forbidden", err)
			}
			if got := comm.DenyReason(err); got != tc.reason {
				t.Fatalf("reason = %q, want %q", got, tc.reason)
			}
			if len(repo.messages) != 0 {
				t.Fatal("denied message must not be persisted")
			}
		})
	}
}

func TestSendMessageComplaintSystemDenial(t *testing.T) {
	_, repo, notifier, queue, uc := sendFixture()

	adm := "adm"
	_, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", ReceiverID: &adm, Content: "I want to complain",
	})
	if got := comm.DenyReason(err); got != comm.ReasonComplaintSystem {
		t.Fatalf("reason = %q, want %q", got, comm.ReasonComplaintSystem)
	}
	if len(repo.messages) != 0 || len(notifier.payloadsFor("adm")) != 0 || len(queue.typesSeen()) != 0 {
		t.Fatal("denied send must leave no side effects")
	}
}

func TestSendMessageUnknownParties(t *testing.T) {
	_, _, _, _, uc := sendFixture()

	ghost := "ghost"
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", ReceiverID: &ghost, Content: "hi",
	}); !errors.Is(err, comm.ErrNotFound) {
		t.Fatalf("unknown receiver: err = %v, want ErrNotFound", err)
	}

	prov := "prov"
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "ghost", ReceiverID: &prov, Content: "hi",
	}); !errors.Is(err, comm.ErrUnauthorized) {
		t.Fatalf("unknown sender: err = %v, want ErrUnauthorized", err)
	}

	if _, err := uc.Execute(context.Background(), SendMessageInput{
		ReceiverID: &prov, Content: "hi",
	}); !errors.Is(err, comm.ErrUnauthorized) {
		t.Fatalf("empty sender: err = %v, want ErrUnauthorized", err)
	}
}

func TestSendMessageValidation(t *testing.T) {
	_, _, _, _, uc := sendFixture()

	prov := "prov"
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", ReceiverID: &prov, Content: "   ",
	}); !errors.Is(err, comm.ErrValidation) {
		t.Fatalf("blank content: err = %v, want ErrValidation", err)
	}

	if _, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", Content: "hi",
	}); !errors.Is(err, comm.ErrValidation) {
		t.Fatalf("no addressing: err = %v, want ErrValidation", err)
	}
}

func TestSendMessagePersistenceFailureIsHard(t *testing.T) {
	_, repo, notifier, queue, uc := sendFixture()
	repo.saveErr = errors.New("pool exhausted")

	prov := "prov"
	_, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", ReceiverID: &prov, Content: "hi",
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	// No relay and no audit for a message that was never stored.
	if len(notifier.payloadsFor("prov")) != 0 || len(queue.typesSeen()) != 0 {
		t.Fatal("failed persist must not relay or audit")
	}
}

func TestSendMessageWithoutQueueStillWorks(t *testing.T) {
	dir := newFakeDirectory()
	dir.addIdentity("cust", comm.RoleCustomer, "")
	dir.addIdentity("prov", comm.RoleProvider, "")
	uc := NewSendMessageUseCase(dir, newFakeMessageRepo(), nil, nil)

	prov := "prov"
	if _, err := uc.Execute(context.Background(), SendMessageInput{
		SenderID: "cust", ReceiverID: &prov, Content: "hi",
	}); err != nil {
		t.Fatalf("execute without queue and notifier: %v", err)
	}
}
