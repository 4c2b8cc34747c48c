package usecase

import (
	"context"
	"errors"
	"testing"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
)

func TestMarkReadFlipsOnlyInboundUnread(t *testing.T) {
	_, repo, uc := markReadFixture(t)

	// Provider opens the direct conversation with the customer.
	count, err := uc.Execute(context.Background(), MarkReadInput{IdentityID: "prov", PeerID: "cust"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// Messages the provider sent are untouched; only inbound ones flipped.
	for _, m := range repo.messages {
		inbound := m.ReceiverID != nil && *m.ReceiverID == "prov" && m.ChatType != comm.ChannelBooking
		if m.IsRead != inbound {
			t.Fatalf("message %q: is_read = %v, inbound = %v", m.Content, m.IsRead, inbound)
		}
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	_, _, uc := markReadFixture(t)

	first, err := uc.Execute(context.Background(), MarkReadInput{IdentityID: "prov", PeerID: "cust"})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := uc.Execute(context.Background(), MarkReadInput{IdentityID: "prov", PeerID: "cust"})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first == 0 || second != 0 {
		t.Fatalf("counts = %d then %d, want >0 then 0", first, second)
	}
}

func TestMarkReadBookingScope(t *testing.T) {
	_, repo, uc := markReadFixture(t)

	count, err := uc.Execute(context.Background(), MarkReadInput{IdentityID: "prov", BookingID: "bk1"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	// The direct channel's unread state is independent of the booking's.
	for _, m := range repo.messages {
		if m.ChatType != comm.ChannelBooking && m.IsRead {
			t.Fatalf("direct message %q flipped by booking mark", m.Content)
		}
	}
}

func TestMarkReadValidation(t *testing.T) {
	_, _, uc := markReadFixture(t)

	if _, err := uc.Execute(context.Background(), MarkReadInput{IdentityID: "prov"}); !errors.Is(err, comm.ErrValidation) {
		t.Fatalf("no channel: err = %v", err)
	}
	if _, err := uc.Execute(context.Background(), MarkReadInput{PeerID: "cust"}); !errors.Is(err, comm.ErrUnauthorized) {
		t.Fatalf("no identity: err = %v", err)
	}
}

// markReadFixture seeds two direct messages and one booking message addressed
// to the provider.
func markReadFixture(t *testing.T) (*fakeDirectory, *fakeMessageRepo, *MarkReadUseCase) {
	t.Helper()
	dir, repo, _, _, send := sendFixture()
	dir.addBooking(comm.BookingContext{ID: "bk1", CustomerID: "cust", ProviderID: "prov", Status: comm.BookingConfirmed})

	prov, bk := "prov", "bk1"
	seed := []SendMessageInput{
		{SenderID: "cust", ReceiverID: &prov, Content: "first"},
		{SenderID: "cust", ReceiverID: &prov, Content: "second"},
		{SenderID: "cust", BookingID: &bk, Content: "booking note"},
	}
	for _, in := range seed {
		if _, err := send.Execute(context.Background(), in); err != nil {
			t.Fatalf("seed %q: %v", in.Content, err)
		}
	}
	return dir, repo, NewMarkReadUseCase(repo)
}
