package usecase

import (
	"context"
	"errors"
	"testing"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/lifecycle"
)

type nullRelay struct{}

func (nullRelay) DeliverChat(string, []byte) int { return 0 }
func (nullRelay) TerminatePair(string, string)   {}

// TestBookingChannelFullLifecycle walks one booking from confirmation to
// completion: messages flow while the booking is live, the channel closes for
// good on completion, and the transcript stays readable afterwards.
func TestBookingChannelFullLifecycle(t *testing.T) {
	ctx := context.Background()
	dir, repo, _, _, send := sendFixture()
	booking := comm.BookingContext{ID: "bk1", CustomerID: "cust", ProviderID: "prov", Status: comm.BookingConfirmed}
	dir.addBooking(booking)

	binder := lifecycle.NewBinder(nullRelay{})
	binder.HandleStatusChange(ctx, booking)

	bk := "bk1"
	for _, in := range []SendMessageInput{
		{SenderID: "cust", BookingID: &bk, Content: "what time works?"},
		{SenderID: "prov", BookingID: &bk, Content: "nine sharp"},
	} {
		if _, err := send.Execute(ctx, in); err != nil {
			t.Fatalf("send %q: %v", in.Content, err)
		}
	}

	// The job finishes; the booking subsystem reports completion.
	booking.Status = comm.BookingCompleted
	dir.bookings["bk1"] = booking
	binder.HandleStatusChange(ctx, booking)
	if !binder.Closed("bk1") {
		t.Fatal("binder must record the closed channel")
	}

	// New sends are denied with the closed reason, from either side.
	for _, sender := range []string{"cust", "prov"} {
		_, err := send.Execute(ctx, SendMessageInput{SenderID: sender, BookingID: &bk, Content: "one more thing"})
		if !errors.Is(err, comm.ErrForbidden) || comm.DenyReason(err) != comm.ReasonChannelClosed {
			t.Fatalf("%s after close: err = %v", sender, err)
		}
	}

	// The transcript survives for both participants.
	history := NewGetHistoryUseCase(dir, repo)
	for _, reader := range []string{"cust", "prov"} {
		msgs, err := history.Execute(ctx, GetHistoryInput{IdentityID: reader, BookingID: "bk1"})
		if err != nil {
			t.Fatalf("%s history after close: %v", reader, err)
		}
		if len(msgs) != 2 {
			t.Fatalf("%s sees %d messages, want 2", reader, len(msgs))
		}
	}

	// A stray reactivation event cannot reopen what completed.
	booking.Status = comm.BookingConfirmed
	binder.HandleStatusChange(ctx, booking)
	if !binder.Closed("bk1") {
		t.Fatal("closed channel must not reactivate")
	}
}
