package lifecycle

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
)

// Relay is the slice of the signaling relay the binder drives: a system
// notice to each live participant, and call teardown for a closed pair.
type Relay interface {
	DeliverChat(toID string, payload []byte) int
	TerminatePair(a, b string)
}

// channelFrame is the system notice pushed to both parties when their
// booking channel changes state.
type channelFrame struct {
	Type      string `json:"type"`
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// Binder reacts to booking-state transitions from the booking subsystem.
// Payment confirmation activates the booking channel; completion or
// cancellation terminates it. Termination is one-way: a booking whose channel
// closed once never reactivates, whatever events arrive afterwards.
//
// The binder produces side effects only. The authoritative deny for a closed
// channel comes from the authorization engine reading the booking status
// fresh on every send.
type Binder struct {
	relay Relay

	mu         sync.Mutex
	terminated map[string]struct{}
}

func NewBinder(relay Relay) *Binder {
	return &Binder{
		relay:      relay,
		terminated: make(map[string]struct{}),
	}
}

// HandleStatusChange applies one booking transition.
func (b *Binder) HandleStatusChange(ctx context.Context, booking comm.BookingContext) {
	_ = ctx

	switch {
	case booking.Status.Live():
		b.mu.Lock()
		_, closed := b.terminated[booking.ID]
		b.mu.Unlock()
		if closed {
			log.Printf("lifecycle: ignore reactivation of closed booking %s", booking.ID)
			return
		}
		b.notify(booking, "active")

	case booking.Status.Terminated():
		b.mu.Lock()
		b.terminated[booking.ID] = struct{}{}
		b.mu.Unlock()
		b.notify(booking, "closed")
		if b.relay != nil {
			b.relay.TerminatePair(booking.CustomerID, booking.ProviderID)
		}
	}
}

// Closed reports whether the binder has seen this booking's channel terminate.
func (b *Binder) Closed(bookingID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.terminated[bookingID]
	return ok
}

func (b *Binder) notify(booking comm.BookingContext, status string) {
	if b.relay == nil {
		return
	}
	payload, err := json.Marshal(channelFrame{Type: "channel", BookingID: booking.ID, Status: status})
	if err != nil {
		return
	}
	b.relay.DeliverChat(booking.CustomerID, payload)
	b.relay.DeliverChat(booking.ProviderID, payload)
}
