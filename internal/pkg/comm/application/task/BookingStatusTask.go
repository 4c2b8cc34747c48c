package task

import (
	"context"
	"encoding/json"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/lifecycle"
)

// BookingStatusTaskType is enqueued by the booking subsystem whenever a
// booking changes state. The communication side consumes it to activate or
// terminate the matching channel.
const BookingStatusTaskType = "comm:booking_status"

// BookingStatusPayload is the JSON payload transported via the queue.
type BookingStatusPayload struct {
	BookingID  string `json:"bookingId"`
	CustomerID string `json:"customerId"`
	ProviderID string `json:"providerId"`
	Status     string `json:"status"`
}

// RegisterBookingStatusTask binds booking-state events to the lifecycle binder.
func RegisterBookingStatusTask(srv qport.Server, binder *lifecycle.Binder) {
	srv.Register(BookingStatusTaskType, func(ctx context.Context, t qport.Task) error {
		var p BookingStatusPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}
		binder.HandleStatusChange(ctx, comm.BookingContext{
			ID:         p.BookingID,
			CustomerID: p.CustomerID,
			ProviderID: p.ProviderID,
			Status:     comm.BookingStatus(p.Status),
		})
		return nil
	})
}
