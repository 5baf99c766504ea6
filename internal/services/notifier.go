package services

import (
	"context"
	"log"

	"github.com/swiftcab/swiftcab-backend/internal/models"
)

// BookingNotifier relays successful booking mutations to the dashboards:
// a websocket push for connected clients, a Redis publish for other backend
// instances, and a stats cache invalidation. Delivery is best-effort; a
// failed push never fails the booking operation.
type BookingNotifier struct {
	hub *Hub
}

func NewBookingNotifier(hub *Hub) *BookingNotifier {
	return &BookingNotifier{hub: hub}
}

func (n *BookingNotifier) BookingChanged(ctx context.Context, event string, booking *models.Booking) {
	n.hub.SendBookingEvent(BookingEvent{
		Event:     event,
		BookingID: booking.ID,
		Status:    string(booking.Status),
		DriverID:  booking.DriverID,
	})

	if RedisClient != nil {
		if err := PublishBookingUpdate(ctx, event, booking); err != nil {
			log.Printf("Failed to publish booking update: %v", err)
		}
		if err := InvalidateAdminStats(ctx); err != nil {
			log.Printf("Failed to invalidate stats cache: %v", err)
		}
	}
}
