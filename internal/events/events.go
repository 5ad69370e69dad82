package events

import (
	"context"
	"time"
)

// Routing keys (RabbitMQ) and event types (Kafka) for the booking lifecycle.
const (
	RKBookingCreated  = "booking.created"
	RKBookingApproved = "booking.approved"
	RKBookingRejected = "booking.rejected"
)

// BookingEvent is published after a lifecycle write has been committed.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	ItemID     string    `json:"item_id"`
	BookerID   string    `json:"booker_id"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers booking events to a broker. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, evt BookingEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
