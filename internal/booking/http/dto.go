package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for both booking list endpoints.
type ListBookingsRequest struct {
	request.OffsetParams
	State string `form:"state,default=ALL" binding:"booking_state"`
}

// CreateBookingRequest is the payload of POST /bookings.
type CreateBookingRequest struct {
	ItemID string    `json:"itemId" binding:"required,uuid"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// Validate performs custom validation for CreateBookingRequest.
// The "in the future" half of the rule lives in the service, which owns the clock.
func (r *CreateBookingRequest) Validate() error {
	if !r.End.After(r.Start) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

// DecideBookingRequest carries the ?approved= flag of PATCH /bookings/:id.
type DecideBookingRequest struct {
	Approved *bool `form:"approved" binding:"required"`
}

type ItemTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookerTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID        string    `json:"id"`
	Item      ItemTag   `json:"item"`
	Booker    BookerTag `json:"booker"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Item:      ItemTag{ID: b.ItemID, Name: b.ItemName},
		Booker:    BookerTag{ID: b.BookerID, Name: b.BookerName},
		Start:     b.Start,
		End:       b.End,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BookingSummary is the short form used for an item's last/next booking.
type BookingSummary struct {
	ID       string    `json:"id"`
	BookerID string    `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// NewBookingSummary returns nil for a nil booking so the JSON field renders as null.
func NewBookingSummary(b *booking.Booking) *BookingSummary {
	if b == nil {
		return nil
	}
	return &BookingSummary{
		ID:       b.ID,
		BookerID: b.BookerID,
		Start:    b.Start,
		End:      b.End,
	}
}
