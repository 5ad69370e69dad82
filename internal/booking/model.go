package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrUserNotFound     = apperror.New(http.StatusNotFound, "user not found")
	ErrItemNotFound     = apperror.New(http.StatusNotFound, "item not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start must be before end and both must be in the future")
	ErrItemUnavailable  = apperror.New(http.StatusBadRequest, "item is not available for booking")
	ErrSelfBooking      = apperror.New(http.StatusNotFound, "owner cannot book their own item")
	ErrAlreadyDecided   = apperror.New(http.StatusBadRequest, "booking has already been decided")
	ErrAccessDenied     = apperror.New(http.StatusForbidden, "only the item owner can decide on a booking")
	ErrNoItemsFound     = apperror.New(http.StatusBadRequest, "user has no items")
	ErrUnknownState     = apperror.New(http.StatusBadRequest, "unknown state")
	ErrInvalidPage      = apperror.New(http.StatusBadRequest, "from must be >= 0 and size must be > 0")
)

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// transitions is the booking state machine. A status with no targets is terminal.
var transitions = map[Status][]Status{
	StatusWaiting:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s. Unknown statuses count as terminal.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the state machine allows s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// decision maps the owner's approve flag to the terminal status it leads to.
func decision(approve bool) Status {
	if approve {
		return StatusApproved
	}
	return StatusRejected
}

// Booking is a reservation of an item by a user for [Start, End).
// ItemName, ItemOwnerID and BookerName are joined in on read and never stored on the booking row.
type Booking struct {
	ID          string
	ItemID      string
	ItemName    string
	ItemOwnerID string
	BookerID    string
	BookerName  string
	Start       time.Time
	End         time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VisibleTo reports whether userID may see the booking: only the booker and the item owner can.
func (b *Booking) VisibleTo(userID string) bool {
	return userID == b.BookerID || userID == b.ItemOwnerID
}

// Filter selects bookings for the list queries. Exactly one of BookerID and OwnerID is set.
type Filter struct {
	BookerID string
	OwnerID  string
	State    State
	Now      time.Time // reference instant for the time-based states
	Offset   int
	Limit    int
}

// ItemRef is what the lifecycle engine needs to know about an item.
type ItemRef struct {
	ID        string
	OwnerID   string
	Available bool
}
