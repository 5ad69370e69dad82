package item

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "item not found")
	ErrOwnerNotFound     = apperror.New(http.StatusNotFound, "user not found")
	ErrNotOwner          = apperror.New(http.StatusForbidden, "only the owner can change an item")
	ErrEmptyName         = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrEmptyDescription  = apperror.New(http.StatusBadRequest, "description cannot be empty")
	ErrAvailableRequired = apperror.New(http.StatusBadRequest, "available is required")
	ErrEmptyComment      = apperror.New(http.StatusBadRequest, "comment text cannot be empty")
	ErrNotPastBooker     = apperror.New(http.StatusBadRequest, "only users who have finished a booking of the item can comment")
)

// Item represents a thing a user offers for sharing.
type Item struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Available   bool
	RequestID   *string // item request this item was listed in answer to, if any
	CreatedAt   time.Time
}

// Comment is feedback left on an item by a past booker.
type Comment struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
