package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed = apperror.New(http.StatusConflict, "email already used")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "name is required")
	ErrEmailRequired    = apperror.New(http.StatusBadRequest, "email is required")
)

// User represents a marketplace member. Users are only looked up by the booking core.
type User struct {
	ID        string // UUID
	Name      string
	Email     string
	CreatedAt time.Time
}
