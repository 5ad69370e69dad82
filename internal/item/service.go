package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
)

type CreateRequest struct {
	OwnerID     string
	Name        string
	Description string
	Available   *bool
	RequestID   *string
}

// UpdateRequest is a partial update: nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}

// Detail is an item as shown on its page. LastBooking and NextBooking are only filled for the owner.
type Detail struct {
	Item        *Item
	LastBooking *booking.Booking
	NextBooking *booking.Booking
	Comments    []*Comment
}

type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// BookingHistory is the part of the booking engine items read from.
type BookingHistory interface {
	FindPastBookingsForUserAndItem(ctx context.Context, userID, itemID string, before time.Time) ([]*booking.Booking, error)
	FindLatestEndedBooking(ctx context.Context, itemID string, now time.Time) (*booking.Booking, error)
	FindEarliestUpcomingBooking(ctx context.Context, itemID string, now time.Time) (*booking.Booking, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Item, error)
	GetDetail(ctx context.Context, viewerID, itemID string) (*Detail, error)
	Update(ctx context.Context, editorID, itemID string, req UpdateRequest) (*Item, error)
	ListByOwner(ctx context.Context, ownerID string, from, size int) ([]*Detail, int, error)
	AddComment(ctx context.Context, authorID, itemID, text string) (*Comment, error)
}

type service struct {
	repo     Repository
	users    UserDirectory
	bookings BookingHistory
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *service) { s.logger = l }
}

func NewService(repo Repository, users UserDirectory, bookings BookingHistory, opts ...Option) Service {
	s := &service{
		repo:     repo,
		users:    users,
		bookings: bookings,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) requireUser(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !ok {
		return ErrOwnerNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, ErrEmptyDescription
	}
	if req.Available == nil {
		return nil, ErrAvailableRequired
	}

	if err := s.requireUser(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	it := &Item{
		OwnerID:     req.OwnerID,
		Name:        name,
		Description: desc,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item created", zap.String("item_id", it.ID), zap.String("owner_id", it.OwnerID))
	return it, nil
}

func (s *service) GetDetail(ctx context.Context, viewerID, itemID string) (*Detail, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return s.detail(ctx, viewerID, it, s.now())
}

func (s *service) detail(ctx context.Context, viewerID string, it *Item, now time.Time) (*Detail, error) {
	comments, err := s.repo.ListComments(ctx, it.ID)
	if err != nil {
		return nil, err
	}

	d := &Detail{Item: it, Comments: comments}
	if viewerID != it.OwnerID {
		return d, nil
	}

	if d.LastBooking, err = s.bookings.FindLatestEndedBooking(ctx, it.ID, now); err != nil {
		return nil, err
	}
	if d.NextBooking, err = s.bookings.FindEarliestUpcomingBooking(ctx, it.ID, now); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByOwner pages through the owner's items, each with its booking summaries and comments.
func (s *service) ListByOwner(ctx context.Context, ownerID string, from, size int) ([]*Detail, int, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, 0, err
	}

	items, total, err := s.repo.ListByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	details := make([]*Detail, 0, len(items))
	for _, it := range items {
		d, err := s.detail(ctx, ownerID, it, now)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, nil
}

func (s *service) Update(ctx context.Context, editorID, itemID string, req UpdateRequest) (*Item, error) {
	if err := s.requireUser(ctx, editorID); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != editorID {
		return nil, ErrNotOwner
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		it.Name = name
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			return nil, ErrEmptyDescription
		}
		it.Description = desc
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) AddComment(ctx context.Context, authorID, itemID, text string) (*Comment, error) {
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, authorID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	past, err := s.bookings.FindPastBookingsForUserAndItem(ctx, authorID, itemID, s.now())
	if err != nil {
		return nil, err
	}
	if len(past) == 0 {
		return nil, ErrNotPastBooker
	}

	cm := &Comment{
		ItemID:   itemID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.repo.CreateComment(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

