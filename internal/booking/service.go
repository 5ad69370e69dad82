package booking

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/events"
)

type CreateRequest struct {
	BookerID string
	ItemID   string
	Start    time.Time
	End      time.Time
}

type ListRequest struct {
	UserID string
	State  string
	From   int
	Size   int
}

// UserDirectory answers whether a user exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// ItemCatalog is the read-only view of items the engine needs.
// Lookup returns ErrItemNotFound for unknown items.
type ItemCatalog interface {
	Lookup(ctx context.Context, itemID string) (*ItemRef, error)
	HasItems(ctx context.Context, ownerID string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Decide(ctx context.Context, deciderID, bookingID string, approve bool) (*Booking, error)
	Get(ctx context.Context, requesterID, bookingID string) (*Booking, error)
	ListForBooker(ctx context.Context, req ListRequest) ([]*Booking, int, error)
	ListForOwner(ctx context.Context, req ListRequest) ([]*Booking, int, error)

	// Used by the item module for comment eligibility and last/next booking summaries.
	FindPastBookingsForUserAndItem(ctx context.Context, userID, itemID string, before time.Time) ([]*Booking, error)
	FindLatestEndedBooking(ctx context.Context, itemID string, now time.Time) (*Booking, error)
	FindEarliestUpcomingBooking(ctx context.Context, itemID string, now time.Time) (*Booking, error)
}

type service struct {
	repo      Repository
	users     UserDirectory
	items     ItemCatalog
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*service)

// WithClock replaces the wall clock used for time-range checks and state filters.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *service) { s.logger = l }
}

func NewService(repo Repository, users UserDirectory, items ItemCatalog, opts ...Option) Service {
	s := &service{
		repo:      repo,
		users:     users,
		items:     items,
		publisher: events.NoopPublisher{},
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("github.com/nekogravitycat/shareit-backend/internal/booking"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "booking."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *service) requireUser(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "Create",
		attribute.String("booker.id", req.BookerID),
		attribute.String("item.id", req.ItemID),
	)
	defer func() { endSpan(span, err) }()

	// 1. Time range: non-empty and entirely in the future
	now := s.now()
	if !req.End.After(req.Start) || !req.Start.After(now) {
		return nil, ErrInvalidTimeRange
	}

	// 2. Booker exists
	if err := s.requireUser(ctx, req.BookerID); err != nil {
		return nil, err
	}

	// 3. Item exists
	item, err := s.items.Lookup(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	// 4. Item is available
	if !item.Available {
		return nil, ErrItemUnavailable
	}

	// 5. Owner cannot book their own item
	if item.OwnerID == req.BookerID {
		return nil, ErrSelfBooking
	}

	newBooking := &Booking{
		ItemID:   req.ItemID,
		BookerID: req.BookerID,
		Start:    req.Start,
		End:      req.End,
		Status:   StatusWaiting,
	}
	if err := s.repo.Create(ctx, newBooking); err != nil {
		return nil, err
	}

	// Re-read to pick up the joined item and booker names.
	created, err := s.repo.GetByID(ctx, newBooking.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", created.ID),
		zap.String("item_id", created.ItemID),
		zap.String("booker_id", created.BookerID),
		zap.Time("start", created.Start),
		zap.Time("end", created.End),
	)
	s.publish(ctx, events.RKBookingCreated, created)

	return created, nil
}

func (s *service) Decide(ctx context.Context, deciderID, bookingID string, approve bool) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "Decide",
		attribute.String("decider.id", deciderID),
		attribute.String("booking.id", bookingID),
		attribute.Bool("approve", approve),
	)
	defer func() { endSpan(span, err) }()

	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	target := decision(approve)
	if !current.Status.CanTransitionTo(target) {
		return nil, ErrAlreadyDecided
	}

	if current.ItemOwnerID != deciderID {
		return nil, ErrAccessDenied
	}

	// The status check above may be stale; the conditional update is what decides the race.
	swapped, err := s.repo.UpdateStatus(ctx, bookingID, current.Status, target)
	if err != nil {
		return nil, err
	}
	if !swapped {
		s.logger.Info("booking decision lost to a concurrent decision",
			zap.String("booking_id", bookingID),
			zap.String("decider_id", deciderID),
		)
		return nil, ErrAlreadyDecided
	}

	updated, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking decided",
		zap.String("booking_id", updated.ID),
		zap.String("decider_id", deciderID),
		zap.String("status", string(updated.Status)),
	)
	if approve {
		s.publish(ctx, events.RKBookingApproved, updated)
	} else {
		s.publish(ctx, events.RKBookingRejected, updated)
	}

	return updated, nil
}

func (s *service) Get(ctx context.Context, requesterID, bookingID string) (b *Booking, err error) {
	ctx, span := s.startSpan(ctx, "Get",
		attribute.String("requester.id", requesterID),
		attribute.String("booking.id", bookingID),
	)
	defer func() { endSpan(span, err) }()

	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	b, err = s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Strangers get the same answer as for a missing booking.
	if !b.VisibleTo(requesterID) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) ListForBooker(ctx context.Context, req ListRequest) (list []*Booking, total int, err error) {
	ctx, span := s.startSpan(ctx, "ListForBooker",
		attribute.String("user.id", req.UserID),
		attribute.String("state", req.State),
	)
	defer func() { endSpan(span, err) }()

	filter, err := s.listFilter(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	filter.BookerID = req.UserID

	return s.repo.List(ctx, filter)
}

func (s *service) ListForOwner(ctx context.Context, req ListRequest) (list []*Booking, total int, err error) {
	ctx, span := s.startSpan(ctx, "ListForOwner",
		attribute.String("user.id", req.UserID),
		attribute.String("state", req.State),
	)
	defer func() { endSpan(span, err) }()

	filter, err := s.listFilter(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	hasItems, err := s.items.HasItems(ctx, req.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("check owner items: %w", err)
	}
	if !hasItems {
		return nil, 0, ErrNoItemsFound
	}
	filter.OwnerID = req.UserID

	return s.repo.List(ctx, filter)
}

// listFilter runs the checks shared by both list operations and resolves the state once.
func (s *service) listFilter(ctx context.Context, req ListRequest) (Filter, error) {
	if err := s.requireUser(ctx, req.UserID); err != nil {
		return Filter{}, err
	}

	state, err := ParseState(req.State)
	if err != nil {
		return Filter{}, err
	}

	if req.From < 0 || req.Size <= 0 {
		return Filter{}, ErrInvalidPage
	}

	return Filter{
		State:  state,
		Now:    s.now(),
		Offset: req.From,
		Limit:  req.Size,
	}, nil
}

func (s *service) FindPastBookingsForUserAndItem(ctx context.Context, userID, itemID string, before time.Time) ([]*Booking, error) {
	return s.repo.ListPastForBookerAndItem(ctx, userID, itemID, before)
}

func (s *service) FindLatestEndedBooking(ctx context.Context, itemID string, now time.Time) (*Booking, error) {
	return s.repo.LatestEnded(ctx, itemID, now)
}

func (s *service) FindEarliestUpcomingBooking(ctx context.Context, itemID string, now time.Time) (*Booking, error) {
	return s.repo.EarliestUpcoming(ctx, itemID, now)
}

// publish hands a committed change to the event publisher. Failures are logged, never returned:
// the write has already happened.
func (s *service) publish(ctx context.Context, eventType string, b *Booking) {
	evt := events.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		BookerID:   b.BookerID,
		Status:     string(b.Status),
		Start:      b.Start,
		End:        b.End,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
