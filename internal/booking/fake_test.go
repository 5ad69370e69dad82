package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/events"
)

// fakeStore is an in-memory Repository, UserDirectory and ItemCatalog in one.
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]string
	items     map[string]ItemRef
	itemNames map[string]string
	bookings  map[string]Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]string{},
		items:     map[string]ItemRef{},
		itemNames: map[string]string{},
		bookings:  map[string]Booking{},
	}
}

func (f *fakeStore) addUser(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = name
}

func (f *fakeStore) addItem(id, name, ownerID string, available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id] = ItemRef{ID: id, OwnerID: ownerID, Available: available}
	f.itemNames[id] = name
}

// seed stores b as is, bypassing the service rules. Used for bookings in the past.
func (f *fakeStore) seed(b Booking) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		f.seq++
		b.ID = fmt.Sprintf("b-%03d", f.seq)
	}
	if b.Status == "" {
		b.Status = StatusWaiting
	}
	f.bookings[b.ID] = b
	return b.ID
}

// UserDirectory

func (f *fakeStore) Exists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[userID]
	return ok, nil
}

// ItemCatalog

func (f *fakeStore) Lookup(_ context.Context, itemID string) (*ItemRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (f *fakeStore) HasItems(_ context.Context, ownerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

// Repository

func (f *fakeStore) Create(_ context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = fmt.Sprintf("b-%03d", f.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.bookings[b.ID] = *b
	return nil
}

// joined fills the read-only columns a real select would join in. Caller holds mu.
func (f *fakeStore) joined(b Booking) *Booking {
	b.ItemName = f.itemNames[b.ItemID]
	b.ItemOwnerID = f.items[b.ItemID].OwnerID
	b.BookerName = f.users[b.BookerID]
	return &b
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.joined(b), nil
}

func (f *fakeStore) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*Booking
	for _, raw := range f.bookings {
		b := f.joined(raw)
		if filter.BookerID != "" && b.BookerID != filter.BookerID {
			continue
		}
		if filter.OwnerID != "" && b.ItemOwnerID != filter.OwnerID {
			continue
		}
		if !filter.State.Matches(b, filter.Now) {
			continue
		}
		matched = append(matched, b)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Start.Equal(matched[j].Start) {
			return matched[i].Start.After(matched[j].Start)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, from, to Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	f.bookings[id] = b
	return true, nil
}

func (f *fakeStore) ListPastForBookerAndItem(_ context.Context, bookerID, itemID string, before time.Time) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Booking
	for _, b := range f.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.End.Before(before) {
			out = append(out, f.joined(b))
		}
	}
	return out, nil
}

func (f *fakeStore) LatestEnded(_ context.Context, itemID string, now time.Time) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *Booking
	for _, b := range f.bookings {
		if b.ItemID != itemID || b.Status == StatusRejected || b.End.After(now) {
			continue
		}
		if best == nil || b.End.After(best.End) {
			best = f.joined(b)
		}
	}
	return best, nil
}

func (f *fakeStore) EarliestUpcoming(_ context.Context, itemID string, now time.Time) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *Booking
	for _, b := range f.bookings {
		if b.ItemID != itemID || b.Status == StatusRejected || !b.Start.After(now) {
			continue
		}
		if best == nil || b.Start.Before(best.Start) {
			best = f.joined(b)
		}
	}
	return best, nil
}

// recordingPublisher keeps every event it is handed. When failWith is set Publish returns it.
type recordingPublisher struct {
	mu       sync.Mutex
	events   []events.BookingEvent
	failWith error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var errBrokerDown = errors.New("broker down")
