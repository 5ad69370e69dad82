package item

import (
	"context"
	"errors"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
)

// Catalog exposes items to the booking engine as booking.ItemCatalog.
type Catalog struct {
	repo Repository
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

var _ booking.ItemCatalog = (*Catalog)(nil)

func (c *Catalog) Lookup(ctx context.Context, itemID string) (*booking.ItemRef, error) {
	it, err := c.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, booking.ErrItemNotFound
		}
		return nil, err
	}
	return &booking.ItemRef{
		ID:        it.ID,
		OwnerID:   it.OwnerID,
		Available: it.Available,
	}, nil
}

func (c *Catalog) HasItems(ctx context.Context, ownerID string) (bool, error) {
	return c.repo.ExistsForOwner(ctx, ownerID)
}
