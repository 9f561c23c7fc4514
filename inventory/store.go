package inventory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no item matches the lookup.
var ErrNotFound = errors.New("inventory: item not found")

// Store persists inventory items.
type Store interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id uint) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uint) error
}
