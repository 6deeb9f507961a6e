package repository

import (
	"context"

	"github.com/jwalitptl/clinic-api/internal/store"
)

// Identifiable is implemented by every stored entity.
type Identifiable interface {
	GetID() string
}

// Collection is a typed view of one store key.
type Collection[T Identifiable] struct {
	store store.Store
	key   string
}

func NewCollection[T Identifiable](s store.Store, key string) *Collection[T] {
	return &Collection[T]{store: s, key: key}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// All returns the full collection, never nil.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return store.Load[T](ctx, c.store, c.key)
}

// Replace overwrites the full collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	return store.Save(ctx, c.store, c.key, items)
}

func (c *Collection[T]) Exists(ctx context.Context) (bool, error) {
	return store.Exists(ctx, c.store, c.key)
}

// Get loads the collection and returns the item with id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	if i := IndexOf(items, id); i >= 0 {
		return items[i], true, nil
	}
	return zero, false, nil
}

// IndexOf returns the position of id in items or -1.
func IndexOf[T Identifiable](items []T, id string) int {
	for i, item := range items {
		if item.GetID() == id {
			return i
		}
	}
	return -1
}

// Upsert replaces the item with the same id or appends it.
func Upsert[T Identifiable](items []T, item T) []T {
	if i := IndexOf(items, item.GetID()); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

// Remove drops the item with id, reporting whether it was present.
func Remove[T Identifiable](items []T, id string) ([]T, bool) {
	i := IndexOf(items, id)
	if i < 0 {
		return items, false
	}
	return append(items[:i:i], items[i+1:]...), true
}
