// Package memory provides a map-backed adapter usable for tests and
// ephemeral deployments. It performs no native filtering; the facade's
// client-side pass applies the whole filter.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fedstore/pkg/domain"
)

// Hooks supplies the type-specific behavior the generic store cannot express.
type Hooks[T any] struct {
	// SetID stamps the native id on a record.
	SetID func(T, string) T
	// SetOrigin stamps the adapter's store tag on a materialized record.
	SetOrigin func(T, domain.StoreTag) T
	// Apply folds a partial field set into a record.
	Apply func(T, domain.Fields) T
}

// Adapter stores canonical records in process memory keyed by native id.
type Adapter[T any] struct {
	tag   domain.StoreTag
	hooks Hooks[T]

	mu    sync.RWMutex
	recs  map[string]T
	order []string
}

// New constructs an empty adapter registered under tag.
func New[T any](tag domain.StoreTag, hooks Hooks[T]) *Adapter[T] {
	return &Adapter[T]{tag: tag, hooks: hooks, recs: make(map[string]T)}
}

// Tag implements the adapter contract.
func (a *Adapter[T]) Tag() domain.StoreTag { return a.tag }

// List returns every record in insertion order, tagged with this store's
// origin. No filter dimension is pushed down.
func (a *Adapter[T]) List(ctx context.Context, _ domain.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]T, 0, len(a.order))
	for _, id := range a.order {
		rec, ok := a.recs[id]
		if !ok {
			continue
		}
		out = append(out, a.hooks.SetOrigin(a.hooks.SetID(rec, id), a.tag))
	}
	return out, nil
}

// Get fetches one record by native id.
func (a *Adapter[T]) Get(ctx context.Context, nativeID string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.recs[nativeID]
	if !ok {
		return zero, domain.ErrNotFound{Store: a.tag, NativeID: nativeID}
	}
	return a.hooks.SetOrigin(a.hooks.SetID(rec, nativeID), a.tag), nil
}

// Create stores the record under a generated native id.
func (a *Adapter[T]) Create(ctx context.Context, rec T) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs[id] = a.hooks.SetID(rec, id)
	a.order = append(a.order, id)
	return id, nil
}

// Update folds the field set into the stored record.
func (a *Adapter[T]) Update(ctx context.Context, nativeID string, fields domain.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.recs[nativeID]
	if !ok {
		return domain.ErrNotFound{Store: a.tag, NativeID: nativeID}
	}
	a.recs[nativeID] = a.hooks.Apply(rec, fields)
	return nil
}

// Delete removes the record.
func (a *Adapter[T]) Delete(ctx context.Context, nativeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.recs[nativeID]; !ok {
		return domain.ErrNotFound{Store: a.tag, NativeID: nativeID}
	}
	delete(a.recs, nativeID)
	return nil
}

// Seed inserts a record under a fixed native id, for tests and fixtures.
func (a *Adapter[T]) Seed(nativeID string, rec T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.recs[nativeID]; !ok {
		a.order = append(a.order, nativeID)
	}
	a.recs[nativeID] = a.hooks.SetID(rec, nativeID)
}

// Len reports how many records the adapter holds.
func (a *Adapter[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.recs)
}
