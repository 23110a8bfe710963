// Package federation presents each admin record type as one logical
// collection over two to three independently-owned backing stores. Reads fan
// out to every adapter for the type and merge; mutations route to exactly one
// adapter through the composite identifier.
package federation

import (
	"context"

	"fedstore/pkg/domain"
)

// Adapter is the per-store contract for one record type. Implementations map
// their store's native document shape into the canonical record shape, tag
// every record they return with their store's origin, and normalize whatever
// timestamp representation the store uses into UTC time.Time values.
//
// Adapters operate on native ids only; composite-id routing is the facade's
// job. List pushes down whatever filter dimensions the native query language
// supports and leaves the rest to the facade, which re-applies the full filter
// after merge.
type Adapter[T any] interface {
	// Tag identifies the backing store this adapter owns.
	Tag() domain.StoreTag
	// List returns canonical records, natively filtered as far as possible.
	List(ctx context.Context, filter domain.Filter) ([]T, error)
	// Get fetches one record by native id.
	Get(ctx context.Context, nativeID string) (T, error)
	// Create inserts a record and returns the store-generated native id.
	Create(ctx context.Context, rec T) (string, error)
	// Update applies a partial field set to one native document.
	Update(ctx context.Context, nativeID string, fields domain.Fields) error
	// Delete removes one native document.
	Delete(ctx context.Context, nativeID string) error
}
