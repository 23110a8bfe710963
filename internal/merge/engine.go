// Package merge deduplicates per-adapter result sets into one deterministic
// view, resolving business-key collisions by a fixed store priority order.
package merge

import (
	"sort"

	"go.uber.org/zap"

	"fedstore/pkg/domain"
)

// Engine folds the per-adapter result lists for one record type. The zero
// value is not usable; construct with NewEngine.
type Engine[T any] struct {
	priority map[domain.StoreTag]int
	key      func(T) string
	origin   func(T) domain.StoreTag
	log      *zap.Logger
}

// NewEngine builds an engine. priority lists tags highest-first (the primary
// store leads); records from tags outside the list rank after every listed
// tag. key derives the record's business key ("" means never-equal) and origin
// reports which store materialized it.
func NewEngine[T any](priority []domain.StoreTag, key func(T) string, origin func(T) domain.StoreTag, log *zap.Logger) *Engine[T] {
	if log == nil {
		log = zap.NewNop()
	}
	ranks := make(map[domain.StoreTag]int, len(priority))
	for i, tag := range priority {
		ranks[tag] = i
	}
	return &Engine[T]{priority: ranks, key: key, origin: origin, log: log}
}

func (e *Engine[T]) rank(rec T) int {
	if r, ok := e.priority[e.origin(rec)]; ok {
		return r
	}
	return len(e.priority)
}

// Merge flattens the adapter result lists, walks them in store priority order,
// and keeps the first record seen per business key. Because the walk order is
// fixed by priority rather than arrival, the output is identical regardless of
// which adapter's network call returned first. Records with an empty business
// key are always kept: collapsing them would merge unrelated anonymous
// entries.
func (e *Engine[T]) Merge(results [][]T) []T {
	total := 0
	for _, list := range results {
		total += len(list)
	}
	flat := make([]T, 0, total)
	for _, list := range results {
		flat = append(flat, list...)
	}
	// Stable: within one store, native ordering is preserved for the caller's
	// final sort.
	sort.SliceStable(flat, func(i, j int) bool { return e.rank(flat[i]) < e.rank(flat[j]) })

	seen := make(map[string]domain.StoreTag, len(flat))
	merged := make([]T, 0, len(flat))
	for _, rec := range flat {
		k := e.key(rec)
		if k == "" {
			merged = append(merged, rec)
			continue
		}
		if winner, dup := seen[k]; dup {
			e.log.Debug("discarding duplicate record",
				zap.String("business_key", k),
				zap.String("kept_store", string(winner)),
				zap.String("dropped_store", string(e.origin(rec))))
			continue
		}
		seen[k] = e.origin(rec)
		merged = append(merged, rec)
	}
	return merged
}
