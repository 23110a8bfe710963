package federation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fedstore/internal/identity"
	"fedstore/internal/merge"
	"fedstore/pkg/domain"
)

const defaultAdapterTimeout = 5 * time.Second

// Store is the federated facade for one record type. Reads fan out to every
// registered adapter concurrently and merge; mutations decode the composite
// id and dispatch to exactly one adapter.
type Store[T any] struct {
	typ      Type[T]
	adapters []Adapter[T]
	byTag    map[domain.StoreTag]Adapter[T]
	router   *identity.Router
	engine   *merge.Engine[T]
	log      *zap.Logger
	metrics  Recorder
	timeout  time.Duration
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithLogger attaches a logger; the default discards everything.
func WithLogger[T any](log *zap.Logger) Option[T] {
	return func(s *Store[T]) { s.log = log }
}

// WithMetrics attaches an adapter-call metrics recorder.
func WithMetrics[T any](rec Recorder) Option[T] {
	return func(s *Store[T]) { s.metrics = rec }
}

// WithAdapterTimeout bounds each adapter's network round trip during a
// fan-out read, so one slow store cannot stall the merged view.
func WithAdapterTimeout[T any](d time.Duration) Option[T] {
	return func(s *Store[T]) { s.timeout = d }
}

// New builds a federated store. Adapters are listed in store priority order:
// the first is the primary store, which receives all creates, encodes its
// native ids bare, and wins business-key ties during merge.
func New[T any](typ Type[T], adapters []Adapter[T], opts ...Option[T]) (*Store[T], error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("federation %s: at least one adapter required", typ.Name)
	}
	tags := make([]domain.StoreTag, len(adapters))
	byTag := make(map[domain.StoreTag]Adapter[T], len(adapters))
	for i, a := range adapters {
		tag := a.Tag()
		if _, dup := byTag[tag]; dup {
			return nil, fmt.Errorf("federation %s: duplicate adapter tag %s", typ.Name, tag)
		}
		tags[i] = tag
		byTag[tag] = a
	}
	s := &Store[T]{
		typ:      typ,
		adapters: adapters,
		byTag:    byTag,
		router:   identity.NewRouter(tags[0], tags[1:]...),
		log:      zap.NewNop(),
		metrics:  NopRecorder{},
		timeout:  defaultAdapterTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = merge.NewEngine(tags, typ.Key, typ.Origin, s.log)
	return s, nil
}

// TypeName returns the record type's plural name, used in export keys and
// log fields.
func (s *Store[T]) TypeName() string { return s.typ.Name }

// List fans the filter out to every adapter concurrently, waits for all of
// them, merges, re-applies the filter client-side, and returns records sorted
// by their primary timestamp descending with composite ids.
//
// A failed or timed-out adapter contributes an empty result and is logged;
// the call only errors when every adapter failed, because the federated view's
// value is "best available", not "all stores or nothing".
func (s *Store[T]) List(ctx context.Context, filter domain.Filter) ([]T, error) {
	results := make([][]T, len(s.adapters))
	failures := make([]error, len(s.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range s.adapters {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()
			start := time.Now()
			recs, err := a.List(cctx, filter)
			s.metrics.Observe(a.Tag(), "list", time.Since(start), err == nil)
			if err != nil {
				failures[i] = domain.ErrUnavailable{Store: a.Tag(), Err: err}
				s.log.Warn("adapter list failed, contributing empty result",
					zap.String("type", s.typ.Name),
					zap.String("store", string(a.Tag())),
					zap.Error(err))
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(failures...); err != nil {
		failed := 0
		for _, f := range failures {
			if f != nil {
				failed++
			}
		}
		if failed == len(s.adapters) {
			return nil, fmt.Errorf("list %s: every store failed: %w", s.typ.Name, err)
		}
	}

	merged := s.engine.Merge(results)

	out := merged[:0]
	for _, rec := range merged {
		if s.typ.Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.typ.When(out[i]).After(s.typ.When(out[j]))
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	for i, rec := range out {
		out[i] = s.typ.SetID(rec, s.router.Encode(s.typ.Origin(rec), s.typ.ID(rec)))
	}
	return out, nil
}

// Counts lists without a filter and tallies the type's grouping field. Counts
// are never pushed to native stores: the grouping field only agrees in the
// canonical shape.
func (s *Store[T]) Counts(ctx context.Context) (map[string]int, error) {
	recs, err := s.List(ctx, domain.Filter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, rec := range recs {
		counts[s.typ.Group(rec)]++
	}
	return counts, nil
}

// Create inserts the record into the primary store and returns its composite
// id (bare, since primary ids encode unprefixed). Secondary stores are owned
// by other applications and are read-only from this layer.
func (s *Store[T]) Create(ctx context.Context, rec T) (string, error) {
	primary := s.adapters[0]
	start := time.Now()
	nativeID, err := primary.Create(ctx, rec)
	s.metrics.Observe(primary.Tag(), "create", time.Since(start), err == nil)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", s.typ.Name, err)
	}
	return s.router.Encode(primary.Tag(), nativeID), nil
}

// Get resolves the composite id and fetches the record from its origin store,
// returned with its composite id.
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	adapter, nativeID, err := s.resolve(id)
	if err != nil {
		return zero, err
	}
	start := time.Now()
	rec, err := adapter.Get(ctx, nativeID)
	s.metrics.Observe(adapter.Tag(), "get", time.Since(start), err == nil)
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", s.typ.Name, err)
	}
	return s.typ.SetID(rec, s.router.Encode(adapter.Tag(), nativeID)), nil
}

// Update routes the partial field set to the record's origin store. It never
// fans out: a mutation targets exactly one native document, and a failure is
// always surfaced, never degraded.
func (s *Store[T]) Update(ctx context.Context, id string, fields domain.Fields) error {
	adapter, nativeID, err := s.resolve(id)
	if err != nil {
		return err
	}
	start := time.Now()
	err = adapter.Update(ctx, nativeID, fields)
	s.metrics.Observe(adapter.Tag(), "update", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.typ.Name, err)
	}
	return nil
}

// Delete removes the record's native document from its origin store only. If
// the same business key also lives in another store, that copy remains
// visible on the next read; there is no cross-store tombstoning.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	adapter, nativeID, err := s.resolve(id)
	if err != nil {
		return err
	}
	start := time.Now()
	err = adapter.Delete(ctx, nativeID)
	s.metrics.Observe(adapter.Tag(), "delete", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.typ.Name, err)
	}
	return nil
}

func (s *Store[T]) resolve(id string) (Adapter[T], string, error) {
	tag, nativeID, err := s.router.Decode(id)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s id: %w", s.typ.Name, err)
	}
	adapter, ok := s.byTag[tag]
	if !ok {
		return nil, "", fmt.Errorf("resolve %s id: %w", s.typ.Name, domain.ErrUnknownTag{Tag: string(tag)})
	}
	return adapter, nativeID, nil
}
