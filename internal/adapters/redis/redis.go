// Package redis adapts the mailer service's Redis instance to the federated
// record contract. Signups live as hashes keyed signup:<id> with a set index
// of ids; timestamps are unix-second strings as written by the mailer.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fedstore/pkg/domain"
)

const (
	keyPrefix = "signup:"
	indexKey  = "signups:ids"
)

// Store wraps the mailer Redis connection.
type Store struct {
	client *redis.Client
	tag    domain.StoreTag
	log    *zap.Logger
}

// Open connects to the mailer Redis instance. The client dials lazily.
func Open(addr string, log *zap.Logger) *Store {
	if addr == "" {
		addr = "localhost:6379"
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &Store{client: client, tag: domain.TagMailer, log: log}
}

// Tag returns the store tag for this instance.
func (s *Store) Tag() domain.StoreTag { return s.tag }

// Close releases the client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) unavailable(err error) error {
	return domain.ErrUnavailable{Store: s.tag, Err: err}
}

// SignupAdapter serves email signups out of the mailer hashes.
type SignupAdapter struct {
	store *Store
}

// Signups returns the signup adapter for this instance.
func (s *Store) Signups() *SignupAdapter {
	return &SignupAdapter{store: s}
}

// Tag implements the adapter contract.
func (a *SignupAdapter) Tag() domain.StoreTag { return a.store.tag }

// List walks the id index and loads each hash. Redis offers no query
// pushdown, so all filtering happens at the facade.
func (a *SignupAdapter) List(ctx context.Context, _ domain.Filter) ([]domain.EmailSignup, error) {
	ids, err := a.store.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, a.store.unavailable(fmt.Errorf("read signup index: %w", err))
	}
	out := make([]domain.EmailSignup, 0, len(ids))
	for _, id := range ids {
		values, err := a.store.client.HGetAll(ctx, keyPrefix+id).Result()
		if err != nil {
			return nil, a.store.unavailable(fmt.Errorf("read signup %s: %w", id, err))
		}
		if len(values) == 0 {
			// Index entry without a hash; the mailer expires hashes but
			// never prunes the set.
			continue
		}
		rec, err := mapSignup(a.store.tag, id, values)
		if err != nil {
			a.store.log.Warn("dropping unmappable hash",
				zap.String("key", keyPrefix+id),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get loads one signup hash.
func (a *SignupAdapter) Get(ctx context.Context, nativeID string) (domain.EmailSignup, error) {
	values, err := a.store.client.HGetAll(ctx, keyPrefix+nativeID).Result()
	if err != nil {
		return domain.EmailSignup{}, a.store.unavailable(fmt.Errorf("read signup %s: %w", nativeID, err))
	}
	if len(values) == 0 {
		return domain.EmailSignup{}, domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return mapSignup(a.store.tag, nativeID, values)
}

// Create writes the hash and indexes its id.
func (a *SignupAdapter) Create(ctx context.Context, rec domain.EmailSignup) (string, error) {
	id := uuid.NewString()
	fields := map[string]any{
		"email":  rec.Email,
		"source": rec.Source,
		"ts":     strconv.FormatInt(rec.SignedUpAt.Unix(), 10),
	}
	if err := a.store.client.HSet(ctx, keyPrefix+id, fields).Err(); err != nil {
		return "", a.store.unavailable(fmt.Errorf("write signup: %w", err))
	}
	if err := a.store.client.SAdd(ctx, indexKey, id).Err(); err != nil {
		return "", a.store.unavailable(fmt.Errorf("index signup: %w", err))
	}
	return id, nil
}

// Update rewrites the changed hash fields.
func (a *SignupAdapter) Update(ctx context.Context, nativeID string, fields domain.Fields) error {
	exists, err := a.store.client.Exists(ctx, keyPrefix+nativeID).Result()
	if err != nil {
		return a.store.unavailable(fmt.Errorf("check signup %s: %w", nativeID, err))
	}
	if exists == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	native := map[string]any{}
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			native["email"] = value
		case domain.FieldSource:
			native["source"] = value
		}
	}
	if len(native) == 0 {
		return nil
	}
	if err := a.store.client.HSet(ctx, keyPrefix+nativeID, native).Err(); err != nil {
		return a.store.unavailable(fmt.Errorf("update signup %s: %w", nativeID, err))
	}
	return nil
}

// Delete removes the hash and its index entry.
func (a *SignupAdapter) Delete(ctx context.Context, nativeID string) error {
	removed, err := a.store.client.Del(ctx, keyPrefix+nativeID).Result()
	if err != nil {
		return a.store.unavailable(fmt.Errorf("delete signup %s: %w", nativeID, err))
	}
	if removed == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	if err := a.store.client.SRem(ctx, indexKey, nativeID).Err(); err != nil {
		return a.store.unavailable(fmt.Errorf("unindex signup %s: %w", nativeID, err))
	}
	return nil
}

func mapSignup(tag domain.StoreTag, id string, values map[string]string) (domain.EmailSignup, error) {
	raw, ok := values["ts"]
	if !ok {
		return domain.EmailSignup{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "missing ts"}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.EmailSignup{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "unparseable ts " + strconv.Quote(raw)}
	}
	return domain.EmailSignup{
		ID:         id,
		Email:      values["email"],
		Source:     values["source"],
		SignedUpAt: time.Unix(secs, 0).UTC(),
		Origin:     tag,
	}, nil
}
