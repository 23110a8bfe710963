// Package mongo adapts the events project's MongoDB database to the
// federated record contract. The collections are owned by another
// application: field names and timestamp encodings follow that project's
// conventions, and this layer never manages their schema.
//
// Timestamps are stored as {"_seconds": n, "_nanoseconds": n} subdocuments
// and are normalized to UTC time.Time during mapping.
package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"fedstore/pkg/domain"
)

const (
	collRegistrations = "registrations"
	collMessages      = "messages"
)

// Store holds the shared client for the events database. The driver connects
// lazily; the client is safe for concurrent use and reused for the process
// lifetime.
type Store struct {
	db  *mongo.Database
	tag domain.StoreTag
	log *zap.Logger
}

// Open prepares a client for the events project's database.
func Open(uri, database string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &Store{db: client.Database(database), tag: domain.TagEvents, log: log}, nil
}

// Tag returns the store tag every adapter on this database reports.
func (s *Store) Tag() domain.StoreTag { return s.tag }

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *Store) unavailable(err error) error {
	return domain.ErrUnavailable{Store: s.tag, Err: err}
}

// tsPair is the events project's timestamp encoding.
type tsPair struct {
	Seconds int64 `bson:"_seconds"`
	Nanos   int64 `bson:"_nanoseconds"`
}

func (p tsPair) time() time.Time { return time.Unix(p.Seconds, p.Nanos).UTC() }

func (p tsPair) isZero() bool { return p.Seconds == 0 && p.Nanos == 0 }

func pairFrom(t time.Time) tsPair {
	return tsPair{Seconds: t.Unix(), Nanos: int64(t.Nanosecond())}
}

// idString renders a native _id, which the events project stores as either
// an ObjectID or a plain string depending on document age.
func idString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// scopeQuery builds a case-insensitive exact match on a native scope field.
// Scope comparison is case-insensitive everywhere in the federated view, so
// the pushed-down predicate must not be stricter than the client-side pass.
func scopeQuery(field, scope string) bson.M {
	return bson.M{field: bson.Regex{
		Pattern: "^" + regexp.QuoteMeta(scope) + "$",
		Options: "i",
	}}
}

// idFilter matches a document by native id, accepting both id styles.
func idFilter(nativeID string) bson.M {
	if oid, err := bson.ObjectIDFromHex(nativeID); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": nativeID}
}
