package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"fedstore/pkg/domain"
)

// registrationDoc is the events project's native registration shape.
type registrationDoc struct {
	ID            any      `bson:"_id,omitempty"`
	AttendeeEmail string   `bson:"attendeeEmail"`
	AttendeeName  string   `bson:"attendeeName,omitempty"`
	Org           string   `bson:"org,omitempty"`
	Event         string   `bson:"event"`
	Channel       string   `bson:"channel,omitempty"`
	Labels        []string `bson:"labels,omitempty"`
	CreatedAt     tsPair   `bson:"createdAt"`
	CheckinAt     *tsPair  `bson:"checkinAt,omitempty"`
}

// RegistrationAdapter serves event registrations from the events database.
type RegistrationAdapter struct {
	store *Store
}

// Registrations returns the registration adapter bound to this database.
func (s *Store) Registrations() *RegistrationAdapter {
	return &RegistrationAdapter{store: s}
}

// Tag implements the adapter contract.
func (a *RegistrationAdapter) Tag() domain.StoreTag { return a.store.tag }

// List pushes the scope filter down as a case-insensitive match on the
// native event field. Date ranges cannot be expressed against the
// subdocument timestamp encoding and are left to the facade's client-side
// pass.
func (a *RegistrationAdapter) List(ctx context.Context, filter domain.Filter) ([]domain.Registration, error) {
	query := bson.M{}
	if filter.Scope != "" {
		query = scopeQuery("event", filter.Scope)
	}
	cur, err := a.store.db.Collection(collRegistrations).Find(ctx, query)
	if err != nil {
		return nil, a.store.unavailable(fmt.Errorf("find registrations: %w", err))
	}
	var docs []registrationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, a.store.unavailable(fmt.Errorf("decode registrations: %w", err))
	}
	out := make([]domain.Registration, 0, len(docs))
	for _, doc := range docs {
		rec, err := mapRegistration(a.store.tag, doc)
		if err != nil {
			a.store.log.Warn("dropping unmappable document",
				zap.String("collection", collRegistrations),
				zap.String("native_id", idString(doc.ID)),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get fetches one registration by native id.
func (a *RegistrationAdapter) Get(ctx context.Context, nativeID string) (domain.Registration, error) {
	var doc registrationDoc
	err := a.store.db.Collection(collRegistrations).FindOne(ctx, idFilter(nativeID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Registration{}, domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	if err != nil {
		return domain.Registration{}, a.store.unavailable(fmt.Errorf("find registration: %w", err))
	}
	return mapRegistration(a.store.tag, doc)
}

// Create inserts a registration in the events project's native shape.
func (a *RegistrationAdapter) Create(ctx context.Context, rec domain.Registration) (string, error) {
	doc := registrationDoc{
		AttendeeEmail: rec.Email,
		AttendeeName:  rec.Name,
		Org:           rec.Company,
		Event:         rec.Event,
		Channel:       rec.Source,
		Labels:        rec.Tags,
		CreatedAt:     pairFrom(rec.RegisteredAt),
	}
	if rec.CheckedInAt != nil {
		pair := pairFrom(*rec.CheckedInAt)
		doc.CheckinAt = &pair
	}
	res, err := a.store.db.Collection(collRegistrations).InsertOne(ctx, doc)
	if err != nil {
		return "", a.store.unavailable(fmt.Errorf("insert registration: %w", err))
	}
	return idString(res.InsertedID), nil
}

// Update translates the canonical field set into a native $set.
func (a *RegistrationAdapter) Update(ctx context.Context, nativeID string, fields domain.Fields) error {
	set := bson.M{}
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			set["attendeeEmail"] = value
		case domain.FieldName:
			set["attendeeName"] = value
		case domain.FieldCompany:
			set["org"] = value
		case domain.FieldSource:
			set["channel"] = value
		case domain.FieldTags:
			set["labels"] = value
		case domain.FieldCheckedInAt:
			if t, ok := value.(time.Time); ok {
				set["checkinAt"] = pairFrom(t)
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	res, err := a.store.db.Collection(collRegistrations).UpdateOne(ctx, idFilter(nativeID), bson.M{"$set": set})
	if err != nil {
		return a.store.unavailable(fmt.Errorf("update registration: %w", err))
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

// Delete removes one registration document.
func (a *RegistrationAdapter) Delete(ctx context.Context, nativeID string) error {
	res, err := a.store.db.Collection(collRegistrations).DeleteOne(ctx, idFilter(nativeID))
	if err != nil {
		return a.store.unavailable(fmt.Errorf("delete registration: %w", err))
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

func mapRegistration(tag domain.StoreTag, doc registrationDoc) (domain.Registration, error) {
	if doc.CreatedAt.isZero() {
		return domain.Registration{}, domain.ErrMapping{
			Store: tag, NativeID: idString(doc.ID), Reason: "missing createdAt",
		}
	}
	rec := domain.Registration{
		ID:           idString(doc.ID),
		Email:        doc.AttendeeEmail,
		Name:         doc.AttendeeName,
		Company:      doc.Org,
		Event:        doc.Event,
		Source:       doc.Channel,
		Tags:         doc.Labels,
		RegisteredAt: doc.CreatedAt.time(),
		Origin:       tag,
	}
	if doc.CheckinAt != nil && !doc.CheckinAt.isZero() {
		t := doc.CheckinAt.time()
		rec.CheckedInAt = &t
	}
	return rec, nil
}
