package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"fedstore/pkg/domain"
)

// messageDoc is the events project's native contact-message shape.
type messageDoc struct {
	ID        any    `bson:"_id,omitempty"`
	FromEmail string `bson:"fromEmail"`
	FromName  string `bson:"fromName,omitempty"`
	Body      string `bson:"body,omitempty"`
	FormID    string `bson:"formId"`
	SentAt    tsPair `bson:"sentAt"`
}

// ContactAdapter serves contact submissions from the events database.
type ContactAdapter struct {
	store *Store
}

// Contacts returns the contact-submission adapter bound to this database.
func (s *Store) Contacts() *ContactAdapter {
	return &ContactAdapter{store: s}
}

// Tag implements the adapter contract.
func (a *ContactAdapter) Tag() domain.StoreTag { return a.store.tag }

// List pushes the scope filter down case-insensitively against the native
// formId field; date ranges are left to the facade.
func (a *ContactAdapter) List(ctx context.Context, filter domain.Filter) ([]domain.ContactSubmission, error) {
	query := bson.M{}
	if filter.Scope != "" {
		query = scopeQuery("formId", filter.Scope)
	}
	cur, err := a.store.db.Collection(collMessages).Find(ctx, query)
	if err != nil {
		return nil, a.store.unavailable(fmt.Errorf("find messages: %w", err))
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, a.store.unavailable(fmt.Errorf("decode messages: %w", err))
	}
	out := make([]domain.ContactSubmission, 0, len(docs))
	for _, doc := range docs {
		rec, err := mapMessage(a.store.tag, doc)
		if err != nil {
			a.store.log.Warn("dropping unmappable document",
				zap.String("collection", collMessages),
				zap.String("native_id", idString(doc.ID)),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get fetches one message by native id.
func (a *ContactAdapter) Get(ctx context.Context, nativeID string) (domain.ContactSubmission, error) {
	var doc messageDoc
	err := a.store.db.Collection(collMessages).FindOne(ctx, idFilter(nativeID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ContactSubmission{}, domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	if err != nil {
		return domain.ContactSubmission{}, a.store.unavailable(fmt.Errorf("find message: %w", err))
	}
	return mapMessage(a.store.tag, doc)
}

// Create inserts a message in the events project's native shape.
func (a *ContactAdapter) Create(ctx context.Context, rec domain.ContactSubmission) (string, error) {
	doc := messageDoc{
		FromEmail: rec.Email,
		FromName:  rec.Name,
		Body:      rec.Message,
		FormID:    rec.FormSource,
		SentAt:    pairFrom(rec.SubmittedAt),
	}
	res, err := a.store.db.Collection(collMessages).InsertOne(ctx, doc)
	if err != nil {
		return "", a.store.unavailable(fmt.Errorf("insert message: %w", err))
	}
	return idString(res.InsertedID), nil
}

// Update translates the canonical field set into a native $set.
func (a *ContactAdapter) Update(ctx context.Context, nativeID string, fields domain.Fields) error {
	set := bson.M{}
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			set["fromEmail"] = value
		case domain.FieldName:
			set["fromName"] = value
		case domain.FieldMessage:
			set["body"] = value
		}
	}
	if len(set) == 0 {
		return nil
	}
	res, err := a.store.db.Collection(collMessages).UpdateOne(ctx, idFilter(nativeID), bson.M{"$set": set})
	if err != nil {
		return a.store.unavailable(fmt.Errorf("update message: %w", err))
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

// Delete removes one message document.
func (a *ContactAdapter) Delete(ctx context.Context, nativeID string) error {
	res, err := a.store.db.Collection(collMessages).DeleteOne(ctx, idFilter(nativeID))
	if err != nil {
		return a.store.unavailable(fmt.Errorf("delete message: %w", err))
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

func mapMessage(tag domain.StoreTag, doc messageDoc) (domain.ContactSubmission, error) {
	if doc.SentAt.isZero() {
		return domain.ContactSubmission{}, domain.ErrMapping{
			Store: tag, NativeID: idString(doc.ID), Reason: "missing sentAt",
		}
	}
	return domain.ContactSubmission{
		ID:          idString(doc.ID),
		Email:       doc.FromEmail,
		Name:        doc.FromName,
		Message:     doc.Body,
		FormSource:  doc.FormID,
		SubmittedAt: doc.SentAt.time(),
		Origin:      tag,
	}, nil
}
