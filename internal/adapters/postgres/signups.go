package postgres

import (
	"encoding/json"
	"time"

	"fedstore/pkg/domain"
)

// signupDoc is the native document shape for newsletter signups.
type signupDoc struct {
	Email      string `json:"email"`
	Source     string `json:"source,omitempty"`
	SignedUpAt string `json:"signedUpAt"`
}

// SignupAdapter serves email signups from the primary store.
type SignupAdapter struct {
	docAdapter[domain.EmailSignup]
}

// Signups returns the signup adapter bound to this database.
func (s *Store) Signups() *SignupAdapter {
	return &SignupAdapter{docAdapter[domain.EmailSignup]{
		store:      s,
		table:      tableSignups,
		scopeField: "source",
		timeField:  "signedUpAt",
		decode:     decodeSignup,
		encode:     encodeSignup,
		patch:      patchSignup,
	}}
}

func decodeSignup(tag domain.StoreTag, id string, raw []byte) (domain.EmailSignup, error) {
	var doc signupDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.EmailSignup{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "malformed document: " + err.Error()}
	}
	signedUpAt, err := time.Parse(timeLayout, doc.SignedUpAt)
	if err != nil {
		return domain.EmailSignup{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "unparseable signedUpAt"}
	}
	return domain.EmailSignup{
		ID:         id,
		Email:      doc.Email,
		Source:     doc.Source,
		SignedUpAt: signedUpAt.UTC(),
		Origin:     tag,
	}, nil
}

func encodeSignup(rec domain.EmailSignup) ([]byte, error) {
	return json.Marshal(signupDoc{
		Email:      rec.Email,
		Source:     rec.Source,
		SignedUpAt: rec.SignedUpAt.UTC().Format(timeLayout),
	})
}

func patchSignup(fields domain.Fields) (map[string]any, error) {
	native := make(map[string]any, len(fields))
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			native["email"] = value
		case domain.FieldSource:
			native["source"] = value
		}
	}
	return native, nil
}
