package postgres

import (
	"encoding/json"
	"time"

	"fedstore/pkg/domain"
)

// contactDoc is the native document shape for contact-form submissions.
type contactDoc struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Message     string `json:"message,omitempty"`
	FormSource  string `json:"formSource"`
	SubmittedAt string `json:"submittedAt"`
}

// ContactAdapter serves contact submissions from the primary store.
type ContactAdapter struct {
	docAdapter[domain.ContactSubmission]
}

// Contacts returns the contact-submission adapter bound to this database.
func (s *Store) Contacts() *ContactAdapter {
	return &ContactAdapter{docAdapter[domain.ContactSubmission]{
		store:      s,
		table:      tableContacts,
		scopeField: "formSource",
		timeField:  "submittedAt",
		decode:     decodeContact,
		encode:     encodeContact,
		patch:      patchContact,
	}}
}

func decodeContact(tag domain.StoreTag, id string, raw []byte) (domain.ContactSubmission, error) {
	var doc contactDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.ContactSubmission{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "malformed document: " + err.Error()}
	}
	submittedAt, err := time.Parse(timeLayout, doc.SubmittedAt)
	if err != nil {
		return domain.ContactSubmission{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "unparseable submittedAt"}
	}
	return domain.ContactSubmission{
		ID:          id,
		Email:       doc.Email,
		Name:        doc.Name,
		Message:     doc.Message,
		FormSource:  doc.FormSource,
		SubmittedAt: submittedAt.UTC(),
		Origin:      tag,
	}, nil
}

func encodeContact(rec domain.ContactSubmission) ([]byte, error) {
	return json.Marshal(contactDoc{
		Email:       rec.Email,
		Name:        rec.Name,
		Message:     rec.Message,
		FormSource:  rec.FormSource,
		SubmittedAt: rec.SubmittedAt.UTC().Format(timeLayout),
	})
}

func patchContact(fields domain.Fields) (map[string]any, error) {
	native := make(map[string]any, len(fields))
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			native["email"] = value
		case domain.FieldName:
			native["name"] = value
		case domain.FieldMessage:
			native["message"] = value
		}
	}
	return native, nil
}
