package postgres

import (
	"encoding/json"
	"time"

	"fedstore/pkg/domain"
)

// timeLayout is the temporal encoding the primary store's documents use.
const timeLayout = time.RFC3339

// registrationDoc is the native document shape for event registrations.
type registrationDoc struct {
	Email        string   `json:"email"`
	Name         string   `json:"name,omitempty"`
	Company      string   `json:"company,omitempty"`
	EventName    string   `json:"eventName"`
	Source       string   `json:"source,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	RegisteredAt string   `json:"registeredAt"`
	CheckedInAt  string   `json:"checkedInAt,omitempty"`
}

// RegistrationAdapter serves event registrations from the primary store.
type RegistrationAdapter struct {
	docAdapter[domain.Registration]
}

// Registrations returns the registration adapter bound to this database.
func (s *Store) Registrations() *RegistrationAdapter {
	return &RegistrationAdapter{docAdapter[domain.Registration]{
		store:      s,
		table:      tableRegistrations,
		scopeField: "eventName",
		timeField:  "registeredAt",
		decode:     decodeRegistration,
		encode:     encodeRegistration,
		patch:      patchRegistration,
	}}
}

func decodeRegistration(tag domain.StoreTag, id string, raw []byte) (domain.Registration, error) {
	var doc registrationDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Registration{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "malformed document: " + err.Error()}
	}
	registeredAt, err := time.Parse(timeLayout, doc.RegisteredAt)
	if err != nil {
		return domain.Registration{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "unparseable registeredAt"}
	}
	rec := domain.Registration{
		ID:           id,
		Email:        doc.Email,
		Name:         doc.Name,
		Company:      doc.Company,
		Event:        doc.EventName,
		Source:       doc.Source,
		Tags:         doc.Tags,
		RegisteredAt: registeredAt.UTC(),
		Origin:       tag,
	}
	if doc.CheckedInAt != "" {
		checkedIn, err := time.Parse(timeLayout, doc.CheckedInAt)
		if err != nil {
			return domain.Registration{}, domain.ErrMapping{Store: tag, NativeID: id, Reason: "unparseable checkedInAt"}
		}
		utc := checkedIn.UTC()
		rec.CheckedInAt = &utc
	}
	return rec, nil
}

func encodeRegistration(rec domain.Registration) ([]byte, error) {
	doc := registrationDoc{
		Email:        rec.Email,
		Name:         rec.Name,
		Company:      rec.Company,
		EventName:    rec.Event,
		Source:       rec.Source,
		Tags:         rec.Tags,
		RegisteredAt: rec.RegisteredAt.UTC().Format(timeLayout),
	}
	if rec.CheckedInAt != nil {
		doc.CheckedInAt = rec.CheckedInAt.UTC().Format(timeLayout)
	}
	return json.Marshal(doc)
}

func patchRegistration(fields domain.Fields) (map[string]any, error) {
	native := make(map[string]any, len(fields))
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			native["email"] = value
		case domain.FieldName:
			native["name"] = value
		case domain.FieldCompany:
			native["company"] = value
		case domain.FieldSource:
			native["source"] = value
		case domain.FieldTags:
			native["tags"] = value
		case domain.FieldCheckedInAt:
			if t, ok := value.(time.Time); ok {
				native["checkedInAt"] = t.UTC().Format(timeLayout)
			}
		}
	}
	return native, nil
}
