// Package domain defines the canonical record shapes, store tags, filters,
// and error taxonomy shared by every federated store component.
package domain

import "time"

// StoreTag identifies one configured backing store. Tags form a small reserved
// vocabulary fixed at compile time; composite identifiers embed them as the
// prefix before the first colon.
type StoreTag string

// Reserved store tags. Only tags listed here may appear in a composite
// identifier; any other prefix is treated as part of a primary-store native id.
const (
	// TagPrimary is the store this application owns. Primary native ids are
	// encoded bare, without a tag prefix.
	TagPrimary StoreTag = "primary"
	// TagEvents is the events project's document database.
	TagEvents StoreTag = "events"
	// TagForms is the forms application's embedded database.
	TagForms StoreTag = "forms"
	// TagMailer is the mailing-list application's key-value store.
	TagMailer StoreTag = "mailer"
	// TagMemory is the ephemeral in-memory store used by tests.
	TagMemory StoreTag = "memory"
)

var reservedTags = map[StoreTag]bool{
	TagPrimary: true,
	TagEvents:  true,
	TagForms:   true,
	TagMailer:  true,
	TagMemory:  true,
}

// ReservedTag reports whether s belongs to the fixed tag vocabulary.
func ReservedTag(s string) bool { return reservedTags[StoreTag(s)] }

// Registration is the canonical shape of one event registration, regardless of
// which backing store produced it.
type Registration struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Company      string     `json:"company"`
	Event        string     `json:"event"`
	Source       string     `json:"source"`
	Tags         []string   `json:"tags"`
	RegisteredAt time.Time  `json:"registered_at"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`

	// Origin records which backing store materialized this instance. It is
	// never persisted; mutation routing and priority dedup read it in memory.
	Origin StoreTag `json:"-"`
}

// ContactSubmission is the canonical shape of one contact-form submission.
type ContactSubmission struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	FormSource  string    `json:"form_source"`
	SubmittedAt time.Time `json:"submitted_at"`

	Origin StoreTag `json:"-"`
}

// EmailSignup is the canonical shape of one newsletter signup.
type EmailSignup struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Source     string    `json:"source"`
	SignedUpAt time.Time `json:"signed_up_at"`

	Origin StoreTag `json:"-"`
}

// Fields carries a partial update keyed by canonical field name. Adapters
// translate canonical names into their native column or document fields.
type Fields map[string]any

// Canonical field names accepted in partial updates.
const (
	FieldEmail       = "email"
	FieldName        = "name"
	FieldCompany     = "company"
	FieldMessage     = "message"
	FieldSource      = "source"
	FieldTags        = "tags"
	FieldCheckedInAt = "checked_in_at"
)
