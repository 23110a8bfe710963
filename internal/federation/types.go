package federation

import (
	"strings"
	"time"

	"fedstore/pkg/domain"
)

// Type describes how the facade handles one canonical record type: identity,
// grouping, residual filtering, and the fixed CSV column set.
type Type[T any] struct {
	// Name labels the type in errors, logs, and metrics.
	Name string
	// ID and SetID read and rewrite the record's identifier, letting the
	// facade swap native ids for composite ones before records leave it.
	ID    func(T) string
	SetID func(T, string) T
	// Key derives the business key used for dedup ("" = never equal).
	Key func(T) string
	// Group derives the tally key for Counts (event name, form source...).
	Group func(T) string
	// When returns the record's primary timestamp, used for sorting and
	// date-range filtering.
	When func(T) time.Time
	// Origin reports which store materialized the record.
	Origin func(T) domain.StoreTag
	// Matches applies the full filter client-side. Dimensions an adapter
	// already pushed down must still hold here, so re-applying is harmless.
	Matches func(T, domain.Filter) bool
	// Columns is the fixed CSV header; Row renders one record against it,
	// with empty cells for fields the origin store never carried.
	Columns []string
	Row     func(T) []string
}

// RegistrationType describes event registrations.
func RegistrationType() Type[domain.Registration] {
	return Type[domain.Registration]{
		Name: "registrations",
		ID:   func(r domain.Registration) string { return r.ID },
		SetID: func(r domain.Registration, id string) domain.Registration {
			r.ID = id
			return r
		},
		Key:    domain.Registration.Key,
		Group:  func(r domain.Registration) string { return r.Event },
		When:   func(r domain.Registration) time.Time { return r.RegisteredAt },
		Origin: func(r domain.Registration) domain.StoreTag { return r.Origin },
		Matches: func(r domain.Registration, f domain.Filter) bool {
			return f.MatchesScope(r.Event) &&
				(!f.HasRange() || f.InRange(r.RegisteredAt)) &&
				f.MatchesSearch(r.Email, r.Name, r.Company)
		},
		Columns: []string{"id", "email", "name", "company", "event", "source", "tags", "registered_at", "checked_in_at"},
		Row: func(r domain.Registration) []string {
			checkedIn := ""
			if r.CheckedInAt != nil {
				checkedIn = r.CheckedInAt.UTC().Format(time.RFC3339)
			}
			return []string{
				r.ID, r.Email, r.Name, r.Company, r.Event, r.Source,
				strings.Join(r.Tags, ";"),
				r.RegisteredAt.UTC().Format(time.RFC3339),
				checkedIn,
			}
		},
	}
}

// ContactType describes contact-form submissions.
func ContactType() Type[domain.ContactSubmission] {
	return Type[domain.ContactSubmission]{
		Name: "contacts",
		ID:   func(c domain.ContactSubmission) string { return c.ID },
		SetID: func(c domain.ContactSubmission, id string) domain.ContactSubmission {
			c.ID = id
			return c
		},
		Key:    domain.ContactSubmission.Key,
		Group:  func(c domain.ContactSubmission) string { return c.FormSource },
		When:   func(c domain.ContactSubmission) time.Time { return c.SubmittedAt },
		Origin: func(c domain.ContactSubmission) domain.StoreTag { return c.Origin },
		Matches: func(c domain.ContactSubmission, f domain.Filter) bool {
			return f.MatchesScope(c.FormSource) &&
				(!f.HasRange() || f.InRange(c.SubmittedAt)) &&
				f.MatchesSearch(c.Email, c.Name, c.Message)
		},
		Columns: []string{"id", "email", "name", "message", "form_source", "submitted_at"},
		Row: func(c domain.ContactSubmission) []string {
			return []string{
				c.ID, c.Email, c.Name, c.Message, c.FormSource,
				c.SubmittedAt.UTC().Format(time.RFC3339),
			}
		},
	}
}

// SignupType describes newsletter email signups.
func SignupType() Type[domain.EmailSignup] {
	return Type[domain.EmailSignup]{
		Name: "signups",
		ID:   func(s domain.EmailSignup) string { return s.ID },
		SetID: func(s domain.EmailSignup, id string) domain.EmailSignup {
			s.ID = id
			return s
		},
		Key:    domain.EmailSignup.Key,
		Group:  func(s domain.EmailSignup) string { return s.Source },
		When:   func(s domain.EmailSignup) time.Time { return s.SignedUpAt },
		Origin: func(s domain.EmailSignup) domain.StoreTag { return s.Origin },
		Matches: func(s domain.EmailSignup, f domain.Filter) bool {
			return f.MatchesScope(s.Source) &&
				(!f.HasRange() || f.InRange(s.SignedUpAt)) &&
				f.MatchesSearch(s.Email)
		},
		Columns: []string{"id", "email", "source", "signed_up_at"},
		Row: func(s domain.EmailSignup) []string {
			return []string{
				s.ID, s.Email, s.Source,
				s.SignedUpAt.UTC().Format(time.RFC3339),
			}
		},
	}
}
