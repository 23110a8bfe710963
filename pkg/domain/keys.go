package domain

import "strings"

// NormalizeEmail lowercases and trims an address so the same person registered
// through two paths derives the same business key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BusinessKey derives the cross-store identity for a record: normalized email
// plus a type-specific scope (event name, form source, signup source).
// An empty or missing email yields an empty key; empty keys are never equal to
// each other, so anonymous entries do not collapse during dedup.
func BusinessKey(email, scope string) string {
	e := NormalizeEmail(email)
	if e == "" {
		return ""
	}
	return e + "|" + strings.ToLower(strings.TrimSpace(scope))
}

// Key returns the registration's business key (email scoped by event).
func (r Registration) Key() string { return BusinessKey(r.Email, r.Event) }

// Key returns the submission's business key (email scoped by form source).
func (c ContactSubmission) Key() string { return BusinessKey(c.Email, c.FormSource) }

// Key returns the signup's business key (email scoped by signup source).
func (s EmailSignup) Key() string { return BusinessKey(s.Email, s.Source) }
