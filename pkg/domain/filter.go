package domain

import (
	"strings"
	"time"
)

// Filter narrows a federated read. Adapters push down whatever dimensions
// their native query language supports; the facade re-applies the rest after
// merge, so a dimension a store cannot express is still honored.
type Filter struct {
	// Scope restricts to one event name, form source, or signup source.
	Scope string
	// From and To bound the record's primary timestamp. Zero values are
	// unbounded on that side.
	From time.Time
	To   time.Time
	// Search is a case-insensitive substring match over the record's
	// descriptive fields. Never pushed down.
	Search string
	// Limit caps the merged result. Zero means no limit.
	Limit int
}

// HasRange reports whether either date bound is set.
func (f Filter) HasRange() bool { return !f.From.IsZero() || !f.To.IsZero() }

// InRange reports whether t falls inside the filter's date bounds.
func (f Filter) InRange(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

// MatchesScope reports whether scope satisfies the filter's scope constraint.
func (f Filter) MatchesScope(scope string) bool {
	return f.Scope == "" || strings.EqualFold(f.Scope, scope)
}

// MatchesSearch reports whether any of the given fields contains the search
// term, case-insensitively. An empty search matches everything.
func (f Filter) MatchesSearch(fields ...string) bool {
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
