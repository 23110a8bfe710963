// Package identity encodes and decodes the composite identifiers that bind a
// record to its owning backing store.
//
// A composite id is either a bare native id (primary store) or
// "<tag>:<nativeID>" for a secondary store. Tags come from the fixed reserved
// vocabulary in the domain package, so pre-existing primary ids that happen to
// contain a colon are never misrouted.
package identity

import (
	"strings"

	"fedstore/pkg/domain"
)

// Router maps between composite identifiers and (store tag, native id) pairs
// for one record type's configured adapter set.
type Router struct {
	primary    domain.StoreTag
	configured map[domain.StoreTag]bool
}

// NewRouter builds a router for the given configured tags. The first tag is
// the primary store, whose native ids encode bare.
func NewRouter(primary domain.StoreTag, secondaries ...domain.StoreTag) *Router {
	configured := map[domain.StoreTag]bool{primary: true}
	for _, tag := range secondaries {
		configured[tag] = true
	}
	return &Router{primary: primary, configured: configured}
}

// Primary returns the tag whose native ids encode bare.
func (r *Router) Primary() domain.StoreTag { return r.primary }

// Encode returns the composite identifier for a native id owned by tag.
// Primary ids pass through unchanged to keep the common case stable and
// readable.
func (r *Router) Encode(tag domain.StoreTag, nativeID string) string {
	if tag == r.primary {
		return nativeID
	}
	return string(tag) + ":" + nativeID
}

// Decode splits a composite identifier into its owning tag and native id.
//
// A string with no colon, or whose prefix before the first colon is outside
// the reserved tag vocabulary, is a primary-store native id. A reserved prefix
// that matches no configured adapter fails with domain.ErrUnknownTag rather
// than silently falling back to the primary store.
func (r *Router) Decode(id string) (domain.StoreTag, string, error) {
	idx := strings.Index(id, ":")
	if idx < 0 {
		return r.primary, id, nil
	}
	prefix := id[:idx]
	if !domain.ReservedTag(prefix) {
		return r.primary, id, nil
	}
	tag := domain.StoreTag(prefix)
	if !r.configured[tag] {
		return "", "", domain.ErrUnknownTag{Tag: prefix}
	}
	return tag, id[idx+1:], nil
}
