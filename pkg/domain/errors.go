package domain

import "fmt"

// ErrUnavailable is returned when a backing store could not be reached or
// timed out. List calls recover it as an empty contribution; mutations always
// surface it, since a failed write must never be reported as success.
type ErrUnavailable struct {
	Store StoreTag
	Err   error
}

func (e ErrUnavailable) Error() string {
	return fmt.Sprintf("store %s unavailable: %v", e.Store, e.Err)
}

func (e ErrUnavailable) Unwrap() error { return e.Err }

// ErrUnknownTag is returned when a composite id carries a recognized-looking
// tag prefix that matches no configured adapter. Always fatal to the call.
type ErrUnknownTag struct {
	Tag string
}

func (e ErrUnknownTag) Error() string {
	return fmt.Sprintf("no adapter configured for store tag %q", e.Tag)
}

// ErrNotFound is returned when the resolved adapter holds no native document
// for the given native id. Distinct from ErrUnavailable so callers can tell
// "nothing to update" from "couldn't check".
type ErrNotFound struct {
	Store    StoreTag
	NativeID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("store %s has no record %s", e.Store, e.NativeID)
}

// ErrMapping is returned by an adapter mapper when a native document is
// missing a field the canonical shape requires. Such records are dropped from
// list results with a logged warning rather than aborting the merge.
type ErrMapping struct {
	Store    StoreTag
	NativeID string
	Reason   string
}

func (e ErrMapping) Error() string {
	return fmt.Sprintf("store %s record %s: %s", e.Store, e.NativeID, e.Reason)
}
