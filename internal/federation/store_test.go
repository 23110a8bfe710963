package federation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fedstore/internal/adapters/memory"
	"fedstore/pkg/domain"
)

// failingAdapter simulates an unreachable backing store.
type failingAdapter[T any] struct {
	tag domain.StoreTag
}

func (f failingAdapter[T]) Tag() domain.StoreTag { return f.tag }
func (f failingAdapter[T]) List(context.Context, domain.Filter) ([]T, error) {
	return nil, errors.New("connection refused")
}
func (f failingAdapter[T]) Get(context.Context, string) (T, error) {
	var zero T
	return zero, errors.New("connection refused")
}
func (f failingAdapter[T]) Create(context.Context, T) (string, error) {
	return "", errors.New("connection refused")
}
func (f failingAdapter[T]) Update(context.Context, string, domain.Fields) error {
	return errors.New("connection refused")
}
func (f failingAdapter[T]) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

// recordingAdapter counts mutations so cross-store leakage is observable.
type recordingAdapter[T any] struct {
	Adapter[T]
	mutations []string
}

func (r *recordingAdapter[T]) Update(ctx context.Context, id string, fields domain.Fields) error {
	r.mutations = append(r.mutations, "update:"+id)
	return r.Adapter.Update(ctx, id, fields)
}

func (r *recordingAdapter[T]) Delete(ctx context.Context, id string) error {
	r.mutations = append(r.mutations, "delete:"+id)
	return r.Adapter.Delete(ctx, id)
}

func when(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newRegistrationStores(t *testing.T) (*Store[domain.Registration], *memory.Adapter[domain.Registration], *memory.Adapter[domain.Registration]) {
	t.Helper()
	primary := memory.New(domain.TagPrimary, memory.RegistrationHooks())
	events := memory.New(domain.TagEvents, memory.RegistrationHooks())
	store, err := New(RegistrationType(), []Adapter[domain.Registration]{primary, events})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, primary, events
}

func TestList_PrimaryCopyWinsAcrossStores(t *testing.T) {
	store, primary, events := newRegistrationStores(t)
	primary.Seed("p1", domain.Registration{
		Email: "a@x.com", Name: "Ada", Company: "Acme",
		Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z"),
	})
	events.Seed("e1", domain.Registration{
		Email: "A@X.com", Name: "Ada", Company: "",
		Event: "Launch", RegisteredAt: when("2026-03-01T09:59:00Z"),
	})

	recs, err := store.List(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 merged record, got %d", len(recs))
	}
	if recs[0].Company != "Acme" || recs[0].Origin != domain.TagPrimary {
		t.Fatalf("primary copy must win: %+v", recs[0])
	}
	if recs[0].ID != "p1" {
		t.Fatalf("primary id must encode bare: %q", recs[0].ID)
	}
}

func TestList_PartialFailureReturnsUnionOfHealthyStores(t *testing.T) {
	primary := memory.New(domain.TagPrimary, memory.RegistrationHooks())
	events := memory.New(domain.TagEvents, memory.RegistrationHooks())
	primary.Seed("p1", domain.Registration{Email: "p@x.com", Event: "launch", RegisteredAt: when("2026-03-02T10:00:00Z")})
	events.Seed("e1", domain.Registration{Email: "e@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})

	store, err := New(RegistrationType(), []Adapter[domain.Registration]{
		primary, events, failingAdapter[domain.Registration]{tag: domain.TagForms},
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	recs, err := store.List(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("partial failure must not error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected union of healthy stores, got %d records", len(recs))
	}
}

func TestList_TotalFailureErrors(t *testing.T) {
	store, err := New(RegistrationType(), []Adapter[domain.Registration]{
		failingAdapter[domain.Registration]{tag: domain.TagPrimary},
		failingAdapter[domain.Registration]{tag: domain.TagEvents},
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.List(context.Background(), domain.Filter{}); err == nil {
		t.Fatalf("expected error when every store fails")
	}
}

func TestList_ClientSideDateFilterAppliesToAllStores(t *testing.T) {
	// The memory adapter pushes nothing down, so the range must be enforced
	// by the facade's post-merge pass.
	store, primary, events := newRegistrationStores(t)
	primary.Seed("p1", domain.Registration{Email: "old@x.com", Event: "launch", RegisteredAt: when("2026-01-01T00:00:00Z")})
	events.Seed("e1", domain.Registration{Email: "new@x.com", Event: "launch", RegisteredAt: when("2026-03-05T00:00:00Z")})

	recs, err := store.List(context.Background(), domain.Filter{From: when("2026-03-01T00:00:00Z")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].Email != "new@x.com" {
		t.Fatalf("date range not applied client-side: %+v", recs)
	}
}

func TestList_SortDescendingAndLimit(t *testing.T) {
	store, primary, _ := newRegistrationStores(t)
	primary.Seed("p1", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})
	primary.Seed("p2", domain.Registration{Email: "b@x.com", Event: "launch", RegisteredAt: when("2026-03-03T10:00:00Z")})
	primary.Seed("p3", domain.Registration{Email: "c@x.com", Event: "launch", RegisteredAt: when("2026-03-02T10:00:00Z")})

	recs, err := store.List(context.Background(), domain.Filter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[0].Email != "b@x.com" || recs[1].Email != "c@x.com" {
		t.Fatalf("expected newest-first limited result: %+v", recs)
	}
}

func TestUpdate_NeverTouchesOtherStores(t *testing.T) {
	primary := &recordingAdapter[domain.Registration]{Adapter: memory.New(domain.TagPrimary, memory.RegistrationHooks())}
	eventsMem := memory.New(domain.TagEvents, memory.RegistrationHooks())
	events := &recordingAdapter[domain.Registration]{Adapter: eventsMem}
	eventsMem.Seed("doc123", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})

	store, err := New(RegistrationType(), []Adapter[domain.Registration]{primary, events})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Update(context.Background(), "events:doc123", domain.Fields{domain.FieldCompany: "Acme"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(primary.mutations) != 0 {
		t.Fatalf("primary store touched by events-scoped mutation: %v", primary.mutations)
	}
	if len(events.mutations) != 1 || events.mutations[0] != "update:doc123" {
		t.Fatalf("expected single native update on events store: %v", events.mutations)
	}
}

func TestDelete_RoutesToOriginStoreOnly(t *testing.T) {
	primaryMem := memory.New(domain.TagPrimary, memory.RegistrationHooks())
	primary := &recordingAdapter[domain.Registration]{Adapter: primaryMem}
	eventsMem := memory.New(domain.TagEvents, memory.RegistrationHooks())
	events := &recordingAdapter[domain.Registration]{Adapter: eventsMem}
	eventsMem.Seed("doc123", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})

	store, err := New(RegistrationType(), []Adapter[domain.Registration]{primary, events})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Delete(context.Background(), "events:doc123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(primary.mutations) != 0 {
		t.Fatalf("primary store touched: %v", primary.mutations)
	}
	if eventsMem.Len() != 0 {
		t.Fatalf("native document not deleted")
	}
}

func TestMutation_UnknownTagIsFatal(t *testing.T) {
	store, _, _ := newRegistrationStores(t)
	err := store.Update(context.Background(), "mailer:77", domain.Fields{domain.FieldName: "x"})
	var unknown domain.ErrUnknownTag
	if !errors.As(err, &unknown) {
		t.Fatalf("expected unknown tag error, got %v", err)
	}
}

func TestMutation_FailureIsSurfaced(t *testing.T) {
	store, err := New(RegistrationType(), []Adapter[domain.Registration]{
		failingAdapter[domain.Registration]{tag: domain.TagPrimary},
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Delete(context.Background(), "p1"); err == nil {
		t.Fatalf("write-path failure must never degrade")
	}
	if _, err := store.Create(context.Background(), domain.Registration{Email: "a@x.com"}); err == nil {
		t.Fatalf("create failure must surface")
	}
}

func TestCreate_TargetsPrimaryAndReturnsBareID(t *testing.T) {
	store, primary, events := newRegistrationStores(t)
	id, err := store.Create(context.Background(), domain.Registration{
		Email: "new@x.com", Event: "launch", RegisteredAt: when("2026-03-04T10:00:00Z"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if strings.Contains(id, ":") {
		t.Fatalf("primary create must return a bare id: %q", id)
	}
	if primary.Len() != 1 || events.Len() != 0 {
		t.Fatalf("create must target primary only: primary=%d events=%d", primary.Len(), events.Len())
	}
}

func TestGet_RoutedAndCompositeID(t *testing.T) {
	store, _, events := newRegistrationStores(t)
	events.Seed("doc9", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})

	rec, err := store.Get(context.Background(), "events:doc9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != "events:doc9" || rec.Origin != domain.TagEvents {
		t.Fatalf("composite id lost on get: %+v", rec)
	}

	_, err = store.Get(context.Background(), "missing")
	var notFound domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCounts_GroupsByEvent(t *testing.T) {
	store, primary, events := newRegistrationStores(t)
	primary.Seed("p1", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})
	primary.Seed("p2", domain.Registration{Email: "b@x.com", Event: "launch", RegisteredAt: when("2026-03-01T11:00:00Z")})
	events.Seed("e1", domain.Registration{Email: "c@x.com", Event: "meetup", RegisteredAt: when("2026-03-01T12:00:00Z")})
	// Duplicate of p1 in the events store must not inflate counts.
	events.Seed("e2", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})

	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["launch"] != 2 || counts["meetup"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestList_CheckInRoundTrip(t *testing.T) {
	store, primary, _ := newRegistrationStores(t)
	primary.Seed("p1", domain.Registration{Email: "a@x.com", Event: "launch", RegisteredAt: when("2026-03-01T10:00:00Z")})

	checkIn := when("2026-03-01T18:30:00Z")
	if err := store.Update(context.Background(), "p1", domain.Fields{domain.FieldCheckedInAt: checkIn}); err != nil {
		t.Fatalf("check-in update: %v", err)
	}
	rec, err := store.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.CheckedInAt == nil || !rec.CheckedInAt.Equal(checkIn) {
		t.Fatalf("check-in time lost: %+v", rec.CheckedInAt)
	}
}
