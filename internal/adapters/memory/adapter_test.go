package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fedstore/pkg/domain"
)

func TestAdapter_CreateListRoundTrip(t *testing.T) {
	a := New(domain.TagMemory, RegistrationHooks())
	ctx := context.Background()

	id, err := a.Create(ctx, domain.Registration{Email: "a@x.com", Event: "launch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated native id")
	}
	recs, err := a.List(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != id || recs[0].Origin != domain.TagMemory {
		t.Fatalf("unexpected listing: %+v", recs)
	}
}

func TestAdapter_UpdateAppliesFields(t *testing.T) {
	a := New(domain.TagMemory, RegistrationHooks())
	ctx := context.Background()
	a.Seed("r1", domain.Registration{Email: "a@x.com", Event: "launch"})

	checkIn := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	err := a.Update(ctx, "r1", domain.Fields{
		domain.FieldCompany:     "Acme",
		domain.FieldTags:        []string{"vip"},
		domain.FieldCheckedInAt: checkIn,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, err := a.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Company != "Acme" || len(rec.Tags) != 1 || rec.CheckedInAt == nil || !rec.CheckedInAt.Equal(checkIn) {
		t.Fatalf("fields not applied: %+v", rec)
	}
}

func TestAdapter_MissingRecordErrors(t *testing.T) {
	a := New(domain.TagMemory, ContactHooks())
	ctx := context.Background()

	var notFound domain.ErrNotFound
	if _, err := a.Get(ctx, "nope"); !errors.As(err, &notFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if err := a.Update(ctx, "nope", domain.Fields{domain.FieldName: "x"}); !errors.As(err, &notFound) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := a.Delete(ctx, "nope"); !errors.As(err, &notFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestAdapter_DeleteRemoves(t *testing.T) {
	a := New(domain.TagMemory, SignupHooks())
	ctx := context.Background()
	a.Seed("s1", domain.EmailSignup{Email: "a@x.com", Source: "footer"})
	if err := a.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if a.Len() != 0 {
		t.Fatalf("record survived delete")
	}
}

func TestAdapter_CancelledContext(t *testing.T) {
	a := New(domain.TagMemory, RegistrationHooks())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.List(ctx, domain.Filter{}); err == nil {
		t.Fatalf("expected context error")
	}
}
