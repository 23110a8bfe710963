package redis

import (
	"errors"
	"testing"
	"time"

	"fedstore/pkg/domain"
)

func TestMapSignup(t *testing.T) {
	rec, err := mapSignup(domain.TagMailer, "s1", map[string]string{
		"email":  "List@Example.com",
		"source": "newsletter",
		"ts":     "1711972800",
	})
	if err != nil {
		t.Fatalf("mapSignup: %v", err)
	}
	want := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	if !rec.SignedUpAt.Equal(want) {
		t.Fatalf("unexpected signedUpAt: got %v want %v", rec.SignedUpAt, want)
	}
	if rec.SignedUpAt.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", rec.SignedUpAt.Location())
	}
	if rec.ID != "s1" || rec.Email != "List@Example.com" || rec.Source != "newsletter" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Origin != domain.TagMailer {
		t.Fatalf("unexpected origin: %v", rec.Origin)
	}
}

func TestMapSignupMissingTimestamp(t *testing.T) {
	_, err := mapSignup(domain.TagMailer, "s2", map[string]string{"email": "a@b.c"})
	var mapErr domain.ErrMapping
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected mapping error, got %v", err)
	}
	if mapErr.NativeID != "s2" {
		t.Fatalf("unexpected native id: %q", mapErr.NativeID)
	}
}

func TestMapSignupBadTimestamp(t *testing.T) {
	_, err := mapSignup(domain.TagMailer, "s3", map[string]string{"ts": "not-a-number"})
	var mapErr domain.ErrMapping
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected mapping error, got %v", err)
	}
}
