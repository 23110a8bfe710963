package postgres

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fedstore/pkg/domain"
)

func TestDecodeRegistration_NormalizesTimestamps(t *testing.T) {
	raw := []byte(`{
		"email": "a@x.com",
		"name": "Ada",
		"company": "Acme",
		"eventName": "launch",
		"source": "site",
		"tags": ["vip"],
		"registeredAt": "2026-03-01T05:00:00-05:00",
		"checkedInAt": "2026-03-01T18:00:00Z"
	}`)
	rec, err := decodeRegistration(domain.TagPrimary, "p1", raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !rec.RegisteredAt.Equal(want) || rec.RegisteredAt.Location() != time.UTC {
		t.Fatalf("offset timestamp not normalized to UTC: %v", rec.RegisteredAt)
	}
	if rec.CheckedInAt == nil || rec.CheckedInAt.Hour() != 18 {
		t.Fatalf("check-in lost: %v", rec.CheckedInAt)
	}
	if rec.Origin != domain.TagPrimary || rec.Event != "launch" {
		t.Fatalf("mapping incomplete: %+v", rec)
	}
}

func TestDecodeRegistration_MissingTimestampIsMappingError(t *testing.T) {
	raw := []byte(`{"email": "a@x.com", "eventName": "launch"}`)
	_, err := decodeRegistration(domain.TagPrimary, "p1", raw)
	var mapping domain.ErrMapping
	if !errors.As(err, &mapping) || mapping.NativeID != "p1" {
		t.Fatalf("expected mapping error, got %v", err)
	}
}

func TestRegistration_EncodeDecodeRoundTrip(t *testing.T) {
	checkIn := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	in := domain.Registration{
		Email: "a@x.com", Name: "Ada", Company: "Acme", Event: "launch",
		Source: "site", Tags: []string{"vip"},
		RegisteredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		CheckedInAt:  &checkIn,
	}
	raw, err := encodeRegistration(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeRegistration(domain.TagPrimary, "p1", raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Email != in.Email || out.Event != in.Event || !out.RegisteredAt.Equal(in.RegisteredAt) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.CheckedInAt == nil || !out.CheckedInAt.Equal(checkIn) {
		t.Fatalf("check-in round trip mismatch: %v", out.CheckedInAt)
	}
}

func TestPatchRegistration_TranslatesFieldNames(t *testing.T) {
	checkIn := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	native, err := patchRegistration(domain.Fields{
		domain.FieldCompany:     "Acme",
		domain.FieldCheckedInAt: checkIn,
		"unknown_field":         "ignored",
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if native["company"] != "Acme" {
		t.Fatalf("company not translated: %v", native)
	}
	if native["checkedInAt"] != "2026-03-01T18:00:00Z" {
		t.Fatalf("check-in not rendered natively: %v", native)
	}
	if _, ok := native["unknown_field"]; ok {
		t.Fatalf("unknown canonical field leaked into native patch")
	}
}

func TestDecodeContact_RequiredTimestamp(t *testing.T) {
	rec, err := decodeContact(domain.TagPrimary, "c1", []byte(`{
		"email": "b@y.com", "name": "Ben", "message": "hi",
		"formSource": "footer", "submittedAt": "2026-03-02T09:30:00Z"
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.FormSource != "footer" || rec.SubmittedAt.IsZero() {
		t.Fatalf("mapping incomplete: %+v", rec)
	}

	_, err = decodeContact(domain.TagPrimary, "c2", []byte(`{"email": "b@y.com"}`))
	var mapping domain.ErrMapping
	if !errors.As(err, &mapping) {
		t.Fatalf("expected mapping error, got %v", err)
	}
}

func TestDecodeSignup_EmptyEmailIsStillValid(t *testing.T) {
	// Empty emails survive mapping; the merge layer treats their business
	// keys as never-equal instead of rejecting the record.
	rec, err := decodeSignup(domain.TagPrimary, "s1", []byte(`{
		"source": "footer", "signedUpAt": "2026-03-02T09:30:00Z"
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Email != "" || rec.Key() != "" {
		t.Fatalf("expected empty email and empty business key: %+v", rec)
	}
}

func TestDecodeRegistration_MalformedJSON(t *testing.T) {
	_, err := decodeRegistration(domain.TagPrimary, "p1", []byte(`{not json`))
	var mapping domain.ErrMapping
	if !errors.As(err, &mapping) || !strings.Contains(mapping.Reason, "malformed") {
		t.Fatalf("expected malformed-document mapping error, got %v", err)
	}
}
