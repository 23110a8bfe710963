package mongo

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"fedstore/pkg/domain"
)

func TestTimestampPairRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 9, 17, 30, 12, 500_000_000, time.UTC)
	pair := pairFrom(at)
	if pair.Seconds != at.Unix() || pair.Nanos != 500_000_000 {
		t.Fatalf("unexpected pair %+v", pair)
	}
	got := pair.time()
	if !got.Equal(at) {
		t.Fatalf("round trip changed instant: got %v want %v", got, at)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
}

func TestMapRegistrationMissingCreatedAt(t *testing.T) {
	_, err := mapRegistration(domain.TagEvents, registrationDoc{
		ID:            "abc",
		AttendeeEmail: "x@example.com",
	})
	var mapErr domain.ErrMapping
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected mapping error, got %v", err)
	}
	if mapErr.Store != domain.TagEvents || mapErr.NativeID != "abc" {
		t.Fatalf("unexpected mapping error details: %+v", mapErr)
	}
}

func TestMapMessage(t *testing.T) {
	sent := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	rec, err := mapMessage(domain.TagEvents, messageDoc{
		ID:        "m1",
		FromEmail: "Visitor@Example.com",
		FromName:  "Visitor",
		Body:      "hello",
		FormID:    "landing",
		SentAt:    pairFrom(sent),
	})
	if err != nil {
		t.Fatalf("mapMessage: %v", err)
	}
	if rec.ID != "m1" || rec.Email != "Visitor@Example.com" || rec.FormSource != "landing" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.SubmittedAt.Equal(sent) {
		t.Fatalf("unexpected submittedAt: %v", rec.SubmittedAt)
	}
	if rec.Origin != domain.TagEvents {
		t.Fatalf("unexpected origin: %v", rec.Origin)
	}
}

func TestMapMessageMissingSentAt(t *testing.T) {
	_, err := mapMessage(domain.TagEvents, messageDoc{ID: "m2", FromEmail: "a@b.c"})
	var mapErr domain.ErrMapping
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected mapping error, got %v", err)
	}
}

func TestScopeQueryMatchesCaseInsensitively(t *testing.T) {
	query := scopeQuery("event", "launch")
	rx, ok := query["event"].(bson.Regex)
	if !ok {
		t.Fatalf("expected regex predicate, got %T", query["event"])
	}
	if rx.Options != "i" {
		t.Fatalf("expected case-insensitive options, got %q", rx.Options)
	}
	// The server evaluates the pattern; Go's engine shares the syntax used
	// here, so compile it locally to pin the matching behavior.
	re, err := regexp.Compile("(?" + rx.Options + ")" + rx.Pattern)
	if err != nil {
		t.Fatalf("compile pattern: %v", err)
	}
	for _, scope := range []string{"launch", "Launch", "LAUNCH"} {
		if !re.MatchString(scope) {
			t.Fatalf("pattern %q should match %q", rx.Pattern, scope)
		}
	}
	for _, scope := range []string{"relaunch", "launch-day", ""} {
		if re.MatchString(scope) {
			t.Fatalf("pattern %q should not match %q", rx.Pattern, scope)
		}
	}
}

func TestScopeQueryEscapesMetacharacters(t *testing.T) {
	query := scopeQuery("formId", "promo (2024)")
	rx := query["formId"].(bson.Regex)
	re, err := regexp.Compile("(?" + rx.Options + ")" + rx.Pattern)
	if err != nil {
		t.Fatalf("compile pattern: %v", err)
	}
	if !re.MatchString("Promo (2024)") {
		t.Fatal("literal scope with parentheses should match case-insensitively")
	}
	if re.MatchString("promo 2024") {
		t.Fatal("parentheses must match literally, not as groups")
	}
}

func TestIDStringForms(t *testing.T) {
	oid := bson.NewObjectID()
	if got := idString(oid); got != oid.Hex() {
		t.Fatalf("object id: got %q want %q", got, oid.Hex())
	}
	if got := idString("plain"); got != "plain" {
		t.Fatalf("string id: got %q", got)
	}
	if got := idString(42); got != "42" {
		t.Fatalf("fallback id: got %q", got)
	}
}

func TestIDFilterPrefersObjectID(t *testing.T) {
	oid := bson.NewObjectID()
	filter := idFilter(oid.Hex())
	if got, ok := filter["_id"].(bson.ObjectID); !ok || got != oid {
		t.Fatalf("expected object id filter, got %v", filter["_id"])
	}
	filter = idFilter("not-hex")
	if got, ok := filter["_id"].(string); !ok || got != "not-hex" {
		t.Fatalf("expected string filter, got %v", filter["_id"])
	}
}
