package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/nearby/internal/app/system/validators"
	"github.com/dalemusser/nearby/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	got := make(map[string]bool)
	for _, n := range names {
		got[n] = true
	}
	for _, want := range []string{"events", "memberships", "messages"} {
		if !got[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestEventsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection("events")

	_, err := coll.InsertOne(ctx, bson.M{
		"host_name": "Al", "activity": "Run", "lat": 10.0, "lng": 20.0, "attendees": 0,
	})
	if err != nil {
		t.Errorf("valid event rejected: %v", err)
	}

	cases := map[string]bson.M{
		"missing host":       {"activity": "Run", "lat": 10.0, "lng": 20.0, "attendees": 0},
		"blank activity":     {"host_name": "Al", "activity": "  ", "lat": 10.0, "lng": 20.0, "attendees": 0},
		"latitude too large": {"host_name": "Al", "activity": "Run", "lat": 91.0, "lng": 20.0, "attendees": 0},
		"negative attendees": {"host_name": "Al", "activity": "Run", "lat": 10.0, "lng": 20.0, "attendees": -1},
	}
	for name, doc := range cases {
		if _, err := coll.InsertOne(ctx, doc); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestMessagesValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection("messages")

	_, err := coll.InsertOne(ctx, bson.M{
		"event_id": primitive.NewObjectID(), "user": "Bo", "text": "hi", "created_at": time.Now(),
	})
	if err != nil {
		t.Errorf("valid message rejected: %v", err)
	}

	// event_id stored as a string is rejected.
	_, err = coll.InsertOne(ctx, bson.M{
		"event_id": "abc", "user": "Bo", "text": "hi", "created_at": time.Now(),
	})
	if err == nil {
		t.Error("expected validation error for string event_id")
	}
}
