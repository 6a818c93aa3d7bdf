package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	"github.com/dalemusser/nearby/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data directly in a
// store, bypassing the domain stores' validation.
type Fixtures struct {
	ds docstore.Store
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, ds docstore.Store) *Fixtures {
	t.Helper()
	return &Fixtures{ds: ds, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() docstore.Store {
	return f.ds
}

// CreateEvent inserts an event at (lat, lng) with zero attendees.
func (f *Fixtures) CreateEvent(ctx context.Context, host, activity string, lat, lng float64) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		HostName:  host,
		Activity:  activity,
		Lat:       lat,
		Lng:       lng,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "events", ev)
	return ev
}

// CreateMembership records user as a member of eventID.
func (f *Fixtures) CreateMembership(ctx context.Context, eventID primitive.ObjectID, user string) models.Membership {
	f.t.Helper()

	m := models.Membership{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "memberships", m)
	return m
}

// CreateMessage inserts a message with an explicit timestamp.
func (f *Fixtures) CreateMessage(ctx context.Context, eventID primitive.ObjectID, user, text string, at time.Time) models.Message {
	f.t.Helper()

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		User:      user,
		Text:      text,
		CreatedAt: at.UTC(),
	}
	f.insert(ctx, "messages", msg)
	return msg
}

// Event reloads an event by id.
func (f *Fixtures) Event(ctx context.Context, id primitive.ObjectID) models.Event {
	f.t.Helper()

	doc, err := f.ds.FindOne(ctx, "events", bson.M{"_id": id})
	if err != nil {
		f.t.Fatalf("failed to load event %s: %v", id.Hex(), err)
	}
	var ev models.Event
	if err := docstore.Decode(doc, &ev); err != nil {
		f.t.Fatalf("failed to decode event: %v", err)
	}
	return ev
}

// CountMemberships returns how many membership records exist for the pair.
func (f *Fixtures) CountMemberships(ctx context.Context, eventID primitive.ObjectID, user string) int {
	f.t.Helper()

	docs, err := f.ds.FindMany(ctx, "memberships", bson.M{"event_id": eventID, "user": user}, docstore.FindOptions{})
	if err != nil {
		f.t.Fatalf("failed to count memberships: %v", err)
	}
	return len(docs)
}

func (f *Fixtures) insert(ctx context.Context, collection string, v any) {
	f.t.Helper()

	doc, err := docstore.Encode(v)
	if err != nil {
		f.t.Fatalf("failed to encode %s fixture: %v", collection, err)
	}
	if _, err := f.ds.Insert(ctx, collection, doc); err != nil {
		f.t.Fatalf("failed to create test %s document: %v", collection, err)
	}
}
