// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	"github.com/dalemusser/nearby/internal/app/system/geo"
	"github.com/dalemusser/nearby/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection is the name of the events collection.
const Collection = "events"

// MaxListResults caps every List call, filtered or not.
const MaxListResults = 200

var (
	ErrInvalidEventID = errors.New("invalid event id")
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidEvent   = errors.New("invalid event")
	ErrInvalidQuery   = errors.New("invalid event query")
)

type Store struct {
	ds  docstore.Store
	now func() time.Time
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds, now: time.Now}
}

// ParseID converts a hex event id, failing with ErrInvalidEventID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidEventID, id)
	}
	return oid, nil
}

// Create validates ev and inserts it, returning the new id. Any ID or
// timestamps on ev are replaced.
func (s *Store) Create(ctx context.Context, ev models.Event) (primitive.ObjectID, error) {
	ev.HostName = strings.TrimSpace(ev.HostName)
	ev.Activity = strings.TrimSpace(ev.Activity)
	if err := validate(ev); err != nil {
		return primitive.NilObjectID, err
	}

	now := s.now().UTC()
	ev.ID = primitive.NilObjectID
	ev.CreatedAt = now
	ev.UpdatedAt = now

	doc, err := docstore.Encode(ev)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return s.ds.Insert(ctx, Collection, doc)
}

func validate(ev models.Event) error {
	switch {
	case ev.HostName == "":
		return fmt.Errorf("%w: host_name is required", ErrInvalidEvent)
	case ev.Activity == "":
		return fmt.Errorf("%w: activity is required", ErrInvalidEvent)
	case !geo.ValidLat(ev.Lat):
		return fmt.Errorf("%w: lat %v outside [-90, 90]", ErrInvalidEvent, ev.Lat)
	case !geo.ValidLng(ev.Lng):
		return fmt.Errorf("%w: lng %v outside [-180, 180]", ErrInvalidEvent, ev.Lng)
	case ev.Attendees < 0:
		return fmt.Errorf("%w: attendees must be >= 0", ErrInvalidEvent)
	}
	return nil
}

// ListQuery narrows List to a bounding box when both Lat and Lng are set.
// A zero RadiusKm means geo.DefaultRadiusKm.
type ListQuery struct {
	Lat      *float64
	Lng      *float64
	RadiusKm float64
}

// List returns at most MaxListResults events, in no particular order.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.Event, error) {
	filter := bson.M{}
	if q.Lat != nil && q.Lng != nil {
		radius := q.RadiusKm
		if radius == 0 {
			radius = geo.DefaultRadiusKm
		}
		if radius < 0 {
			return nil, fmt.Errorf("%w: radius_km must be positive", ErrInvalidQuery)
		}
		box := geo.BoxAround(*q.Lat, *q.Lng, radius)
		filter = bson.M{
			"lat": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
			"lng": bson.M{"$gte": box.MinLng, "$lte": box.MaxLng},
		}
	}

	docs, err := s.ds.FindMany(ctx, Collection, filter, docstore.FindOptions{Limit: MaxListResults})
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[models.Event](docs)
}

// Exists parses id and reports whether the event is stored.
func (s *Store) Exists(ctx context.Context, id string) (primitive.ObjectID, bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	_, err = s.ds.FindOne(ctx, Collection, bson.M{"_id": oid})
	if errors.Is(err, docstore.ErrNotFound) {
		return oid, false, nil
	}
	if err != nil {
		return oid, false, err
	}
	return oid, true, nil
}

// IncrementAttendees atomically adds one to the attendee counter. The caller
// has already established that the event exists.
func (s *Store) IncrementAttendees(ctx context.Context, id primitive.ObjectID) error {
	err := s.ds.Increment(ctx, Collection, bson.M{"_id": id}, "attendees", 1)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id.Hex())
	}
	return err
}
