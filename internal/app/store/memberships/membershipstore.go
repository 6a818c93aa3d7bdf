// internal/app/store/memberships/membershipstore.go
package membershipstore

// Terminology: Users
//   - user: the free-form display name a client sends. It is not an account
//     and is never verified; two clients sending "Bo" are the same member.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Collection is the name of the memberships collection.
const Collection = "memberships"

var ErrInvalidUser = errors.New("user is required")

type Store struct {
	ds     docstore.Store
	events *eventstore.Store
	log    *zap.Logger
	now    func() time.Time
}

func New(ds docstore.Store, events *eventstore.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		ds:     ds,
		events: events,
		log:    logger,
		now:    time.Now,
	}
}

// JoinResult describes what a successful Join changed.
type JoinResult struct {
	EventID primitive.ObjectID
	Created bool // false when the membership already existed
}

// Join adds user to the event.
//
// The membership upsert is idempotent, but the attendee counter is bumped on
// every call, so joining twice leaves one membership and two increments.
// The two writes are not a transaction: if the increment fails the
// membership stays and the counter is one short. That case is logged and
// returned, not repaired here.
func (s *Store) Join(ctx context.Context, eventID, user string) (JoinResult, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return JoinResult{}, ErrInvalidUser
	}

	oid, ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return JoinResult{}, err
	}
	if !ok {
		return JoinResult{}, fmt.Errorf("%w: %s", eventstore.ErrEventNotFound, oid.Hex())
	}

	key := bson.M{"event_id": oid, "user": user}
	created, err := s.ds.Upsert(ctx, Collection, key, key, bson.M{"created_at": s.now().UTC()})
	if err != nil {
		return JoinResult{}, err
	}

	if err := s.events.IncrementAttendees(ctx, oid); err != nil {
		s.log.Error("membership recorded but attendee count not incremented",
			zap.String("event_id", oid.Hex()),
			zap.String("user", user),
			zap.Bool("membership_created", created),
			zap.Error(err))
		return JoinResult{}, err
	}

	return JoinResult{EventID: oid, Created: created}, nil
}

// IsMember checks if a membership exists for the given event and user.
func (s *Store) IsMember(ctx context.Context, eventID primitive.ObjectID, user string) (bool, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return false, nil
	}
	_, err := s.ds.FindOne(ctx, Collection, bson.M{"event_id": eventID, "user": user})
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
