// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	eventstore "github.com/dalemusser/nearby/internal/app/store/events"
	"github.com/dalemusser/nearby/internal/app/system/htmlsanitize"
	"github.com/dalemusser/nearby/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection is the name of the messages collection.
const Collection = "messages"

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var (
	ErrNotAMember     = errors.New("join the event to chat")
	ErrInvalidMessage = errors.New("message text is empty")
	ErrMarkup         = errors.New("message text contains HTML markup")
)

// MembershipChecker answers whether user may post to an event.
type MembershipChecker interface {
	IsMember(ctx context.Context, eventID primitive.ObjectID, user string) (bool, error)
}

type Store struct {
	ds      docstore.Store
	members MembershipChecker
	now     func() time.Time
}

func New(ds docstore.Store, members MembershipChecker) *Store {
	return &Store{ds: ds, members: members, now: time.Now}
}

// List returns the newest limit messages of an event, oldest first.
// Reads are open to anyone holding the event id; an id that cannot exist
// simply has no messages.
func (s *Store) List(ctx context.Context, eventID string, limit int) ([]models.Message, error) {
	oid, err := eventstore.ParseID(eventID)
	if err != nil {
		return []models.Message{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	docs, err := s.ds.FindMany(ctx, Collection, bson.M{"event_id": oid}, docstore.FindOptions{
		Sort: []docstore.SortField{
			{Field: "created_at", Desc: true},
			{Field: "_id", Desc: true},
		},
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	msgs, err := docstore.DecodeAll[models.Message](docs)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Send appends a message from user. Only members of the event may post.
// The text is stored exactly as sent; blank text and text carrying HTML tags
// are refused.
func (s *Store) Send(ctx context.Context, eventID, user, text string) (primitive.ObjectID, error) {
	oid, err := eventstore.ParseID(eventID)
	if err != nil {
		// No membership can reference a malformed id.
		return primitive.NilObjectID, ErrNotAMember
	}

	ok, err := s.members.IsMember(ctx, oid, user)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, ErrNotAMember
	}

	if strings.TrimSpace(text) == "" {
		return primitive.NilObjectID, ErrInvalidMessage
	}
	if !htmlsanitize.IsPlainText(text) {
		return primitive.NilObjectID, ErrMarkup
	}

	msg := models.Message{
		EventID:   oid,
		User:      strings.TrimSpace(user),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	doc, err := docstore.Encode(msg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return s.ds.Insert(ctx, Collection, doc)
}
