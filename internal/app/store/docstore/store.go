// Package docstore is the document store adapter every domain store is built on.
//
// Stores above this layer speak in collections, bson.M records and bson.M
// filters; they never hold a *mongo.Collection directly. That keeps the
// events, memberships and messages stores runnable against either MongoDB or
// the in-memory backend used by tests and local runs.
//
// Required capabilities of every implementation:
//   - Upsert is atomic: concurrent upserts with the same filter never create
//     two records.
//   - Increment is an atomic add, never a read-modify-write.
package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned by FindOne and Increment when no record matches.
	ErrNotFound = errors.New("docstore: no matching document")

	// ErrStoreUnavailable wraps any failure caused by the backing store being
	// unreachable (network, timeout, disconnected client, open breaker).
	ErrStoreUnavailable = errors.New("docstore: store unavailable")
)

// SortField orders FindMany results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// FindOptions controls FindMany. A zero Limit means no limit.
type FindOptions struct {
	Sort  []SortField
	Limit int64
}

// Store is the minimal collection interface the domain stores consume.
type Store interface {
	// Insert persists doc and returns its _id, assigning one when absent.
	Insert(ctx context.Context, collection string, doc bson.M) (primitive.ObjectID, error)

	// FindMany returns records matching filter in store order unless a sort
	// is given, capped at opts.Limit.
	FindMany(ctx context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.M, error)

	// FindOne returns the first record matching filter or ErrNotFound.
	FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error)

	// Upsert sets the fields in set on the record matching filter. When none
	// matches it inserts the union of filter, set and setOnInsert.
	// created reports whether a new record was inserted.
	Upsert(ctx context.Context, collection string, filter, set, setOnInsert bson.M) (created bool, err error)

	// Increment atomically adds delta to a numeric field of the first record
	// matching filter.
	Increment(ctx context.Context, collection string, filter bson.M, field string, delta int64) error

	// Collections lists collection names (diagnostics).
	Collections(ctx context.Context) ([]string, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Backend names the implementation ("mongo" or "memory").
	Backend() string
}

// Encode maps a typed entity onto the store's generic record form.
func Encode(v any) (bson.M, error) {
	if m, ok := v.(bson.M); ok && m == nil {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode maps a generic record back onto a typed entity.
func Decode(doc bson.M, v any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

// DecodeAll decodes every record in docs into a new slice of T.
func DecodeAll[T any](docs []bson.M) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := Decode(d, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
