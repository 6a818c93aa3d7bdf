package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
	"go.uber.org/zap"
)

// BreakerConfig tunes the circuit breaker in front of MongoDB.
// Zero values fall back to the defaults below.
type BreakerConfig struct {
	FailureThreshold uint32        // consecutive unavailability errors before opening
	OpenTimeout      time.Duration // how long the breaker stays open before probing
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

// Mongo is the MongoDB-backed Store. Every call goes through a circuit
// breaker so a dead cluster fails requests fast with ErrStoreUnavailable
// instead of stacking up server-selection timeouts.
type Mongo struct {
	db  *mongo.Database
	cb  *gobreaker.CircuitBreaker[any]
	log *zap.Logger
}

var _ Store = (*Mongo)(nil)

// NewMongo wraps db. The logger receives breaker state transitions.
func NewMongo(db *mongo.Database, cfg BreakerConfig, logger *zap.Logger) *Mongo {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        "mongo:" + db.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Only reachability problems trip the breaker; a missing document or
		// a duplicate key is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || !isUnavailable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Mongo{
		db:  db,
		cb:  gobreaker.NewCircuitBreaker[any](settings),
		log: logger,
	}
}

func (m *Mongo) Backend() string { return "mongo" }

// BreakerState reports the breaker state for diagnostics.
func (m *Mongo) BreakerState() string {
	return m.cb.State().String()
}

func (m *Mongo) Insert(ctx context.Context, collection string, doc bson.M) (primitive.ObjectID, error) {
	rec := make(bson.M, len(doc)+1)
	for k, v := range doc {
		rec[k] = v
	}
	id, ok := rec["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		rec["_id"] = id
	}

	_, err := m.cb.Execute(func() (any, error) {
		return m.db.Collection(collection).InsertOne(ctx, rec)
	})
	if err != nil {
		return primitive.NilObjectID, classify(err)
	}
	return id, nil
}

func (m *Mongo) FindMany(ctx context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.M, error) {
	fo := options.Find()
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if len(opts.Sort) > 0 {
		sortDoc := bson.D{}
		for _, s := range opts.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: s.Field, Value: dir})
		}
		fo.SetSort(sortDoc)
	}
	if filter == nil {
		filter = bson.M{}
	}

	v, err := m.cb.Execute(func() (any, error) {
		cur, err := m.db.Collection(collection).Find(ctx, filter, fo)
		if err != nil {
			return nil, err
		}
		defer cur.Close(ctx)

		docs := []bson.M{}
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return v.([]bson.M), nil
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	v, err := m.cb.Execute(func() (any, error) {
		var doc bson.M
		if err := m.db.Collection(collection).FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, err
		}
		return doc, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return v.(bson.M), nil
}

func (m *Mongo) Upsert(ctx context.Context, collection string, filter, set, setOnInsert bson.M) (bool, error) {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(setOnInsert) > 0 {
		update["$setOnInsert"] = setOnInsert
	}
	if len(update) == 0 {
		return false, errors.New("docstore: upsert needs set or setOnInsert fields")
	}
	opts := options.Update().SetUpsert(true)

	v, err := m.cb.Execute(func() (any, error) {
		coll := m.db.Collection(collection)
		res, err := coll.UpdateOne(ctx, filter, update, opts)
		if err != nil && wafflemongo.IsDup(err) {
			// Two identical upserts raced on the unique index; the loser
			// now matches the winner's document.
			res, err = coll.UpdateOne(ctx, filter, update, opts)
		}
		if err != nil {
			return nil, err
		}
		return res.UpsertedCount > 0, nil
	})
	if err != nil {
		return false, classify(err)
	}
	return v.(bool), nil
}

func (m *Mongo) Increment(ctx context.Context, collection string, filter bson.M, field string, delta int64) error {
	v, err := m.cb.Execute(func() (any, error) {
		res, err := m.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
		if err != nil {
			return nil, err
		}
		return res.MatchedCount, nil
	})
	if err != nil {
		return classify(err)
	}
	if v.(int64) == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Collections(ctx context.Context) ([]string, error) {
	v, err := m.cb.Execute(func() (any, error) {
		return m.db.ListCollectionNames(ctx, bson.D{})
	})
	if err != nil {
		return nil, classify(err)
	}
	return v.([]string), nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	_, err := m.cb.Execute(func() (any, error) {
		return nil, m.db.Client().Ping(ctx, readpref.Primary())
	})
	return classify(err)
}

// classify maps driver and breaker errors onto the docstore sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sse topology.ServerSelectionError
	return errors.As(err, &sse)
}
