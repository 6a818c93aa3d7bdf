package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. One mutex guards every collection, which is
// what makes Upsert and Increment atomic here.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]bson.M
	unavailable bool
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]bson.M)}
}

// SetUnavailable makes every subsequent call fail with ErrStoreUnavailable
// until it is switched back.
func (m *Memory) SetUnavailable(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = down
}

func (m *Memory) Backend() string { return "memory" }

func (m *Memory) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if m.unavailable {
		return fmt.Errorf("%w: memory store switched off", ErrStoreUnavailable)
	}
	return nil
}

func (m *Memory) Insert(ctx context.Context, collection string, doc bson.M) (primitive.ObjectID, error) {
	rec, err := Encode(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := rec["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		rec["_id"] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return primitive.NilObjectID, err
	}
	for _, existing := range m.collections[collection] {
		if existing["_id"] == id {
			return primitive.NilObjectID, fmt.Errorf("docstore: duplicate _id %s in %s", id.Hex(), collection)
		}
	}
	m.collections[collection] = append(m.collections[collection], rec)
	return id, nil
}

func (m *Memory) FindMany(ctx context.Context, collection string, filter bson.M, opts FindOptions) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	var out []bson.M
	for _, rec := range m.collections[collection] {
		ok, err := matches(rec, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, clone(rec))
		}
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, s := range opts.Sort {
				c, _ := compare(out[i][s.Field], out[j][s.Field])
				if c == 0 {
					continue
				}
				if s.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	if out == nil {
		out = []bson.M{}
	}
	return out, nil
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	idx, err := m.indexOf(collection, filter)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	return clone(m.collections[collection][idx]), nil
}

func (m *Memory) Upsert(ctx context.Context, collection string, filter, set, setOnInsert bson.M) (bool, error) {
	setRec, err := Encode(set)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return false, err
	}
	idx, err := m.indexOf(collection, filter)
	if err != nil {
		return false, err
	}
	if idx >= 0 {
		rec := m.collections[collection][idx]
		for k, v := range setRec {
			rec[k] = v
		}
		return false, nil
	}

	union := bson.M{}
	for k, v := range filter {
		if _, isOps := operatorMap(v); !isOps {
			union[k] = v
		}
	}
	for k, v := range setOnInsert {
		union[k] = v
	}
	for k, v := range set {
		union[k] = v
	}
	rec, err := Encode(union)
	if err != nil {
		return false, err
	}
	if _, ok := rec["_id"].(primitive.ObjectID); !ok {
		rec["_id"] = primitive.NewObjectID()
	}
	m.collections[collection] = append(m.collections[collection], rec)
	return true, nil
}

func (m *Memory) Increment(ctx context.Context, collection string, filter bson.M, field string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	idx, err := m.indexOf(collection, filter)
	if err != nil {
		return err
	}
	if idx < 0 {
		return ErrNotFound
	}
	rec := m.collections[collection][idx]
	next, err := addNumber(rec[field], delta)
	if err != nil {
		return err
	}
	rec[field] = next
	return nil
}

func (m *Memory) Collections(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check(ctx)
}

// indexOf returns the position of the first record matching filter, or -1.
// Callers hold m.mu.
func (m *Memory) indexOf(collection string, filter bson.M) (int, error) {
	for i, rec := range m.collections[collection] {
		ok, err := matches(rec, filter)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

// clone copies the top level of rec; stored values are immutable scalars.
func clone(rec bson.M) bson.M {
	out := make(bson.M, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
