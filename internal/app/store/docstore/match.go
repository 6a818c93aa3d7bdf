package docstore

import (
	"bytes"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matches evaluates the subset of MongoDB query syntax the domain stores use:
// field equality and the $eq/$gt/$gte/$lt/$lte operators, implicitly ANDed.
func matches(doc, filter bson.M) (bool, error) {
	for field, want := range filter {
		got, present := doc[field]

		ops, isOps := operatorMap(want)
		if !isOps {
			if !present {
				return false, nil
			}
			c, ok := compare(got, want)
			if !ok || c != 0 {
				return false, nil
			}
			continue
		}

		for op, arg := range ops {
			switch op {
			case "$eq", "$gt", "$gte", "$lt", "$lte":
			default:
				return false, fmt.Errorf("docstore: unsupported operator %q", op)
			}
			if !present {
				return false, nil
			}
			c, ok := compare(got, arg)
			if !ok {
				return false, nil
			}
			var pass bool
			switch op {
			case "$eq":
				pass = c == 0
			case "$gt":
				pass = c > 0
			case "$gte":
				pass = c >= 0
			case "$lt":
				pass = c < 0
			case "$lte":
				pass = c <= 0
			}
			if !pass {
				return false, nil
			}
		}
	}
	return true, nil
}

// operatorMap returns v as an operator document when every key starts with '$'.
func operatorMap(v any) (map[string]any, bool) {
	var m map[string]any
	switch t := v.(type) {
	case bson.M:
		m = t
	case map[string]any:
		m = t
	case bson.D:
		m = t.Map()
	default:
		return nil, false
	}
	if len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if len(k) == 0 || k[0] != '$' {
			return nil, false
		}
	}
	return m, true
}

// compare orders two scalar values. ok is false when the types are not
// comparable with each other.
func compare(a, b any) (c int, ok bool) {
	if fa, okA := toFloat(a); okA {
		fb, okB := toFloat(b)
		if !okB {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	if ta, okA := toTime(a); okA {
		tb, okB := toTime(b)
		if !okB {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	switch av := a.(type) {
	case string:
		bv, okB := b.(string)
		if !okB {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case primitive.ObjectID:
		bv, okB := b.(primitive.ObjectID)
		if !okB {
			return 0, false
		}
		return bytes.Compare(av[:], bv[:]), true
	case bool:
		bv, okB := b.(bool)
		if !okB || av != bv {
			return 0, false
		}
		return 0, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}

// addNumber returns cur+delta, keeping the stored integer width when it fits.
func addNumber(cur any, delta int64) (any, error) {
	switch n := cur.(type) {
	case nil:
		return delta, nil
	case int32:
		sum := int64(n) + delta
		if sum >= -1<<31 && sum <= 1<<31-1 {
			return int32(sum), nil
		}
		return sum, nil
	case int64:
		return n + delta, nil
	case int:
		return int64(n) + delta, nil
	case float64:
		return n + float64(delta), nil
	}
	return nil, fmt.Errorf("docstore: cannot increment non-numeric value of type %T", cur)
}
