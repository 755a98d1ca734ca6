package filter

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Logical connectives and comparison operators used in filter trees.
const (
	And = "$and"
	Or  = "$or"
	Eq  = "$eq"
	Gt  = "$gt"
	Lt  = "$lt"
)

// Clone returns a deep copy of f. Nested documents and arrays are copied;
// scalar values are shared.
func Clone(f bson.M) bson.M {
	if f == nil {
		return nil
	}
	return cloneValue(f).(bson.M)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(bson.M, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(bson.M, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case bson.D:
		out := make(bson.D, len(val))
		for i, e := range val {
			out[i] = bson.E{Key: e.Key, Value: cloneValue(e.Value)}
		}
		return out
	case bson.A:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []any:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []bson.M:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// IsEmpty reports whether f holds no constraint.
func IsEmpty(f bson.M) bool {
	return len(f) == 0
}

// sharedKeys returns the keys present in both a and b.
func sharedKeys(a, b bson.M) []string {
	var keys []string
	for k := range a {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// list returns v as an array when it is one.
func list(v any) (bson.A, bool) {
	switch val := v.(type) {
	case bson.A:
		return val, true
	case []any:
		return bson.A(val), true
	case []bson.M:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, true
	}
	return nil, false
}
