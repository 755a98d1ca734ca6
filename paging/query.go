package paging

import (
	"context"
	"strings"

	"github.com/ncobase/keyset/types"
	"go.mongodb.org/mongo-driver/bson"
)

// Query is the ordered query executor being paginated. The paginator
// replaces its sort, filter and limit once before execution.
type Query[T any] interface {
	// Source names the collection being queried. It is available before
	// execution and identifies the tokens a query accepts.
	Source() string

	Sort() types.Sort
	SetSort(types.Sort)
	Filter() bson.M
	SetFilter(bson.M)
	Limit() int64
	SetLimit(int64)

	// All executes the query and returns every record.
	All(ctx context.Context) ([]T, error)
	// Cursor executes the query and returns the records one at a time.
	Cursor(ctx context.Context) (Cursor[T], error)
}

// Cursor iterates over query results.
type Cursor[T any] interface {
	Next(ctx context.Context) bool
	Decode() (T, error)
	Err() error
	Close(ctx context.Context) error
}

// FieldFunc extracts a named field from a record.
type FieldFunc[T any] func(item T, field string) (any, bool)

// DefaultFields looks field up in maps and BSON documents directly and in
// any other record through its BSON encoding, so structs with bson tags
// work. Dotted names address nested documents.
func DefaultFields[T any](item T, field string) (any, bool) {
	parts := strings.Split(field, ".")

	switch v := any(item).(type) {
	case bson.M, map[string]any, bson.D:
		return lookupPath(v, parts)
	case nil:
		return nil, false
	}

	raw, err := bson.Marshal(item)
	if err != nil {
		return nil, false
	}
	rv, err := bson.Raw(raw).LookupErr(parts...)
	if err != nil {
		return nil, false
	}

	var out any
	if err := rv.Unmarshal(&out); err != nil {
		return nil, false
	}
	return out, true
}

func lookupPath(v any, parts []string) (any, bool) {
	for _, part := range parts {
		var ok bool
		switch doc := v.(type) {
		case bson.M:
			v, ok = doc[part]
		case map[string]any:
			v, ok = doc[part]
		case bson.D:
			for _, e := range doc {
				if e.Key == part {
					v, ok = e.Value, true
					break
				}
			}
		}
		if !ok {
			return nil, false
		}
	}
	return v, true
}
