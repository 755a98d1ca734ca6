package filter

import (
	"github.com/ncobase/keyset/types"
	"go.mongodb.org/mongo-driver/bson"
)

// Range builds the filter matching records strictly after the position
// described by values under sort.
//
// Only sort fields that have a value are constrained, in sort order. With
// several constrained fields the result is a disjunction where clause i
// requires equality on fields 0..i-1 and the directional comparison on
// field i:
//
//	Range({a: -1, b: 1}, {a: 5, b: 2})
//	// {$or: [{a: {$lt: 5}}, {a: {$eq: 5}, b: {$gt: 2}}]}
func Range(sort types.Sort, values bson.M) bson.M {
	var keys []types.SortField
	for _, f := range sort {
		if _, ok := values[f.Field]; ok {
			keys = append(keys, f)
		}
	}

	clauses := make(bson.A, 0, len(keys))
	for i, key := range keys {
		clause := bson.M{}
		for _, prev := range keys[:i] {
			clause[prev.Field] = bson.M{Eq: cloneValue(values[prev.Field])}
		}
		clause[key.Field] = bson.M{op(key.Direction): cloneValue(values[key.Field])}
		clauses = append(clauses, clause)
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	}
	return bson.M{Or: clauses}
}

func op(dir types.Direction) string {
	if dir == types.Ascending {
		return Gt
	}
	return Lt
}
