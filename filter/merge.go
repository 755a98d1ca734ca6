package filter

import (
	"maps"

	"go.mongodb.org/mongo-driver/bson"
)

// Merge combines two filter trees into one that holds every constraint of
// both. Neither input is modified.
//
// Trees without common keys are united. When keys collide the trees are
// joined with $and, appending to first's $and list when it already has one
// so conjunctions stay flat.
func Merge(first, second bson.M) bson.M {
	switch {
	case IsEmpty(first):
		return emptyIfNil(Clone(second))
	case IsEmpty(second):
		return Clone(first)
	case len(sharedKeys(first, second)) == 0:
		out := Clone(first)
		maps.Copy(out, Clone(second))
		return out
	}

	if conj, ok := list(first[And]); ok {
		out := Clone(first)
		members := cloneValue(conj).(bson.A)
		if inner, ok := list(second[And]); ok && len(second) == 1 {
			members = append(members, cloneValue(inner).(bson.A)...)
		} else {
			members = append(members, Clone(second))
		}
		out[And] = members
		return out
	}

	return bson.M{And: bson.A{Clone(first), Clone(second)}}
}

func emptyIfNil(f bson.M) bson.M {
	if f == nil {
		return bson.M{}
	}
	return f
}
