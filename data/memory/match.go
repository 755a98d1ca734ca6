package memory

import (
	"fmt"
	"strings"

	"github.com/ncobase/keyset/paging"
	"github.com/ncobase/keyset/types"
	"go.mongodb.org/mongo-driver/bson"
)

// Match reports whether doc satisfies the filter f. It understands the
// logical operators $and, $or and $nor and the field operators $eq, $ne,
// $gt, $gte, $lt, $lte, $in, $nin and $exists. Range operators only match
// values of the same type bracket, as MongoDB does.
func Match(doc bson.M, f bson.M) (bool, error) {
	for key, cond := range f {
		ok, err := matchKey(doc, key, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(doc bson.M, key string, cond any) (bool, error) {
	switch key {
	case "$and", "$or", "$nor":
		clauses, err := clauseList(key, cond)
		if err != nil {
			return false, err
		}
		return matchLogical(doc, key, clauses)
	}
	if strings.HasPrefix(key, "$") {
		return false, fmt.Errorf("memory: unknown top level operator %q", key)
	}

	value, found := paging.DefaultFields(doc, key)
	if ops, ok := operatorDoc(cond); ok {
		for op, arg := range ops {
			ok, err := matchOperator(value, found, op, arg)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return equals(value, found, cond), nil
}

func matchLogical(doc bson.M, op string, clauses []bson.M) (bool, error) {
	for _, clause := range clauses {
		ok, err := Match(doc, clause)
		if err != nil {
			return false, err
		}
		switch {
		case op == "$and" && !ok:
			return false, nil
		case op == "$or" && ok:
			return true, nil
		case op == "$nor" && ok:
			return false, nil
		}
	}
	return op != "$or", nil
}

func matchOperator(value any, found bool, op string, arg any) (bool, error) {
	switch op {
	case "$eq":
		return equals(value, found, arg), nil
	case "$ne":
		return !equals(value, found, arg), nil
	case "$gt", "$gte", "$lt", "$lte":
		if !found || !types.Comparable(value, arg) {
			return false, nil
		}
		c := types.CompareValues(value, arg)
		switch op {
		case "$gt":
			return c > 0, nil
		case "$gte":
			return c >= 0, nil
		case "$lt":
			return c < 0, nil
		}
		return c <= 0, nil
	case "$in", "$nin":
		candidates, ok := toList(arg)
		if !ok {
			return false, fmt.Errorf("memory: %s needs an array", op)
		}
		in := false
		for _, candidate := range candidates {
			if equals(value, found, candidate) {
				in = true
				break
			}
		}
		return in == (op == "$in"), nil
	case "$exists":
		want, ok := arg.(bool)
		if !ok {
			return false, fmt.Errorf("memory: $exists needs a boolean")
		}
		return found == want, nil
	}
	return false, fmt.Errorf("memory: unknown operator %q", op)
}

// equals follows MongoDB equality: null matches missing fields and an
// array matches as a whole or through any of its elements.
func equals(value any, found bool, want any) bool {
	if want == nil {
		return !found || value == nil
	}
	if !found {
		return false
	}
	if types.EqualValues(value, want) {
		return true
	}
	if elems, ok := toList(value); ok {
		for _, e := range elems {
			if types.EqualValues(e, want) {
				return true
			}
		}
		return false
	}
	return false
}

// operatorDoc returns cond as an operator document when every key of it
// is an operator.
func operatorDoc(cond any) (bson.M, bool) {
	m, ok := toDoc(cond)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func clauseList(op string, cond any) ([]bson.M, error) {
	items, ok := toList(cond)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("memory: %s needs a non-empty array", op)
	}
	clauses := make([]bson.M, len(items))
	for i, item := range items {
		m, ok := toDoc(item)
		if !ok {
			return nil, fmt.Errorf("memory: %s entries must be documents", op)
		}
		clauses[i] = m
	}
	return clauses, nil
}

func toDoc(v any) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return d, true
	case bson.D:
		return d.Map(), true
	}
	return nil, false
}

func toList(v any) ([]any, bool) {
	switch l := v.(type) {
	case bson.A:
		return l, true
	case []any:
		return l, true
	case []bson.M:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
