package types

import (
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Type ranks follow the MongoDB comparison order so that records holding
// different value types for the same field still have a total order.
const (
	rankMinKey = iota
	rankNull
	rankNumber
	rankString
	rankDocument
	rankArray
	rankBinary
	rankObjectID
	rankBool
	rankDate
	rankTimestamp
	rankRegex
	rankOther
	rankMaxKey
)

// CompareValues compares two values and returns -1, 0, or 1.
//
// Values of different BSON types are ordered by type first. Documents
// compare element by element (key, then value) and arrays element by
// element, the shorter one first on a common prefix. bson.M keys are taken
// in sorted order. Types the driver does not order are compared by their
// printed form, so distinct values never compare equal.
func CompareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNumber:
		return compareNumbers(a, b)
	case rankString:
		return cmp.Compare(toString(a), toString(b))
	case rankDocument:
		return compareDocuments(toElements(a), toElements(b))
	case rankArray:
		return compareArrays(toArray(a), toArray(b))
	case rankBinary:
		return compareBinary(toBinary(a), toBinary(b))
	case rankObjectID:
		oa, ob := a.(primitive.ObjectID), b.(primitive.ObjectID)
		return bytes.Compare(oa[:], ob[:])
	case rankBool:
		return compareBool(a.(bool), b.(bool))
	case rankDate:
		return toTime(a).Compare(toTime(b))
	case rankTimestamp:
		return primitive.CompareTimestamp(a.(primitive.Timestamp), b.(primitive.Timestamp))
	case rankRegex:
		xa, xb := a.(primitive.Regex), b.(primitive.Regex)
		if c := cmp.Compare(xa.Pattern, xb.Pattern); c != 0 {
			return c
		}
		return cmp.Compare(xa.Options, xb.Options)
	case rankOther:
		if reflect.DeepEqual(a, b) {
			return 0
		}
		return cmp.Compare(fmt.Sprintf("%T:%v", a, a), fmt.Sprintf("%T:%v", b, b))
	}
	return 0
}

// EqualValues reports whether a and b compare equal and share a kind.
func EqualValues(a, b any) bool {
	return rank(a) == rank(b) && CompareValues(a, b) == 0
}

func rank(v any) int {
	switch v.(type) {
	case primitive.MinKey:
		return rankMinKey
	case nil, primitive.Null, primitive.Undefined:
		return rankNull
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, primitive.Decimal128:
		return rankNumber
	case string, primitive.Symbol:
		return rankString
	case bson.M, map[string]any, bson.D:
		return rankDocument
	case bson.A, []any:
		return rankArray
	case primitive.Binary, []byte:
		return rankBinary
	case primitive.ObjectID:
		return rankObjectID
	case bool:
		return rankBool
	case time.Time, primitive.DateTime:
		return rankDate
	case primitive.Timestamp:
		return rankTimestamp
	case primitive.Regex:
		return rankRegex
	case primitive.MaxKey:
		return rankMaxKey
	}
	return rankOther
}

func toString(v any) string {
	if s, ok := v.(primitive.Symbol); ok {
		return string(s)
	}
	return v.(string)
}

func toElements(v any) bson.D {
	switch d := v.(type) {
	case bson.D:
		return d
	case bson.M:
		return sortedElements(d)
	case map[string]any:
		return sortedElements(d)
	}
	return nil
}

func sortedElements(m map[string]any) bson.D {
	keys := slices.Sorted(maps.Keys(m))
	out := make(bson.D, len(keys))
	for i, k := range keys {
		out[i] = bson.E{Key: k, Value: m[k]}
	}
	return out
}

func compareDocuments(a, b bson.D) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmp.Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := CompareValues(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func toArray(v any) []any {
	if a, ok := v.(bson.A); ok {
		return a
	}
	return v.([]any)
}

func compareArrays(a, b []any) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func toBinary(v any) primitive.Binary {
	if b, ok := v.([]byte); ok {
		return primitive.Binary{Data: b}
	}
	return v.(primitive.Binary)
}

// compareBinary orders by length, then subtype, then bytes.
func compareBinary(a, b primitive.Binary) int {
	if c := cmp.Compare(len(a.Data), len(b.Data)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Subtype, b.Subtype); c != 0 {
		return c
	}
	return bytes.Compare(a.Data, b.Data)
}

func compareNumbers(a, b any) int {
	_, aDec := a.(primitive.Decimal128)
	_, bDec := b.(primitive.Decimal128)
	if aDec || bDec {
		return cmp.Compare(toFloat64(a), toFloat64(b))
	}
	ia, aInt := toInt64(a)
	ib, bInt := toInt64(b)
	if aInt && bInt {
		return cmp.Compare(ia, ib)
	}
	return cmp.Compare(toFloat64(a), toFloat64(b))
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	}
	return 0, false
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	i, _ := toInt64(v)
	return float64(i)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	}
	return time.Time{}
}

// Comparable reports whether a and b belong to the same comparison
// bracket, so that range operators between them are meaningful.
func Comparable(a, b any) bool {
	ra := rank(a)
	return ra != rankOther && ra != rankMinKey && ra != rankMaxKey && ra == rank(b)
}
