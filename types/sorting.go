package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Direction represents sorting direction.
type Direction int

const (
	Ascending  Direction = 1  // Ascending order
	Descending Direction = -1 // Descending order
)

// Valid reports whether d is one of Ascending or Descending.
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortField represents a single sorting criterion.
type SortField struct {
	Field     string    `json:"field"`     // Field to sort by
	Direction Direction `json:"direction"` // Sort direction
}

// Sort is an ordered sort specification. The order of the fields is the
// tie-break order: later fields only decide between records that are equal
// on every earlier field.
type Sort []SortField

// SortBy starts a sort specification with a single field.
func SortBy(field string, dir Direction) Sort {
	return Sort{{Field: field, Direction: dir}}
}

// Then returns a copy of s with field appended as the next tie-breaker.
// An existing entry for field is replaced in place.
func (s Sort) Then(field string, dir Direction) Sort {
	out := s.Clone()
	for i := range out {
		if out[i].Field == field {
			out[i].Direction = dir
			return out
		}
	}
	return append(out, SortField{Field: field, Direction: dir})
}

// IsEmpty reports whether the sort has no fields.
func (s Sort) IsEmpty() bool {
	return len(s) == 0
}

// Keys returns the sort field names in order.
func (s Sort) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Field
	}
	return keys
}

// Get returns the direction of field.
func (s Sort) Get(field string) (Direction, bool) {
	for _, f := range s {
		if f.Field == field {
			return f.Direction, true
		}
	}
	return 0, false
}

// Clone returns a copy of s. The copy of a nil sort is nil.
func (s Sort) Clone() Sort {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Reverse returns s with every direction flipped.
func (s Sort) Reverse() Sort {
	out := s.Clone()
	for i := range out {
		out[i].Direction = out[i].Direction.Reverse()
	}
	return out
}

// D converts s into an ordered BSON document suitable for a MongoDB sort.
func (s Sort) D() bson.D {
	d := make(bson.D, 0, len(s))
	for _, f := range s {
		d = append(d, bson.E{Key: f.Field, Value: int32(f.Direction)})
	}
	return d
}

// HasSuffix reports whether fields are exactly the trailing keys of s.
// Without strict the trailing keys may appear in any order.
func (s Sort) HasSuffix(fields []string, strict bool) bool {
	if len(fields) == 0 || len(fields) > len(s) {
		return false
	}

	last := s[len(s)-len(fields):].Keys()
	for i, field := range fields {
		if strict {
			if last[i] != field {
				return false
			}
		} else if !slices.Contains(last, field) {
			return false
		}
	}
	return true
}

// String renders s in the compact form accepted by ParseSort.
func (s Sort) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		if f.Direction == Descending {
			parts[i] = "-" + f.Field
		} else {
			parts[i] = f.Field
		}
	}
	return strings.Join(parts, ",")
}

// SortFromD converts an ordered BSON document of field -> direction into a Sort.
func SortFromD(d bson.D) (Sort, error) {
	s := make(Sort, 0, len(d))
	for _, e := range d {
		dir, err := toDirection(e.Value)
		if err != nil {
			return nil, fmt.Errorf("sort field %q: %w", e.Key, err)
		}
		s = append(s, SortField{Field: e.Key, Direction: dir})
	}
	return s, nil
}

// ParseSort parses a comma separated sort expression.
//
// Each item is either "field", "+field", "-field" or "field:1" / "field:-1":
//
//	-createdAt,_id        // createdAt desc, _id asc
//	createdAt:-1,_id:-1   // createdAt desc, _id desc
func ParseSort(expr string) (Sort, error) {
	var s Sort
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		dir := Ascending
		switch {
		case strings.HasPrefix(part, "-"):
			dir, part = Descending, part[1:]
		case strings.HasPrefix(part, "+"):
			part = part[1:]
		case strings.Contains(part, ":"):
			field, raw, _ := strings.Cut(part, ":")
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || !Direction(n).Valid() {
				return nil, fmt.Errorf("invalid sort direction %q for field %q", raw, field)
			}
			dir, part = Direction(n), strings.TrimSpace(field)
		}

		if part == "" {
			return nil, fmt.Errorf("invalid sort expression %q", expr)
		}
		if _, exists := s.Get(part); exists {
			return nil, fmt.Errorf("duplicate sort field %q", part)
		}
		s = append(s, SortField{Field: part, Direction: dir})
	}
	return s, nil
}

func toDirection(v any) (Direction, error) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int32:
		n = int64(val)
	case int64:
		n = val
	case float64:
		if val != float64(int64(val)) {
			return 0, fmt.Errorf("invalid direction %v", val)
		}
		n = int64(val)
	case Direction:
		n = int64(val)
	default:
		return 0, fmt.Errorf("invalid direction type %T", v)
	}

	if !Direction(n).Valid() {
		return 0, fmt.Errorf("invalid direction %d", n)
	}
	return Direction(n), nil
}
