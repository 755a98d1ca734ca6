package filter

import (
	"testing"

	"github.com/ncobase/keyset/types"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRange(t *testing.T) {
	ab := types.SortBy("a", types.Descending).Then("b", types.Ascending)

	tests := []struct {
		name   string
		sort   types.Sort
		values bson.M
		want   bson.M
	}{
		{
			name:   "no values",
			sort:   ab,
			values: bson.M{},
			want:   bson.M{},
		},
		{
			name:   "single ascending key",
			sort:   types.SortBy("_id", types.Ascending),
			values: bson.M{"_id": 10},
			want:   bson.M{"_id": bson.M{"$gt": 10}},
		},
		{
			name:   "single descending key",
			sort:   types.SortBy("_id", types.Descending),
			values: bson.M{"_id": 10},
			want:   bson.M{"_id": bson.M{"$lt": 10}},
		},
		{
			name:   "two keys",
			sort:   ab,
			values: bson.M{"a": 5, "b": 2},
			want: bson.M{"$or": bson.A{
				bson.M{"a": bson.M{"$lt": 5}},
				bson.M{"a": bson.M{"$eq": 5}, "b": bson.M{"$gt": 2}},
			}},
		},
		{
			name:   "only trailing key has a value",
			sort:   ab,
			values: bson.M{"b": 2},
			want:   bson.M{"b": bson.M{"$gt": 2}},
		},
		{
			name:   "values outside the sort are ignored",
			sort:   types.SortBy("a", types.Ascending),
			values: bson.M{"a": 1, "z": 9},
			want:   bson.M{"a": bson.M{"$gt": 1}},
		},
		{
			name:   "three keys use full prefix equality",
			sort:   types.SortBy("a", types.Ascending).Then("b", types.Descending).Then("c", types.Ascending),
			values: bson.M{"a": 1, "b": 2, "c": 3},
			want: bson.M{"$or": bson.A{
				bson.M{"a": bson.M{"$gt": 1}},
				bson.M{"a": bson.M{"$eq": 1}, "b": bson.M{"$lt": 2}},
				bson.M{"a": bson.M{"$eq": 1}, "b": bson.M{"$eq": 2}, "c": bson.M{"$gt": 3}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Range(tt.sort, tt.values))
		})
	}
}

func TestRangeNilSort(t *testing.T) {
	assert.Equal(t, bson.M{}, Range(nil, bson.M{"a": 1}))
}
