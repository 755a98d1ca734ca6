package token

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Go ints are written as BSON int32/int64, so the fixtures use the types
// the decoder produces.
func sampleToken() *Token {
	t := New("User")
	t.SortDirection = types.SortBy("createdAt", types.Descending).Then("_id", types.Descending)
	t.SortValues = bson.M{
		"createdAt": primitive.NewDateTimeFromTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		"_id":       primitive.NewObjectIDFromTimestamp(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	}
	t.Payload = bson.M{"tenant": "acme", "rank": int32(3), "score": 1.5, "beta": true}
	return t
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token *Token
	}{
		{"empty", New("User")},
		{"multi key sort", sampleToken()},
		{
			name: "empty sort values",
			token: func() *Token {
				tok := sampleToken()
				tok.SortValues = bson.M{}
				return tok
			}(),
		},
		{
			name: "partial sort values",
			token: func() *Token {
				tok := New("orders")
				tok.SortDirection = types.SortBy("total", types.Ascending).Then("seq", types.Ascending)
				tok.SortValues = bson.M{"seq": int64(1 << 40)}
				return tok
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Encode(tt.token)
			require.NoError(t, err)

			got, err := Decode(s)
			require.NoError(t, err)
			assert.Equal(t, tt.token, got)
		})
	}
}

func TestRoundTripNormalizesValues(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	tok := New("User")
	tok.SortDirection = types.SortBy("at", types.Descending).Then("n", types.Ascending)
	tok.SortValues = bson.M{"at": at, "n": 7}
	tok.Payload = bson.M{"big": 1 << 40, "filter": map[string]any{"kind": "a"}}

	s, err := Encode(tok)
	require.NoError(t, err)
	got, err := Decode(s)
	require.NoError(t, err)

	assert.Equal(t, int32(7), got.SortValues["n"])
	assert.Equal(t, primitive.NewDateTimeFromTime(at), got.SortValues["at"])
	assert.Equal(t, at.Truncate(time.Millisecond), got.SortValues["at"].(primitive.DateTime).Time().UTC())
	assert.Equal(t, int64(1<<40), got.Payload["big"])
	assert.Equal(t, bson.M{"kind": "a"}, got.Payload["filter"])
}

func TestEncodeIsURLSafe(t *testing.T) {
	for i := 0; i < 50; i++ {
		tok := sampleToken()
		tok.Payload["n"] = int32(i)
		tok.Payload["s"] = strings.Repeat("?>", i)

		s, err := Encode(tok)
		require.NoError(t, err)
		assert.NotContains(t, s, "+")
		assert.NotContains(t, s, "/")
		assert.NotContains(t, s, "=")
	}
}

func TestNilPayloadEncodesEmpty(t *testing.T) {
	tok := New("User")
	tok.Payload = nil

	s, err := Encode(tok)
	require.NoError(t, err)

	got, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, got.Payload)
}

func TestVersionGate(t *testing.T) {
	for _, version := range []int{0, 2, 255} {
		tok := sampleToken()
		tok.SchemaVersion = version

		s, err := Encode(tok)
		require.NoError(t, err)

		_, err = Decode(s)
		require.Error(t, err)
		assert.True(t, ecode.IsDecode(err), "version %d: %v", version, err)
		assert.Contains(t, err.Error(), "unexpected schema version")
	}

	// The version byte alone decides, whatever follows it.
	_, err := DecodeBytes([]byte{7, 0xde, 0xad})
	assert.Contains(t, err.Error(), "unexpected schema version: 7")
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := sampleToken().MarshalBinary()
	require.NoError(t, err)

	extra, err := bson.Marshal(bson.D{
		{Key: "c", Value: int64(1)},
		{Key: "d", Value: bson.D{}},
		{Key: "s", Value: bson.D{}},
		{Key: "p", Value: bson.D{}},
		{Key: "x", Value: 1},
	})
	require.NoError(t, err)

	swapped, err := bson.Marshal(bson.D{
		{Key: "d", Value: bson.D{}},
		{Key: "c", Value: int64(1)},
		{Key: "s", Value: bson.D{}},
		{Key: "p", Value: bson.D{}},
	})
	require.NoError(t, err)

	badDirection, err := bson.Marshal(bson.D{
		{Key: "c", Value: int64(1)},
		{Key: "d", Value: bson.D{{Key: "a", Value: int32(5)}}},
		{Key: "s", Value: bson.D{}},
		{Key: "p", Value: bson.D{}},
	})
	require.NoError(t, err)

	notSubset, err := bson.Marshal(bson.D{
		{Key: "c", Value: int64(1)},
		{Key: "d", Value: bson.D{{Key: "a", Value: int32(1)}}},
		{Key: "s", Value: bson.D{{Key: "b", Value: int32(1)}}},
		{Key: "p", Value: bson.D{}},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"version only", []byte{Version}},
		{"truncated", valid[:len(valid)-3]},
		{"extra field", append([]byte{Version}, extra...)},
		{"wrong order", append([]byte{Version}, swapped...)},
		{"invalid direction", append([]byte{Version}, badDirection...)},
		{"values not in sort", append([]byte{Version}, notSubset...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes(tt.buf)
			require.Error(t, err)
			assert.Equal(t, ecode.DecodeErr, ecode.CodeOf(err))
		})
	}

	_, err = Decode("not*base64")
	assert.True(t, ecode.IsDecode(err))
}

func TestEncodeRejectsForeignSortValues(t *testing.T) {
	tok := New("User")
	tok.SortDirection = types.SortBy("_id", types.Descending)
	tok.SortValues = bson.M{"status": "active"}

	_, err := Encode(tok)
	assert.Error(t, err)
}

func TestTextMarshaling(t *testing.T) {
	tok := sampleToken()

	data, err := json.Marshal(struct {
		Next *Token `json:"next"`
	}{tok})
	require.NoError(t, err)

	var out struct {
		Next *Token `json:"next"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, tok, out.Next)
}

func TestMatchesSource(t *testing.T) {
	tok := New("User")
	assert.True(t, tok.MatchesSource("User"))
	assert.False(t, tok.MatchesSource("Order"))
}
