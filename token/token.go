package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Version is the schema version written into every token.
const Version = 1

// Element keys of the token body, in layout order.
const (
	keyChecksum  = "c"
	keyDirection = "d"
	keyValues    = "s"
	keyPayload   = "p"
)

var (
	encoding   = base64.RawURLEncoding
	layoutKeys = []string{keyChecksum, keyDirection, keyValues, keyPayload}
)

// Token is a continuation token: the position of the last record of a page
// together with the sort that produced it.
//
// SortValues and Payload travel as BSON, so decoded values carry the BSON
// decode types rather than the Go types they were built from: an int comes
// back as int32 (int64 when it does not fit), time.Time as
// primitive.DateTime truncated to milliseconds, and nested maps as bson.M.
type Token struct {
	SchemaVersion  int        `json:"schema_version"`
	SourceChecksum uint32     `json:"source_checksum"`
	SortDirection  types.Sort `json:"sort_direction"`
	SortValues     bson.M     `json:"sort_values"`
	Payload        bson.M     `json:"payload"`
}

// New creates an empty token for the named source.
func New(source string) *Token {
	return &Token{
		SchemaVersion:  Version,
		SourceChecksum: Checksum(source),
		SortValues:     bson.M{},
		Payload:        bson.M{},
	}
}

// MatchesSource reports whether t was issued for the named source.
func (t *Token) MatchesSource(source string) bool {
	return t.SourceChecksum == Checksum(source)
}

// MarshalBinary writes the version byte followed by a BSON document holding
// the checksum, sort direction, sort values and payload, in that order.
func (t *Token) MarshalBinary() ([]byte, error) {
	if t.SchemaVersion < 0 || t.SchemaVersion > math.MaxUint8 {
		return nil, fmt.Errorf("token: schema version %d out of range", t.SchemaVersion)
	}

	values := make(bson.D, 0, len(t.SortValues))
	for _, f := range t.SortDirection {
		if v, ok := t.SortValues[f.Field]; ok {
			values = append(values, bson.E{Key: f.Field, Value: v})
		}
	}
	if len(values) != len(t.SortValues) {
		return nil, errors.New("token: sort values must be a subset of the sort direction")
	}

	payload := t.Payload
	if payload == nil {
		payload = bson.M{}
	}

	body, err := bson.Marshal(bson.D{
		{Key: keyChecksum, Value: int64(t.SourceChecksum)},
		{Key: keyDirection, Value: t.SortDirection.D()},
		{Key: keyValues, Value: values},
		{Key: keyPayload, Value: payload},
	})
	if err != nil {
		return nil, fmt.Errorf("token: failed to encode: %w", err)
	}

	return append([]byte{byte(t.SchemaVersion)}, body...), nil
}

// UnmarshalBinary replaces t with the token decoded from b.
func (t *Token) UnmarshalBinary(b []byte) error {
	decoded, err := DecodeBytes(b)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// MarshalText encodes t with Encode.
func (t *Token) MarshalText() ([]byte, error) {
	s, err := Encode(t)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText replaces t with the token decoded from text.
func (t *Token) UnmarshalText(text []byte) error {
	decoded, err := Decode(string(text))
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// Encode returns the URL-safe text form of t.
func Encode(t *Token) (string, error) {
	b, err := t.MarshalBinary()
	if err != nil {
		return "", err
	}
	return encoding.EncodeToString(b), nil
}

// String returns the text form of t, or an empty string when t cannot be
// encoded.
func (t *Token) String() string {
	s, err := Encode(t)
	if err != nil {
		return ""
	}
	return s
}

// Parse is an alias of Decode.
func Parse(s string) (*Token, error) {
	return Decode(s)
}

// Decode parses the text form of a token. Every failure is an
// *ecode.Error with code ecode.DecodeErr.
func Decode(s string) (*Token, error) {
	b, err := encoding.DecodeString(s)
	if err != nil {
		return nil, decodeError(fmt.Errorf("invalid encoding: %w", err))
	}
	return DecodeBytes(b)
}

// DecodeBytes parses the binary form of a token. The version byte is checked
// before anything else is read.
func DecodeBytes(b []byte) (*Token, error) {
	if len(b) == 0 {
		return nil, decodeError(errors.New("empty token"))
	}
	if int(b[0]) != Version {
		return nil, decodeError(fmt.Errorf("unexpected schema version: %d", b[0]))
	}

	body := bson.Raw(b[1:])
	if err := body.Validate(); err != nil {
		return nil, decodeError(fmt.Errorf("malformed body: %w", err))
	}

	elems, err := body.Elements()
	if err != nil {
		return nil, decodeError(err)
	}
	if len(elems) != len(layoutKeys) {
		return nil, decodeError(fmt.Errorf("unexpected field count: %d", len(elems)))
	}
	for i, e := range elems {
		if e.Key() != layoutKeys[i] {
			return nil, decodeError(fmt.Errorf("unexpected field %q at position %d", e.Key(), i))
		}
	}

	t := &Token{SchemaVersion: Version}

	sum, ok := elems[0].Value().Int64OK()
	if !ok || sum < 0 || sum > math.MaxUint32 {
		return nil, decodeError(errors.New("invalid source checksum"))
	}
	t.SourceChecksum = uint32(sum)

	var direction bson.D
	if err := unmarshalDocument(elems[1].Value(), &direction); err != nil {
		return nil, decodeError(fmt.Errorf("sort direction: %w", err))
	}
	if len(direction) > 0 {
		if t.SortDirection, err = types.SortFromD(direction); err != nil {
			return nil, decodeError(err)
		}
	}

	if err := unmarshalDocument(elems[2].Value(), &t.SortValues); err != nil {
		return nil, decodeError(fmt.Errorf("sort values: %w", err))
	}
	keys := t.SortDirection.Keys()
	for k := range t.SortValues {
		if !slices.Contains(keys, k) {
			return nil, decodeError(fmt.Errorf("sort value %q has no sort direction", k))
		}
	}

	if err := unmarshalDocument(elems[3].Value(), &t.Payload); err != nil {
		return nil, decodeError(fmt.Errorf("payload: %w", err))
	}

	return t, nil
}

func unmarshalDocument(v bson.RawValue, out any) error {
	if v.Type != bsontype.EmbeddedDocument {
		return fmt.Errorf("expected document, got %s", v.Type)
	}
	return bson.Unmarshal(v.Value, out)
}

func decodeError(cause error) error {
	return ecode.Wrap(ecode.DecodeErr, "", cause)
}
