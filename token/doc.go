// Package token implements the continuation token handed to clients between
// page requests.
//
// A token records the sort of the page that issued it, the sort values of
// that page's last record, an opaque caller payload and a CRC32 checksum of
// the source (collection) name. The binary form is a schema version byte
// followed by a BSON document; the text form is unpadded base64url so it can
// travel in query strings and headers.
//
//	next, err := token.Encode(tok)
//	tok, err := token.Decode(next) // *ecode.Error with ecode.DecodeErr on failure
//
// Tokens of another schema version are rejected outright; no cross-version
// compatibility is attempted.
package token
