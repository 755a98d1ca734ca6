// Package types provides the sort specification and value comparison shared
// by the filter, token and paging packages.
//
// # Sort Specifications
//
// A Sort is an ordered list of field/direction pairs. The order matters: it
// is the tie-break order used by keyset pagination.
//
//	sort := types.SortBy("createdAt", types.Descending).Then("_id", types.Descending)
//	sort.Keys()   // ["createdAt", "_id"]
//	sort.D()      // bson.D{{"createdAt", -1}, {"_id", -1}}
//	sort.String() // "-createdAt,-_id"
//
// Sort expressions can be parsed from query strings:
//
//	sort, err := types.ParseSort("-createdAt,_id")
//
// # Value Comparison
//
// CompareValues orders BSON-compatible values the way MongoDB does, so
// in-memory executors sort and filter exactly like the database.
package types
