// Package ecode defines the stable numeric error codes returned by the
// paginator, and a typed error carrying them.
//
// # Error Code Convention
//
//   - 0: Success (OK)
//   - 1000-1999: Option errors
//   - 2000-2999: Query tweak errors (pagination fields, lifecycle)
//   - 3000-3999: Continuation token decode errors
//   - 4000-4999: Continuation token identity errors
//
// # Dispatching on Codes
//
//	page, err := p.Exec(ctx)
//	switch ecode.CodeOf(err) {
//	case ecode.DecodeErr, ecode.IdentityMismatch:
//	    // the client sent a bad or foreign cursor
//	case ecode.PaginationFieldsErr:
//	    // the sort does not end with the pagination fields
//	}
//
// Errors returned by hooks or by the query executor carry no code; they are
// returned unchanged.
//
// # HTTP Status Mapping
//
//	httpStatus := ecode.ToHTTPStatus(ecode.DecodeErr)
//	// Returns: 400
package ecode
