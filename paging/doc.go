// Package paging implements keyset pagination over ordered queries.
//
// A Paginator rewrites a Query so that it returns the records following
// the page described by a continuation token, fetching one extra record to
// learn whether another page exists:
//
//	p, err := paging.New(q, &paging.Options[bson.M]{Next: next})
//	if err != nil {
//		return err
//	}
//	res, err := p.Exec(ctx)
//
// res.Metadata.Next holds the token of the following page, or nil on the
// last page.
package paging
