package memory

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/ncobase/keyset/filter"
	"github.com/ncobase/keyset/paging"
	"github.com/ncobase/keyset/types"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection is a named, in-memory set of documents.
type Collection struct {
	name string
	mu   sync.RWMutex
	docs []bson.M
}

// NewCollection creates a collection holding docs.
func NewCollection(name string, docs ...bson.M) *Collection {
	c := &Collection{name: name}
	c.Insert(docs...)
	return c
}

// LoadJSONL reads a collection from r, one extended JSON document per line.
// Blank lines are skipped.
func LoadJSONL(name string, r io.Reader) (*Collection, error) {
	c := NewCollection(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc bson.M
		if err := bson.UnmarshalExtJSON([]byte(line), false, &doc); err != nil {
			return nil, fmt.Errorf("memory: line %d: %w", n, err)
		}
		c.Insert(doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("memory: read %s: %w", name, err)
	}
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Insert stores copies of docs.
func (c *Collection) Insert(docs ...bson.M) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range docs {
		c.docs = append(c.docs, filter.Clone(doc))
	}
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Find starts a query matching f.
func (c *Collection) Find(f bson.M) *Query {
	return &Query{coll: c, filter: filter.Clone(f)}
}

// Query is an ordered query over a Collection.
type Query struct {
	coll   *Collection
	sort   types.Sort
	filter bson.M
	limit  int64
}

var _ paging.Query[bson.M] = (*Query)(nil)

// Source returns the collection name.
func (q *Query) Source() string { return q.coll.name }

func (q *Query) Sort() types.Sort     { return q.sort }
func (q *Query) SetSort(s types.Sort) { q.sort = s }
func (q *Query) Filter() bson.M       { return q.filter }
func (q *Query) SetFilter(f bson.M)   { q.filter = f }
func (q *Query) Limit() int64         { return q.limit }
func (q *Query) SetLimit(limit int64) { q.limit = limit }

// All returns copies of the matching documents in sort order. Documents
// that tie on every sort key keep their insertion order.
func (q *Query) All(ctx context.Context) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.coll.mu.RLock()
	docs := make([]bson.M, 0, len(q.coll.docs))
	for _, doc := range q.coll.docs {
		ok, err := Match(doc, q.filter)
		if err != nil {
			q.coll.mu.RUnlock()
			return nil, err
		}
		if ok {
			docs = append(docs, filter.Clone(doc))
		}
	}
	q.coll.mu.RUnlock()

	if len(q.sort) > 0 {
		slices.SortStableFunc(docs, func(a, b bson.M) int {
			return compareDocs(a, b, q.sort)
		})
	}
	if q.limit > 0 && int64(len(docs)) > q.limit {
		docs = docs[:q.limit]
	}
	return docs, nil
}

// Cursor returns a cursor over the result of All.
func (q *Query) Cursor(ctx context.Context) (paging.Cursor[bson.M], error) {
	docs, err := q.All(ctx)
	if err != nil {
		return nil, err
	}
	return &cursor{docs: docs, pos: -1}, nil
}

// compareDocs orders documents by sort. Missing fields sort as null.
func compareDocs(a, b bson.M, sort types.Sort) int {
	for _, f := range sort {
		va, _ := paging.DefaultFields(a, f.Field)
		vb, _ := paging.DefaultFields(b, f.Field)
		if c := types.CompareValues(va, vb); c != 0 {
			return c * int(f.Direction)
		}
	}
	return 0
}

type cursor struct {
	docs   []bson.M
	pos    int
	err    error
	closed bool
}

func (c *cursor) Next(ctx context.Context) bool {
	if c.closed || c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *cursor) Decode() (bson.M, error) {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return nil, fmt.Errorf("memory: cursor is not positioned on a document")
	}
	return c.docs[c.pos], nil
}

func (c *cursor) Err() error { return c.err }

func (c *cursor) Close(context.Context) error {
	c.closed = true
	return nil
}
