package mongodb

import (
	"context"

	"github.com/ncobase/keyset/filter"
	"github.com/ncobase/keyset/paging"
	"github.com/ncobase/keyset/types"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document is a raw MongoDB document.
type Document = bson.M

// QueryOption configures a Query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	breaker    *gobreaker.CircuitBreaker
	projection any
}

// WithBreaker runs every find through cb. A nil cb is ignored.
func WithBreaker(cb *gobreaker.CircuitBreaker) QueryOption {
	return func(o *queryOptions) { o.breaker = cb }
}

// WithProjection limits the returned fields. The pagination fields must
// stay included.
func WithProjection(projection any) QueryOption {
	return func(o *queryOptions) { o.projection = projection }
}

// Query is a find on a MongoDB collection decoding records into T.
type Query[T any] struct {
	coll   *mongo.Collection
	sort   types.Sort
	filter bson.M
	limit  int64
	opts   queryOptions
}

var _ paging.Query[Document] = (*Query[Document])(nil)

// NewQuery starts a find on coll matching f.
func NewQuery[T any](coll *mongo.Collection, f bson.M, opts ...QueryOption) *Query[T] {
	q := &Query[T]{coll: coll, filter: filter.Clone(f)}
	for _, opt := range opts {
		opt(&q.opts)
	}
	return q
}

// Source returns the collection name.
func (q *Query[T]) Source() string { return q.coll.Name() }

func (q *Query[T]) Sort() types.Sort     { return q.sort }
func (q *Query[T]) SetSort(s types.Sort) { q.sort = s }
func (q *Query[T]) Filter() bson.M       { return q.filter }
func (q *Query[T]) SetFilter(f bson.M)   { q.filter = f }
func (q *Query[T]) Limit() int64         { return q.limit }
func (q *Query[T]) SetLimit(n int64)     { q.limit = n }

func (q *Query[T]) findOptions() *options.FindOptions {
	opts := options.Find()
	if len(q.sort) > 0 {
		opts.SetSort(q.sort.D())
	}
	if q.limit > 0 {
		opts.SetLimit(q.limit)
	}
	if q.opts.projection != nil {
		opts.SetProjection(q.opts.projection)
	}
	return opts
}

func (q *Query[T]) where() bson.M {
	if q.filter == nil {
		return bson.M{}
	}
	return q.filter
}

func (q *Query[T]) find(ctx context.Context) (*mongo.Cursor, error) {
	if q.opts.breaker == nil {
		return q.coll.Find(ctx, q.where(), q.findOptions())
	}

	res, err := q.opts.breaker.Execute(func() (any, error) {
		return q.coll.Find(ctx, q.where(), q.findOptions())
	})
	if err != nil {
		return nil, err
	}
	return res.(*mongo.Cursor), nil
}

// All runs the find and decodes every record.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	cur, err := q.find(ctx)
	if err != nil {
		return nil, err
	}

	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Cursor runs the find and returns a cursor decoding records into T.
func (q *Query[T]) Cursor(ctx context.Context) (paging.Cursor[T], error) {
	cur, err := q.find(ctx)
	if err != nil {
		return nil, err
	}
	return &cursor[T]{cur: cur}, nil
}

type cursor[T any] struct {
	cur *mongo.Cursor
}

func (c *cursor[T]) Next(ctx context.Context) bool { return c.cur.Next(ctx) }
func (c *cursor[T]) Err() error                    { return c.cur.Err() }

func (c *cursor[T]) Decode() (T, error) {
	var item T
	err := c.cur.Decode(&item)
	return item, err
}

func (c *cursor[T]) Close(ctx context.Context) error { return c.cur.Close(ctx) }
