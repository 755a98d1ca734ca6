package paging

import (
	"context"

	"github.com/ncobase/keyset/log"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Stream yields the records of a page one at a time. The overfetched
// record is never yielded; reaching it ends the stream and marks the
// paginator as having a next page.
type Stream[T any] struct {
	p      *Paginator[T]
	cursor Cursor[T]
	span   trace.Span
	limit  int64

	index int64
	item  T
	err   error
	done  bool
}

// Stream runs the query and returns a stream over the page. The after
// hooks run once the stream is exhausted.
func (p *Paginator[T]) Stream(ctx context.Context) (*Stream[T], error) {
	ctx, span := p.startSpan(ctx, "paging.stream")

	if err := p.begin(ctx); err != nil {
		endSpan(span, err)
		return nil, err
	}

	limit := p.query.Limit()
	span.SetAttributes(attribute.Int64("paging.limit", limit))

	cursor, err := p.query.Cursor(ctx)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	return &Stream[T]{p: p, cursor: cursor, span: span, limit: limit}, nil
}

// Next advances to the next record. It returns false when the page is
// exhausted or an error occurred.
func (s *Stream[T]) Next(ctx context.Context) bool {
	if s.done {
		return false
	}

	if !s.cursor.Next(ctx) {
		s.err = s.cursor.Err()
		s.finish(ctx, true)
		return false
	}

	if s.index+1 == s.limit {
		s.p.hasNext = true
		s.p.logger.EntryWithFields(ctx, logrus.Fields{log.PhaseKey: "stream"}).
			Debugf("has next: cutoff_idx = %d", s.index)
		s.finish(ctx, true)
		return false
	}

	item, err := s.cursor.Decode()
	if err != nil {
		s.err = err
		s.finish(ctx, true)
		return false
	}

	s.index++
	s.item = item
	s.p.SetLastItem(item)
	return true
}

// Item returns the current record.
func (s *Stream[T]) Item() T {
	return s.item
}

// Err returns the first error of the stream, including after hook errors.
func (s *Stream[T]) Err() error {
	return s.err
}

// Close releases the cursor. Closing before the stream is exhausted skips
// the after hooks.
func (s *Stream[T]) Close(ctx context.Context) error {
	if !s.done {
		s.finish(ctx, false)
	}
	return s.err
}

// All drains the stream.
func (s *Stream[T]) All(ctx context.Context) ([]T, error) {
	items := []T{}
	for s.Next(ctx) {
		items = append(items, s.Item())
	}
	if err := s.Close(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Stream[T]) finish(ctx context.Context, exhausted bool) {
	s.done = true

	if err := s.cursor.Close(ctx); err != nil && s.err == nil {
		s.err = err
	}
	if exhausted && s.err == nil {
		s.err = runHooks(ctx, s.p, s.p.after)
	}

	s.span.SetAttributes(attribute.Bool("paging.has_next", s.p.hasNext), attribute.Int64("paging.items", s.index))
	endSpan(s.span, s.err)
}
