package paging

import (
	"context"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/log"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ncobase/keyset/paging"

// ErrAlreadyExecuted is returned when a paginator is executed twice.
var ErrAlreadyExecuted = ecode.New(ecode.AlreadyExecuted, "")

func (p *Paginator[T]) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithAttributes(attribute.String("paging.source", p.query.Source())))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// begin marks the paginator executed, runs the before hooks and tweaks
// the query.
func (p *Paginator[T]) begin(ctx context.Context) error {
	if p.executed {
		return ErrAlreadyExecuted
	}
	p.executed = true

	if err := runHooks(ctx, p, p.before); err != nil {
		return err
	}
	return p.Tweak(ctx)
}

// Exec runs the query and returns the page. Hook and query errors are
// returned unchanged.
func (p *Paginator[T]) Exec(ctx context.Context) (res *Result[T], err error) {
	ctx, span := p.startSpan(ctx, "paging.exec")
	defer func() { endSpan(span, err) }()

	if err := p.begin(ctx); err != nil {
		return nil, err
	}

	limit := p.query.Limit()
	span.SetAttributes(attribute.Int64("paging.limit", limit))

	items, err := p.query.All(ctx)
	if err != nil {
		return nil, err
	}
	items = p.trim(items, limit)

	entry := p.logger.EntryWithFields(ctx, logrus.Fields{log.PhaseKey: "exec"})
	if p.hasNext {
		entry.Debugf("has next: cutoff_idx = %d", limit-1)
	}
	span.SetAttributes(attribute.Bool("paging.has_next", p.hasNext), attribute.Int("paging.items", len(items)))

	if err := runHooks(ctx, p, p.after); err != nil {
		return nil, err
	}

	md, err := p.Metadata()
	if err != nil {
		return nil, err
	}
	return &Result[T]{Items: items, Metadata: md}, nil
}

// trim drops the overfetched record and records the last real one.
func (p *Paginator[T]) trim(items []T, limit int64) []T {
	if items == nil {
		items = []T{}
	}
	if limit > 0 && int64(len(items)) >= limit {
		items = items[:limit-1]
		p.hasNext = true
	}
	if n := len(items); n > 0 {
		p.SetLastItem(items[n-1])
	}
	return items
}
