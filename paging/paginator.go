package paging

import (
	"context"
	"slices"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/filter"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/token"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Metadata describes the position of a page.
type Metadata struct {
	HasNext bool    `json:"has_next"`
	Next    *string `json:"next"`
}

// Result is one page of records.
type Result[T any] struct {
	Items    []T      `json:"items"`
	Metadata Metadata `json:"metadata"`
}

// Paginator turns a Query into one page of a keyset scan. A paginator
// serves a single request and executes at most once.
type Paginator[T any] struct {
	query  Query[T]
	opts   Options[T]
	logger *log.Logger

	previous         *token.Token
	paginationFields []string
	payload          bson.M

	before []HookFunc[T]
	after  []HookFunc[T]

	hasNext  bool
	lastItem T
	hasLast  bool
	tweaked  bool
	executed bool
}

// New creates a paginator over q. A malformed opts.Next fails with a
// decode error and a token issued for another source with an identity
// mismatch error.
func New[T any](q Query[T], opts *Options[T]) (*Paginator[T], error) {
	return NewContext(context.Background(), q, opts)
}

// NewContext is New with a request context for its log lines.
func NewContext[T any](ctx context.Context, q Query[T], opts *Options[T]) (*Paginator[T], error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	p := &Paginator[T]{
		query:            q,
		opts:             o,
		logger:           o.Logger,
		paginationFields: o.PaginationFields,
		payload:          o.Payload,
		before:           o.BeforeExecute,
		after:            o.AfterExecute,
	}

	if o.Next != "" {
		previous, err := token.Decode(o.Next)
		if err != nil {
			return nil, err
		}
		p.logger.EntryWithFields(ctx, logrus.Fields{log.PhaseKey: "init"}).
			Debugf("parse previous = %+v", previous)

		if !previous.MatchesSource(q.Source()) {
			p.logger.EntryWithFields(ctx, logrus.Fields{log.PhaseKey: "init"}).
				Debugf("compare source checksum: previous = %d, query = %d", previous.SourceChecksum, token.Checksum(q.Source()))
			return nil, ecode.New(ecode.IdentityMismatch, "")
		}

		p.previous = previous
		p.paginationFields = valueFields(previous)
		if len(p.payload) == 0 {
			p.payload = filter.Clone(previous.Payload)
		}
	}

	if p.payload == nil {
		p.payload = bson.M{}
	}

	p.logger.EntryWithFields(ctx, logrus.Fields{log.PhaseKey: "init"}).
		Debugf("source = %s, pagination fields = %v", q.Source(), p.paginationFields)

	return p, nil
}

// From creates a paginator over q resuming after the page that returned
// next. An empty next starts at the first page.
func From[T any](q Query[T], next string) (*Paginator[T], error) {
	return New(q, &Options[T]{Next: next})
}

// valueFields returns the keys of t's sort values in sort order.
func valueFields(t *token.Token) []string {
	fields := make([]string, 0, len(t.SortValues))
	for _, f := range t.SortDirection {
		if _, ok := t.SortValues[f.Field]; ok {
			fields = append(fields, f.Field)
		}
	}
	return fields
}

// BeforeExecute registers fn to run before the query executes.
func (p *Paginator[T]) BeforeExecute(fn HookFunc[T]) *Paginator[T] {
	p.before = append(p.before, fn)
	return p
}

// AfterExecute registers fn to run after the page has been trimmed.
func (p *Paginator[T]) AfterExecute(fn HookFunc[T]) *Paginator[T] {
	p.after = append(p.after, fn)
	return p
}

func runHooks[T any](ctx context.Context, p *Paginator[T], hooks []HookFunc[T]) error {
	for _, fn := range hooks {
		if err := fn(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Query returns the paginated query.
func (p *Paginator[T]) Query() Query[T] {
	return p.query
}

// HasNext reports whether another page follows. It is only meaningful
// after execution.
func (p *Paginator[T]) HasNext() bool {
	return p.hasNext
}

// LastItem returns the last record of the page and whether there is one.
func (p *Paginator[T]) LastItem() (T, bool) {
	return p.lastItem, p.hasLast
}

// SetLastItem replaces the record the next token resumes after.
func (p *Paginator[T]) SetLastItem(item T) {
	p.lastItem = item
	p.hasLast = true
}

// PaginationFields returns the fields written into the next token.
func (p *Paginator[T]) PaginationFields() []string {
	return slices.Clone(p.paginationFields)
}

// SetPayload replaces the payload carried by the next token.
func (p *Paginator[T]) SetPayload(payload bson.M) {
	p.payload = filter.Clone(payload)
	if p.payload == nil {
		p.payload = bson.M{}
	}
}

// PreviousToken returns the token the paginator resumed from, or nil on a
// first page.
func (p *Paginator[T]) PreviousToken() *token.Token {
	return p.previous
}

// PreviousString returns the text form of PreviousToken, or an empty string.
func (p *Paginator[T]) PreviousString() string {
	if p.previous == nil {
		return ""
	}
	return p.opts.Next
}

// NextToken builds the token of the following page from the current sort
// and the pagination fields of the last record.
func (p *Paginator[T]) NextToken() *token.Token {
	t := token.New(p.query.Source())
	t.SortDirection = p.query.Sort().Clone()
	t.Payload = filter.Clone(p.payload)

	if !p.hasLast {
		return t
	}
	for _, field := range p.paginationFields {
		if v, ok := p.opts.Fields(p.lastItem, field); ok {
			t.SortValues[field] = v
		}
	}
	return t
}

// NextString returns the text form of NextToken, or an empty string when
// there is no next page.
func (p *Paginator[T]) NextString() (string, error) {
	if !p.hasNext {
		return "", nil
	}
	return token.Encode(p.NextToken())
}

// Metadata returns the page metadata. Next is nil without a next page.
func (p *Paginator[T]) Metadata() (Metadata, error) {
	md := Metadata{HasNext: p.hasNext}
	if !p.hasNext {
		return md, nil
	}

	next, err := p.NextString()
	if err != nil {
		return md, err
	}
	md.Next = &next
	return md, nil
}
