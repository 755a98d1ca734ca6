package paging

import (
	"context"
	"slices"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/filter"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/validator"
	"go.mongodb.org/mongo-driver/bson"
)

// Defaults applied when Options leave a value unset.
const (
	DefaultSortKey = "_id"
	DefaultLimit   = 10
)

// HookFunc runs before or after a paginator executes its query. A non-nil
// error aborts the request and is returned unchanged.
type HookFunc[T any] func(ctx context.Context, p *Paginator[T]) error

// Options configures a Paginator.
type Options[T any] struct {
	// PaginationFields are the fields written into the next token. They
	// must be the trailing keys of the sort and default to all of them.
	PaginationFields []string `validate:"omitempty,unique,dive,required"`

	// Next is the token returned with the previous page.
	Next string

	// BaseFilter is merged into every query but never written into
	// tokens, so it may change between pages.
	BaseFilter bson.M

	// StrictOrder requires PaginationFields in the exact sort order.
	StrictOrder bool

	// SortKey is the field sorted descending when the query has no sort.
	SortKey string

	// DefaultLimit is the page size of queries without a limit.
	DefaultLimit int64 `validate:"gte=0"`

	// MaxLimit caps the page size. Zero disables the cap.
	MaxLimit int64 `validate:"gte=0"`

	// Payload is carried unchanged in the next token. It defaults to
	// the payload of the previous token.
	Payload bson.M

	Fields        FieldFunc[T]  `validate:"-"`
	BeforeExecute []HookFunc[T] `validate:"-"`
	AfterExecute  []HookFunc[T] `validate:"-"`
	Logger        *log.Logger   `validate:"-"`
}

// normalize validates o and returns a copy with defaults applied.
func (o *Options[T]) normalize() (Options[T], error) {
	var out Options[T]
	if o != nil {
		out = *o
	}

	if err := validator.Struct(&out); err != nil {
		return out, ecode.Wrap(ecode.OptionsErr, validator.Join(validator.Messages(&out, err)), err)
	}

	out.PaginationFields = slices.Clone(out.PaginationFields)
	out.BaseFilter = filter.Clone(out.BaseFilter)
	out.Payload = filter.Clone(out.Payload)
	out.BeforeExecute = slices.Clone(out.BeforeExecute)
	out.AfterExecute = slices.Clone(out.AfterExecute)

	if out.SortKey == "" {
		out.SortKey = DefaultSortKey
	}
	if out.DefaultLimit == 0 {
		out.DefaultLimit = DefaultLimit
	}
	if out.Fields == nil {
		out.Fields = DefaultFields[T]
	}
	if out.Logger == nil {
		out.Logger = log.StandardLogger()
	}
	return out, nil
}

// pageSize returns the number of records a page holds for a requested limit.
func (o *Options[T]) pageSize(requested int64) int64 {
	size := o.DefaultLimit
	if requested != 0 {
		size = max(requested, 1)
	}
	if o.MaxLimit > 0 && size > o.MaxLimit {
		size = o.MaxLimit
	}
	return size
}
