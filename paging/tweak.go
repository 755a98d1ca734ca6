package paging

import (
	"context"
	"strings"

	"github.com/ncobase/keyset/ecode"
	"github.com/ncobase/keyset/filter"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/types"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Tweak rewrites the query for the requested page: it restores the sort of
// the previous token, restricts the filter to records after the previous
// page, applies defaults and asks for one record more than the page holds.
// Only the first call has an effect.
func (p *Paginator[T]) Tweak(ctx context.Context) error {
	if p.tweaked {
		return nil
	}

	entry := p.logger.EntryWithFields(ctx, logrus.Fields{log.PhaseKey: "tweak"})

	sort := p.query.Sort().Clone()
	where := filter.Clone(p.query.Filter())

	if prev := p.previous; prev != nil {
		if !prev.SortDirection.IsEmpty() {
			sort = prev.SortDirection.Clone()
			entry.Debugf("set from previous [sort] = %s", sort)
		}
		if len(prev.SortValues) > 0 {
			rng := filter.Range(sort, prev.SortValues)
			entry.Debugf("range conditions: sort = %s, values = %v, result = %v", sort, prev.SortValues, rng)
			where = filter.Merge(where, rng)
		}
	}

	if !filter.IsEmpty(p.opts.BaseFilter) {
		where = filter.Merge(where, p.opts.BaseFilter)
	}
	if where == nil {
		where = bson.M{}
	}

	if sort.IsEmpty() {
		sort = types.SortBy(p.opts.SortKey, types.Descending)
		entry.Debugf("set default [sort] = %s", sort)
	}

	if len(p.paginationFields) == 0 {
		p.paginationFields = sort.Keys()
		entry.Debugf("set default [paginationFields] = %v", p.paginationFields)
	}

	if !sort.HasSuffix(p.paginationFields, p.opts.StrictOrder) {
		return ecode.Newf(ecode.PaginationFieldsErr,
			"The query sort keys must end with %q.", strings.Join(p.paginationFields, ", "))
	}

	limit := p.opts.pageSize(p.query.Limit()) + 1

	p.query.SetSort(sort)
	p.query.SetFilter(where)
	p.query.SetLimit(limit)
	p.tweaked = true

	entry.Debugf("set sort = %s, limit = %d, filter = %v", sort, limit, where)
	return nil
}
