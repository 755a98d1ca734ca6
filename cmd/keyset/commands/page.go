package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ncobase/keyset/paging"
	"github.com/ncobase/keyset/types"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

type pageFlags struct {
	collection string
	sort       string
	limit      int64
	next       string
	filter     string
	fields     []string
}

func newPageCommand(global *globalFlags) *cobra.Command {
	flags := &pageFlags{}

	cmd := &cobra.Command{
		Use:   "page",
		Args:  cobra.NoArgs,
		Short: "Print one page of a collection as JSON",
		Example: `  keyset page --collection posts --sort -createdAt,-_id --limit 20
  keyset page --collection posts --next <token>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, global)
			if err != nil {
				return err
			}
			defer a.Close()

			f := bson.M{}
			if flags.filter != "" {
				if err := bson.UnmarshalExtJSON([]byte(flags.filter), false, &f); err != nil {
					return fmt.Errorf("invalid filter: %w", err)
				}
			}

			sort, err := types.ParseSort(flags.sort)
			if err != nil {
				return err
			}

			q, err := a.src.Query(ctx, flags.collection, f)
			if err != nil {
				return err
			}
			q.SetSort(sort)
			q.SetLimit(flags.limit)

			conf := a.conf.Paging
			p, err := paging.NewContext(ctx, q, &paging.Options[bson.M]{
				PaginationFields: flags.fields,
				Next:             strings.TrimSpace(flags.next),
				StrictOrder:      conf.StrictOrder,
				SortKey:          conf.SortKey,
				DefaultLimit:     int64(conf.DefaultLimit),
				MaxLimit:         int64(conf.MaxLimit),
			})
			if err != nil {
				return err
			}

			res, err := p.Exec(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection to page through")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort expression, e.g. -createdAt,-_id")
	cmd.Flags().Int64Var(&flags.limit, "limit", 0, "page size (default from config)")
	cmd.Flags().StringVar(&flags.next, "next", "", "token of the previous page")
	cmd.Flags().StringVar(&flags.filter, "filter", "", "extended JSON filter")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "pagination fields (default: all sort keys)")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}
