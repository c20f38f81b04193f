package cli

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
	"github.com/spf13/cobra"
)

func newListCmd(rt *runtime, kind jubsdk.Kind) *cobra.Command {
	var (
		fields      []string
		limit, skip int
		pages       int
	)

	short := "Run a structured directory query (key:value terms)"
	if kind == jubsdk.KindSearch {
		short = "Search the directory for free text"
	}

	cmd := &cobra.Command{
		Use:   string(kind) + " <expression>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			if err := rt.requireToken(); err != nil {
				return err
			}
			if pages < 0 {
				return fmt.Errorf("--pages must not be negative")
			}

			opts := jubsdk.RequestOptions{Fields: fields}
			if cmd.Flags().Changed("limit") {
				opts.Limit = jubsdk.Int(limit)
			}
			if cmd.Flags().Changed("skip") {
				opts.Skip = jubsdk.Int(skip)
			}

			items, err := collect(cmd, rt.session, kind, strings.Join(args, " "), opts, pages)
			if err != nil {
				return err
			}
			return rt.print(cmd, items)
		}),
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&fields, "fields", "f", nil, "Fields to return (comma separated)")
	flags.IntVarP(&limit, "limit", "l", 0, "Results per page (server default when unset)")
	flags.IntVar(&skip, "skip", 0, "Results to skip before the first page")
	flags.IntVar(&pages, "pages", 1, "Pages to fetch; 0 follows every next link")
	return cmd
}

// collect fetches up to pages pages of results, all of them when pages is 0.
func collect(cmd *cobra.Command, s *jubsdk.Session, kind jubsdk.Kind, expr string, opts jubsdk.RequestOptions, pages int) ([]any, error) {
	ctx := cmd.Context()

	var (
		page *jubsdk.PagedResult
		err  error
	)
	if kind == jubsdk.KindSearch {
		page, err = s.Search(ctx, expr, opts)
	} else {
		page, err = s.Query(ctx, expr, opts)
	}
	if err != nil {
		return nil, err
	}

	items := page.Data()
	for n := 1; (pages == 0 || n < pages) && page.HasNext(); n++ {
		if page, err = page.Next(ctx); err != nil {
			return nil, err
		}
		items = append(items, page.Data()...)
	}
	return items, nil
}
