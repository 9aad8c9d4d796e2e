package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/printers"
	"tableflip.dev/folio/pkg/runner/reading"
)

func addProgress(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "progress <book> [page]",
		Short: "Show or save the last page read in a book.",
		Long: `Show the last page read in a book. With a page number, save it instead.

Page numbers are 1-based here and stored 0-based.`,
		Example: `
folio progress dune.pdf
folio progress dune.pdf 42
`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: firstBookCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			var page *int
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid page %q: want a number from 1", args[1])
				}
				n--
				page = &n
			}
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				r := reading.Progress{App: svc, Printer: p, Name: args[0], Page: page}
				return r.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addCover(topLevel *cobra.Command) {
	co := &options.CoverOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "cover <book>",
		Short: "Print the path of a book's cover, rendering it if needed.",
		Example: `
folio cover dune.pdf
folio cover dune.pdf --refresh
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstBookCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				c := reading.Cover{App: svc, Printer: p, Name: args[0], Refresh: co.Refresh}
				return c.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddCoverArgs(cmd, co)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addPreload(topLevel *cobra.Command) {
	po := &options.PreloadOptions{}

	cmd := &cobra.Command{
		Use:   "preload <book>",
		Short: "Warm a range of pages of a book.",
		Example: `
folio preload dune.pdf
folio preload dune.pdf --page 10 -n 5
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstBookCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if po.Page < 0 || po.Count < 1 {
				return fmt.Errorf("invalid range: page %d, count %d", po.Page, po.Count)
			}
			return withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				start := po.Page - 1
				if po.Page == 0 {
					start, _ = svc.LastPage(args[0])
				}
				r := reading.Preload{
					App:     svc,
					Printer: printers.New(printers.FormatTable),
					Name:    args[0],
					Start:   start,
					Count:   po.Count,
				}
				return r.Do(ctx)
			})
		},
	}

	options.AddPreloadArgs(cmd, po)
	topLevel.AddCommand(cmd)
}

func addOutline(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:               "outline <book>",
		Aliases:           []string{"toc"},
		Short:             "Print a book's table of contents.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstBookCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				o := reading.Outline{App: svc, Printer: p, Name: args[0]}
				return o.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
