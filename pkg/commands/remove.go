package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/printers"
	"tableflip.dev/folio/pkg/runner/books"
)

func addRemove(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "remove <book>...",
		Aliases: []string{"rm"},
		Short:   "Forget books along with their progress and covers.",
		Long: `Forget books: close their tabs and drop their saved page and cached
cover. The imported files stay in the library directory.`,
		Example: `
folio remove dune.pdf
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: bookCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				r := books.Remove{App: svc, Printer: p, Names: args}
				return r.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addClear(topLevel *cobra.Command) {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every book, tab and cover.",
		Long: `Forget the whole catalog, close every tab and delete every cached cover.
Imported files and saved pages stay on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				c := books.Clear{App: svc, Printer: printers.New(printers.FormatTable)}
				return c.Do(ctx)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the library.")
	topLevel.AddCommand(cmd)
}
