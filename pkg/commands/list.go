package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/runner/books"
)

func addList(topLevel *cobra.Command) {
	lso := &options.ListOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open books, or the whole catalog with --all.",
		Example: `
folio list
folio list --all -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				l := books.List{App: svc, Printer: p, All: lso.All}
				return l.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddListArgs(cmd, lso)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
