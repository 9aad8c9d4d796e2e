package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/runner/books"
)

func addImport(topLevel *cobra.Command) {
	io := &options.ImportOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "import [file.pdf...]",
		Short: "Copy PDFs into the library.",
		Long: `Copy PDFs into the library directory and add them to the catalog.

A book is named after its file name. Importing a name that is already in the
catalog does nothing. Covers are rendered in the background.`,
		Example: `
folio import ~/Downloads/dune.pdf
folio import --dir ~/Downloads
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && io.Dir == "" {
				return errors.New("nothing to import: pass files or --dir")
			}
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				i := books.Import{
					App:     svc,
					Printer: p,
					Sources: args,
					Dir:     io.Dir,
				}
				return i.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddImportArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
