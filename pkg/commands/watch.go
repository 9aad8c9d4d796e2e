package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the open tabs whenever they change.",
		Long: `Print the open tabs whenever they change, including changes made by other
folio processes when the diskv storage backend is used. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				w := watch.Watch{App: svc, Printer: p, Log: slog.Default().With("component", "watch")}
				return w.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
