package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the library and where it is stored.",
		Example: `
folio info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				s := info.Info{App: svc}
				return s.Do(ctx)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
