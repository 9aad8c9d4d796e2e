package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	teaui "tableflip.dev/folio/pkg/runner/tea"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
folio ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, svc *app.Service) error {
				return teaui.Run(svc)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
