package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/runner/settings"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addAutoRestore(cmd)
	topLevel.AddCommand(cmd)
}

func addAutoRestore(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:       "auto-restore [on|off]",
		Short:     "Show or set whether open tabs are restored on startup.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enable *bool
			if len(args) == 1 {
				var on bool
				switch strings.ToLower(args[0]) {
				case "on", "true", "yes":
					on = true
				case "off", "false", "no":
				default:
					return fmt.Errorf("invalid value %q: want on or off", args[0])
				}
				enable = &on
			}
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				a := settings.AutoRestore{App: svc, Printer: p, Enable: enable}
				return a.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
