package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/commands/options"
	"tableflip.dev/folio/pkg/runner/tabs"
)

// tabIndex turns a 1-based tab number as printed by `folio tabs` into an
// index.
func tabIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid tab %q: want a number from 1", arg)
	}
	return n - 1, nil
}

func addOpen(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "open <book>",
		Short: "Open a book in a new tab, or focus its tab.",
		Long: `Open a book in a new tab, or focus its tab if it is already open.

At most ten books can be open. The pages around the saved page are loaded
ahead of time.`,
		Example: `
folio open dune.pdf
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: firstBookCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				o := tabs.Open{App: svc, Printer: p, Name: args[0]}
				return o.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addClose(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "close <tab>",
		Short: "Close the tab with the given number.",
		Example: `
folio close 2
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := tabIndex(args[0])
			if err != nil {
				return err
			}
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				c := tabs.Close{App: svc, Printer: p, Index: index}
				return c.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addSwitch(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "switch <tab>",
		Short: "Make the tab with the given number the active one.",
		Example: `
folio switch 1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := tabIndex(args[0])
			if err != nil {
				return err
			}
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				s := tabs.Switch{App: svc, Printer: p, Index: index}
				return s.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTabs(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Show the open tabs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := oo.Printer()
			if err != nil {
				return err
			}
			err = withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				s := tabs.Show{App: svc, Printer: p}
				return s.Do(ctx)
			})
			return oo.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
