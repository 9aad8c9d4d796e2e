package commands

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/config"
	"tableflip.dev/folio/pkg/library"
)

// catalogNames reads the catalog straight from the store without starting a
// session, so completing never writes state.
func catalogNames() []string {
	cfg, err := config.Load()
	if err != nil {
		return nil
	}
	store, closer, err := app.OpenStore(cfg, slog.Default())
	if err != nil {
		return nil
	}
	defer func() { _ = closer.Close() }()

	c := library.New()
	c.Load(store)
	return c.Names()
}

// bookCompletions completes catalog names not already on the command line.
func bookCompletions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, name := range catalogNames() {
		if strings.HasPrefix(name, toComplete) && !slices.Contains(args, name) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// firstBookCompletion completes only the first argument.
func firstBookCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return bookCompletions(cmd, args, toComplete)
}
