package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/folio/pkg/commands/options"
)

var (
	lo = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "folio",
		Short: base.Wrap80("A PDF library with tabs, reading progress and covers."),
		Long: base.Wrap80("folio keeps a catalog of imported PDFs, up to ten open books as tabs, " +
			"the last page read in each book and a cache of rendered covers. " +
			"State lives under FOLIO_PATH, ~/.folio by default."),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lo.Setup("")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddLogArgs(cmd, lo)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addImport(topLevel)
	addList(topLevel)
	addOpen(topLevel)
	addClose(topLevel)
	addSwitch(topLevel)
	addTabs(topLevel)
	addProgress(topLevel)
	addCover(topLevel)
	addPreload(topLevel)
	addOutline(topLevel)
	addRemove(topLevel)
	addClear(topLevel)
	addSettings(topLevel)
	addWatch(topLevel)
	addInfo(topLevel)
	addUI(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
}
