package options

import (
	"github.com/spf13/cobra"
)

// ImportOptions
type ImportOptions struct {
	Dir string
}

func AddImportArgs(cmd *cobra.Command, o *ImportOptions) {
	cmd.Flags().StringVarP(&o.Dir, "dir", "d", "",
		"Import every PDF directly inside this directory.")
}

// ListOptions
type ListOptions struct {
	All bool
}

func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	cmd.Flags().BoolVarP(&o.All, "all", "a", false,
		"List every book in the catalog, not only open ones.")
}

// PreloadOptions
type PreloadOptions struct {
	Page  int
	Count int
}

func AddPreloadArgs(cmd *cobra.Command, o *PreloadOptions) {
	cmd.Flags().IntVar(&o.Page, "page", 0,
		"1-based page to start from. Defaults to the saved page.")
	cmd.Flags().IntVarP(&o.Count, "count", "n", 3,
		"Number of pages to warm.")
}

// CoverOptions
type CoverOptions struct {
	Refresh bool
}

func AddCoverArgs(cmd *cobra.Command, o *CoverOptions) {
	cmd.Flags().BoolVar(&o.Refresh, "refresh", false,
		"Render the cover again even if one is cached.")
}
