package info

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/folio/pkg/app"
)

// Info prints where folio keeps its state and a summary of the library.
type Info struct {
	App *app.Service
}

func (n *Info) Do(ctx context.Context) error {
	if n.App == nil {
		return fmt.Errorf("failed to open the library")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if override := os.Getenv("FOLIO_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(color.Output, "FOLIO_CONFIG_PATH found on env, reading .folio.yaml from", override)
	} else {
		_, _ = fmt.Fprintln(color.Output, "FOLIO_CONFIG_PATH env var not set")
	}

	cfg := n.App.Config
	st := n.App.State()
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("path"), cfg.BasePath())
	tbl.AddRow(bold.Sprint("storage"), string(cfg.Backend()))
	tbl.AddRow(bold.Sprint("books"), cfg.BookDir())
	tbl.AddRow(bold.Sprint("covers"), cfg.CoverDir())
	tbl.AddRow(bold.Sprint("catalog"), st.Books)
	tbl.AddRow(bold.Sprint("open"), len(st.Tabs))
	tbl.AddRow(bold.Sprint("auto-restore"), n.App.Settings.AutoRestore())
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(color.Output, tbl)
	return nil
}
