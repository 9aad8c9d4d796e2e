// Package settings reads and changes persisted preferences.
package settings

import (
	"context"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/printers"
)

// AutoRestore prints the auto-restore preference, or sets it when Enable is
// non-nil.
type AutoRestore struct {
	App     *app.Service
	Printer *printers.Printer

	Enable *bool
}

func (a *AutoRestore) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Enable != nil {
		if err := a.App.Settings.SetAutoRestore(*a.Enable); err != nil {
			return err
		}
	}
	on := a.App.Settings.AutoRestore()
	if a.Printer.Format != printers.FormatTable {
		return a.Printer.Value(map[string]bool{"autoRestore": on})
	}
	state := "off"
	if on {
		state = "on"
	}
	a.Printer.Message("auto-restore is %s", state)
	return nil
}
