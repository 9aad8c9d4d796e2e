// Package tabs runs the commands that change the open books.
package tabs

import (
	"context"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/printers"
)

// Open opens or focuses a book.
type Open struct {
	App     *app.Service
	Printer *printers.Printer

	Name string
}

// Do opens the tab. When the document cannot be read the tab stays open and
// the read error is returned after printing it.
func (o *Open) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := o.App.Open(o.Name)
	if r != nil {
		if perr := o.Printer.Reading(r); perr != nil {
			return perr
		}
	}
	return err
}

// Close closes the tab at a 0-based Index.
type Close struct {
	App     *app.Service
	Printer *printers.Printer

	Index int
}

func (c *Close) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.App.CloseTab(c.Index); err != nil {
		return err
	}
	return c.Printer.State(c.App.State())
}

// Switch activates the tab at a 0-based Index.
type Switch struct {
	App     *app.Service
	Printer *printers.Printer

	Index int
}

func (s *Switch) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.App.SwitchTab(s.Index); err != nil {
		return err
	}
	return s.Printer.State(s.App.State())
}

// Show prints the open tabs.
type Show struct {
	App     *app.Service
	Printer *printers.Printer
}

func (s *Show) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Printer.State(s.App.State())
}
