// Package books runs the catalog commands: import, list, remove and clear.
package books

import (
	"context"
	"errors"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/importer"
	"tableflip.dev/folio/pkg/printers"
)

// Import copies PDFs into the library.
type Import struct {
	App     *app.Service
	Printer *printers.Printer

	Sources []string
	Dir     string
}

// Do imports every source and then every PDF in Dir. A failed source does not
// stop the rest; the first failure is returned after all results print.
func (i *Import) Do(ctx context.Context) error {
	if len(i.Sources) == 0 && i.Dir == "" {
		return errors.New("nothing to import: pass files or --dir")
	}

	results := make([]importer.Result, 0, len(i.Sources))
	for _, src := range i.Sources {
		name, err := i.App.Import(ctx, src)
		results = append(results, importer.Result{Source: src, Name: name, Err: err})
	}
	if i.Dir != "" {
		more, err := i.App.ImportDir(ctx, i.Dir)
		if err != nil {
			return err
		}
		results = append(results, more...)
	}

	if err := i.Printer.Imports(results); err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// List prints the open books, or the whole catalog.
type List struct {
	App     *app.Service
	Printer *printers.Printer

	All bool
}

func (l *List) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.Printer.Books(l.App.Books(l.All))
}

// Remove forgets books by name.
type Remove struct {
	App     *app.Service
	Printer *printers.Printer

	Names []string
}

func (r *Remove) Do(ctx context.Context) error {
	var errs []error
	for _, name := range r.Names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.App.Remove(name); err != nil {
			errs = append(errs, err)
			continue
		}
		r.Printer.Message("removed %s", name)
	}
	return errors.Join(errs...)
}

// Clear forgets the whole library.
type Clear struct {
	App     *app.Service
	Printer *printers.Printer
}

func (c *Clear) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.App.ClearAll(); err != nil {
		return err
	}
	c.Printer.Message("cleared the catalog, open tabs and covers")
	return nil
}
