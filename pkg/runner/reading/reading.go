// Package reading runs the per-book commands: progress, cover, preload and
// outline.
package reading

import (
	"context"
	"fmt"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/library"
	"tableflip.dev/folio/pkg/printers"
)

// Progress prints the saved page of a book, or saves Page when set.
type Progress struct {
	App     *app.Service
	Printer *printers.Printer

	Name string
	Page *int
}

type progressView struct {
	Name  string `json:"name" yaml:"name"`
	Page  int    `json:"page" yaml:"page"`
	Saved bool   `json:"saved" yaml:"saved"`
}

func (p *Progress) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Page != nil {
		if err := p.App.SetPage(p.Name, *p.Page); err != nil {
			return err
		}
		p.App.Progress.Flush()
	} else if !p.App.Session.HasBook(p.Name) {
		return fmt.Errorf("%w: %q", library.ErrUnknownBook, p.Name)
	}

	page, ok := p.App.LastPage(p.Name)
	v := progressView{Name: p.Name, Page: page, Saved: ok}
	if p.Printer.Format != printers.FormatTable {
		return p.Printer.Value(v)
	}
	if !ok {
		p.Printer.Message("%s: no saved page", p.Name)
		return nil
	}
	p.Printer.Message("%s: page %d", p.Name, page+1)
	return nil
}

// Cover renders a book's cover if needed and prints its path.
type Cover struct {
	App     *app.Service
	Printer *printers.Printer

	Name    string
	Refresh bool
}

func (c *Cover) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Refresh {
		if err := c.App.Covers.Invalidate(c.Name); err != nil {
			return err
		}
	}
	path, err := c.App.Cover(c.Name)
	if err != nil {
		return err
	}
	if c.Printer.Format != printers.FormatTable {
		return c.Printer.Value(map[string]string{"name": c.Name, "cover": path})
	}
	c.Printer.Message("%s", path)
	return nil
}

// Preload warms Count pages of a book starting at the 0-based Start.
type Preload struct {
	App     *app.Service
	Printer *printers.Printer

	Name  string
	Start int
	Count int
}

func (p *Preload) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.App.Preload(p.Name, p.Start, p.Count); err != nil {
		return err
	}
	p.Printer.Message("preloaded %s from page %d", p.Name, p.Start+1)
	return nil
}

// Outline prints a book's table of contents.
type Outline struct {
	App     *app.Service
	Printer *printers.Printer

	Name string
}

func (o *Outline) Do(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	items, err := o.App.Outline(o.Name)
	if err != nil {
		return err
	}
	return o.Printer.Outline(items)
}
