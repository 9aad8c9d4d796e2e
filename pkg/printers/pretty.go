// Package printers writes command results as colored tables or as JSON and
// YAML documents.
package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/document"
	"tableflip.dev/folio/pkg/importer"
)

// Printer renders results in one Format.
type Printer struct {
	Out    io.Writer
	Format Format
}

// New returns a Printer writing to color.Output.
func New(format Format) *Printer {
	return &Printer{Out: color.Output, Format: format}
}

func (p *Printer) out() io.Writer {
	if p.Out == nil {
		return color.Output
	}
	return p.Out
}

// Value writes v as JSON or YAML. Table printers fall back to JSON.
func (p *Printer) Value(v any) error {
	switch p.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(p.out())
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out(), string(b))
		return err
	}
}

func (p *Printer) structured() bool {
	return p.Format == FormatJSON || p.Format == FormatYAML
}

func (p *Printer) none(what string) {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprintf(p.out(), " no %s\n", what)
}

// Books prints a book listing.
func (p *Printer) Books(books []app.Book) error {
	if p.structured() {
		return p.Value(books)
	}
	if len(books) == 0 {
		p.none("books")
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Tab"), bold.Sprint("Name"), bold.Sprint("Page"), bold.Sprint("Path"))
	for _, b := range books {
		tab := ""
		if b.Open {
			tab = fmt.Sprint(b.Tab + 1)
		}
		if b.Active {
			tab = color.New(color.FgHiGreen, color.Bold).Sprint("*" + tab)
		}
		page := faint.Sprint("-")
		if b.LastPage != nil {
			page = fmt.Sprint(*b.LastPage + 1)
		}
		path := b.Path
		if path == "" {
			path = faint.Sprint("not imported")
		}
		tbl.AddRow(tab, b.Name, page, path)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.out(), tbl)
	return nil
}

// State prints the open tabs in order.
func (p *Printer) State(st app.State) error {
	if p.structured() {
		return p.Value(st)
	}
	if len(st.Tabs) == 0 {
		p.none("open books")
		return nil
	}
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(p.out(), "Open books")
	for i, name := range st.Tabs {
		marker := " "
		if i == st.Active {
			marker = color.New(color.FgHiGreen).Sprint("*")
		}
		_, _ = fmt.Fprintf(p.out(), "%s %2d  %s\n", marker, i+1, name)
	}
	return nil
}

// Reading prints where a book was opened.
func (p *Printer) Reading(r *app.Reading) error {
	if p.structured() {
		return p.Value(r)
	}
	_, _ = fmt.Fprintf(p.out(), "%s  tab %d", color.New(color.Bold).Sprint(r.Name), r.Tab+1)
	if r.Pages > 0 {
		_, _ = fmt.Fprintf(p.out(), "  page %d of %d", r.Resume+1, r.Pages)
	}
	_, _ = fmt.Fprintln(p.out())
	return nil
}

// Outline prints a table of contents, indenting nested entries.
func (p *Printer) Outline(items []document.OutlineItem) error {
	if p.structured() {
		return p.Value(items)
	}
	if len(items) == 0 {
		p.none("outline")
		return nil
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	p.outlineRows(tbl, items, 0)
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(p.out(), tbl)
	return nil
}

func (p *Printer) outlineRows(tbl *uitable.Table, items []document.OutlineItem, depth int) {
	faint := color.New(color.Faint)
	for _, it := range items {
		page := faint.Sprint("?")
		if it.Page >= 0 {
			page = fmt.Sprint(it.Page + 1)
		}
		tbl.AddRow(strings.Repeat("  ", depth)+it.Title, page)
		p.outlineRows(tbl, it.Children, depth+1)
	}
}

type importRow struct {
	Source string `json:"source" yaml:"source"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Imports prints the outcome of a batch import.
func (p *Printer) Imports(results []importer.Result) error {
	if p.structured() {
		rows := make([]importRow, 0, len(results))
		for _, r := range results {
			row := importRow{Source: r.Source, Name: r.Name}
			if r.Err != nil {
				row.Error = r.Err.Error()
			}
			rows = append(rows, row)
		}
		return p.Value(rows)
	}
	if len(results) == 0 {
		p.none("books to import")
		return nil
	}
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, r := range results {
		if r.Err != nil {
			tbl.AddRow(bad.Sprint("✗"), r.Source, r.Err.Error())
			continue
		}
		tbl.AddRow(ok.Sprint("✓"), r.Source, r.Name)
	}
	_, _ = fmt.Fprintln(p.out(), tbl)
	return nil
}

// Message prints a single line of feedback.
func (p *Printer) Message(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out(), format+"\n", args...)
}
