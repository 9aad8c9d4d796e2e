package printers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/document"
	"tableflip.dev/folio/pkg/importer"
)

func init() {
	color.NoColor = true
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"table": FormatTable,
		"JSON":  FormatJSON,
		"yml":   FormatYAML,
		" yaml": FormatYAML,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("expected xml to be rejected")
	}
	if got, err := ParseFormat(""); err != nil || got != DefaultFormat() {
		t.Errorf("expected empty to pick the default, got %q %v", got, err)
	}
}

func books() []app.Book {
	page := 4
	return []app.Book{
		{Name: "a.pdf", Path: "/lib/a.pdf", Open: true, Tab: 0, Active: true, LastPage: &page},
		{Name: "b.pdf", Tab: -1},
	}
}

func TestBooksTable(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: FormatTable}
	if err := p.Books(books()); err != nil {
		t.Fatalf("books: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Name", "*1", "a.pdf", "5", "/lib/a.pdf", "not imported"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestBooksJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: FormatJSON}
	if err := p.Books(books()); err != nil {
		t.Fatalf("books: %v", err)
	}
	var got []app.Book
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if len(got) != 2 || got[0].LastPage == nil || *got[0].LastPage != 4 || got[1].LastPage != nil {
		t.Fatalf("unexpected books %+v", got)
	}
}

func TestStateYAML(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: FormatYAML}
	if err := p.State(app.State{Tabs: []string{"a.pdf", "b.pdf"}, Active: 1, Books: 3}); err != nil {
		t.Fatalf("state: %v", err)
	}
	var got app.State
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Active != 1 || len(got.Tabs) != 2 || got.Books != 3 {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestEmptyState(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: FormatTable}
	_ = p.State(app.State{Active: -1})
	if !strings.Contains(buf.String(), "no open books") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestOutlineIndentsChildren(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: FormatTable}
	items := []document.OutlineItem{{Title: "One", Page: 0, Children: []document.OutlineItem{{Title: "Sub", Page: -1}}}}
	if err := p.Outline(items); err != nil {
		t.Fatalf("outline: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "  Sub") || !strings.Contains(out, "?") {
		t.Fatalf("unexpected outline %q", out)
	}
}

func TestImportsJSONCarriesErrors(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: FormatJSON}
	results := []importer.Result{
		{Source: "/in/a.pdf", Name: "a.pdf"},
		{Source: "/in/b.pdf", Err: errors.New("boom")},
	}
	if err := p.Imports(results); err != nil {
		t.Fatalf("imports: %v", err)
	}
	var rows []importRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rows[0].Error != "" || rows[1].Error != "boom" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
