package app

import (
	"context"
	"fmt"

	"tableflip.dev/folio/pkg/document"
	"tableflip.dev/folio/pkg/importer"
	"tableflip.dev/folio/pkg/library"
	"tableflip.dev/folio/pkg/session"
)

// Book describes one catalog entry as front ends show it.
type Book struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Open     bool   `json:"open" yaml:"open"`
	Tab      int    `json:"tab" yaml:"tab"`
	Active   bool   `json:"active" yaml:"active"`
	LastPage *int   `json:"lastPage,omitempty" yaml:"lastPage,omitempty"`
	Cover    string `json:"cover,omitempty" yaml:"cover,omitempty"`
}

// State is a snapshot of the open tabs.
type State struct {
	Tabs   []string `json:"tabs" yaml:"tabs"`
	Active int      `json:"active" yaml:"active"`
	Books  int      `json:"books" yaml:"books"`
}

// Reading is what a front end needs to show a freshly opened book.
type Reading struct {
	Book
	Pages int `json:"pages" yaml:"pages"`
	// Resume is the 0-based page to show first.
	Resume int `json:"resume" yaml:"resume"`
}

// Import copies source into the library and returns its name.
func (s *Service) Import(ctx context.Context, source string) (string, error) {
	return s.Importer.ImportBook(ctx, source)
}

// ImportDir imports every PDF directly inside dir.
func (s *Service) ImportDir(ctx context.Context, dir string) ([]importer.Result, error) {
	return s.Importer.ImportDir(ctx, dir)
}

// Open focuses or opens a tab for name, then opens the document and warms
// the pages around the resume position. A document that cannot be read
// still gets its tab; the error reports the read failure.
func (s *Service) Open(name string) (*Reading, error) {
	if err := s.Session.OpenBook(name); err != nil {
		return nil, err
	}
	r, err := s.Reading(name)
	if err != nil {
		return r, err
	}
	if r.Path != "" {
		s.Documents.PreloadPages(r.Path, r.Resume, preloadWindow)
	}
	return r, nil
}

// Reading describes name for display without changing the session. The
// resume page is clamped to the document's last page.
func (s *Service) Reading(name string) (*Reading, error) {
	r := &Reading{Book: s.describe(name, s.Session.GetOpenBooks(), s.Session.GetCurrentIndex())}
	if page, ok := s.Progress.GetLastReadPage(name); ok {
		r.Resume = page
	}
	if r.Path == "" {
		return r, nil
	}
	n, err := s.Documents.PageCount(r.Path)
	if err != nil {
		return r, err
	}
	r.Pages = n
	if r.Resume >= n {
		r.Resume = max(n-1, 0)
	}
	return r, nil
}

// CloseTab closes the tab at index.
func (s *Service) CloseTab(index int) error {
	if !s.Session.CloseBook(index) {
		return fmt.Errorf("%w: %d", session.ErrInvalidIndex, index)
	}
	return nil
}

// SwitchTab activates the tab at index.
func (s *Service) SwitchTab(index int) error {
	if !s.Session.SwitchToBook(index) {
		return fmt.Errorf("%w: %d", session.ErrInvalidIndex, index)
	}
	return nil
}

// State returns the current tabs.
func (s *Service) State() State {
	return State{
		Tabs:   s.Session.GetOpenBooks(),
		Active: s.Session.GetCurrentIndex(),
		Books:  len(s.Session.GetAllBooks()),
	}
}

// Books lists the open tabs, or the whole catalog when all is set.
func (s *Service) Books(all bool) []Book {
	tabs := s.Session.GetOpenBooks()
	active := s.Session.GetCurrentIndex()
	names := tabs
	if all {
		names = s.Session.GetAllBooks()
	}
	out := make([]Book, 0, len(names))
	for _, name := range names {
		out = append(out, s.describe(name, tabs, active))
	}
	return out
}

func (s *Service) describe(name string, tabs []string, active int) Book {
	b := Book{Name: name, Tab: session.NoTab}
	b.Path, _ = s.Session.BookPath(name)
	for i, t := range tabs {
		if t == name {
			b.Open, b.Tab, b.Active = true, i, i == active
			break
		}
	}
	if page, ok := s.Progress.GetLastReadPage(name); ok {
		b.LastPage = &page
	}
	if s.Covers.Exists(name) {
		b.Cover = s.Covers.Path(name)
	}
	return b
}

// SetPage records the page being read; it is saved after a quiet period.
func (s *Service) SetPage(name string, page int) error {
	if !s.Session.HasBook(name) {
		return fmt.Errorf("%w: %q", library.ErrUnknownBook, name)
	}
	if page < 0 {
		return fmt.Errorf("app: page %d is negative", page)
	}
	s.Progress.ScheduleSave(name, page)
	return nil
}

// LastPage returns the saved page for name.
func (s *Service) LastPage(name string) (int, bool) {
	return s.Progress.GetLastReadPage(name)
}

// Cover returns the cover path for name, rendering it on first use.
func (s *Service) Cover(name string) (string, error) {
	path, err := s.Session.BookPath(name)
	if err != nil {
		return "", err
	}
	p, ok := s.Covers.Ensure(name, path)
	if !ok {
		return "", fmt.Errorf("app: %s has no cover", name)
	}
	return p, nil
}

// Preload warms count pages of name starting at start.
func (s *Service) Preload(name string, start, count int) error {
	path, err := s.Session.BookPath(name)
	if err != nil {
		return err
	}
	if !s.Documents.PreloadPages(path, start, count) {
		return fmt.Errorf("%w: %s", document.ErrUnreadable, path)
	}
	return nil
}

// Outline returns name's table of contents.
func (s *Service) Outline(name string) ([]document.OutlineItem, error) {
	path, err := s.Session.BookPath(name)
	if err != nil {
		return nil, err
	}
	return s.Documents.Outline(path)
}

// Remove forgets name along with its handle, cover and progress. The
// managed file stays on disk.
func (s *Service) Remove(name string) error {
	return s.Session.RemoveBook(name)
}

// ClearAll forgets every book, closes every tab and handle and drops the
// cover cache.
func (s *Service) ClearAll() error {
	s.Session.ClearAllData()
	s.Documents.ClearCache()
	return s.Covers.InvalidateAll()
}
