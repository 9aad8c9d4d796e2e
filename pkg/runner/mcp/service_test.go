package mcp

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/config"
	"tableflip.dev/folio/pkg/document"
	"tableflip.dev/folio/pkg/library"
	"tableflip.dev/folio/pkg/session"
)

type stubRenderer struct{}

func (stubRenderer) Open(path string) (document.Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return stubHandle{}, nil
}

type stubHandle struct{}

func (stubHandle) PageCount() (int, error) { return 12, nil }

func (stubHandle) Page(int) (document.Page, error) { return stubPage{}, nil }

func (stubHandle) Outline() ([]document.OutlineItem, error) {
	return []document.OutlineItem{{Title: "Preface", Page: 0}}, nil
}

func (stubHandle) Close() error { return nil }

type stubPage struct{}

func (stubPage) Render(w, h int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Storage = config.StorageMemory
	svc, err := app.New(context.Background(), cfg, app.WithRenderer(stubRenderer{}))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return NewService(svc)
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestServiceImportOpenAndProgress(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	book, err := svc.ImportBook(ctx, writePDF(t, "dune.pdf"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if book.Name != "dune.pdf" || book.Path == "" {
		t.Fatalf("unexpected book %+v", book)
	}

	reading, err := svc.OpenBook(ctx, "dune.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if reading.Pages != 12 || !reading.Active {
		t.Fatalf("unexpected reading %+v", reading)
	}

	p, err := svc.SaveProgress(ctx, "dune.pdf", 7)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !p.Saved || p.Page != 7 {
		t.Fatalf("expected saved page 7, got %+v", p)
	}

	items, err := svc.Outline(ctx, "dune.pdf")
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected outline %v %v", items, err)
	}
}

func TestServiceTabs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if _, err := svc.OpenBook(ctx, name); err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
	}

	state, err := svc.SwitchBook(ctx, 0)
	if err != nil || state.Active != 0 {
		t.Fatalf("switch: %+v %v", state, err)
	}
	state, err = svc.CloseBook(ctx, 0)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(state.Tabs) != 2 || state.Active != 0 || state.Tabs[0] != "b.pdf" {
		t.Fatalf("unexpected state %+v", state)
	}
	if _, err := svc.CloseBook(ctx, 9); !errors.Is(err, session.ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}

	books, err := svc.ListBooks(ctx, true)
	if err != nil || len(books) != 3 {
		t.Fatalf("expected 3 catalog books, got %d %v", len(books), err)
	}
}

func TestServiceUnknownBook(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.GetProgress(ctx, "ghost.pdf"); !errors.Is(err, library.ErrUnknownBook) {
		t.Fatalf("expected ErrUnknownBook, got %v", err)
	}
	if _, err := svc.SaveProgress(ctx, "ghost.pdf", 1); !errors.Is(err, library.ErrUnknownBook) {
		t.Fatalf("expected ErrUnknownBook, got %v", err)
	}
	if err := svc.RemoveBook(ctx, "ghost.pdf"); !errors.Is(err, library.ErrUnknownBook) {
		t.Fatalf("expected ErrUnknownBook, got %v", err)
	}
}

func TestServiceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestService(t)
	if _, err := svc.ListBooks(ctx, false); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestServiceWithoutLibrary(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.State(context.Background()); !errors.Is(err, ErrNoLibrary) {
		t.Fatalf("expected ErrNoLibrary, got %v", err)
	}
}
