package cover

import (
	"os"
	"path/filepath"
	"testing"
)

type stubSource struct {
	data  []byte
	calls int
}

func (s *stubSource) GetCover(path string) []byte {
	s.calls++
	return s.data
}

func TestPathIsDeterministicAndSanitized(t *testing.T) {
	s := New("/covers", nil, nil)
	cases := map[string]string{
		"sample.pdf":       "/covers/sample.pdf.png",
		"my book (1).pdf":  "/covers/my_book__1_.pdf.png",
		"../../etc/passwd": "/covers/_.._etc_passwd.png",
		"":                 "/covers/_.png",
	}
	for in, want := range cases {
		if got := s.Path(in); got != filepath.FromSlash(want) {
			t.Errorf("Path(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil, nil)

	p, err := s.Save("a.pdf", []byte("png"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.Exists("a.pdf") {
		t.Fatalf("expected cover at %s", p)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}

	if err := s.Invalidate("a.pdf"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if s.Exists("a.pdf") {
		t.Fatalf("expected cover removed")
	}
	if err := s.Invalidate("a.pdf"); err != nil {
		t.Fatalf("invalidating a missing cover: %v", err)
	}
}

func TestSaveRejectsEmptyData(t *testing.T) {
	s := New(t.TempDir(), nil, nil)
	if _, err := s.Save("a.pdf", nil); err == nil {
		t.Fatalf("expected empty cover to be rejected")
	}
}

func TestEnsureGeneratesOnce(t *testing.T) {
	src := &stubSource{data: []byte("png")}
	s := New(t.TempDir(), src, nil)

	p, ok := s.Ensure("a.pdf", "/books/a.pdf")
	if !ok || p != s.Path("a.pdf") {
		t.Fatalf("expected generated cover, got %q %v", p, ok)
	}
	if _, ok := s.Ensure("a.pdf", "/books/a.pdf"); !ok {
		t.Fatalf("expected cached cover")
	}
	if src.calls != 1 {
		t.Fatalf("expected one render, got %d", src.calls)
	}
}

func TestEnsureWithoutCover(t *testing.T) {
	s := New(t.TempDir(), &stubSource{}, nil)
	if _, ok := s.Ensure("a.pdf", "/books/a.pdf"); ok {
		t.Fatalf("expected no cover when rendering fails")
	}
	if _, ok := s.Ensure("a.pdf", ""); ok {
		t.Fatalf("expected no cover without a book path")
	}
	if _, ok := New(t.TempDir(), nil, nil).Ensure("a.pdf", "/books/a.pdf"); ok {
		t.Fatalf("expected no cover without a source")
	}
}

func TestInvalidateAllKeepsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil, nil)
	for _, name := range []string{"a.pdf", "b.pdf"} {
		if _, err := s.Save(name, []byte("png")); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := s.InvalidateAll(); err != nil {
		t.Fatalf("invalidate all: %v", err)
	}
	if s.Exists("a.pdf") || s.Exists("b.pdf") {
		t.Fatalf("expected covers removed")
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("expected unrelated file kept: %v", err)
	}
}

func TestInvalidateAllMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"), nil, nil)
	if err := s.InvalidateAll(); err != nil {
		t.Fatalf("expected missing dir to be fine, got %v", err)
	}
}
