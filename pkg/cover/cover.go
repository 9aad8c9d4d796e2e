// Package cover persists rendered cover thumbnails under a deterministic
// path per book name.
package cover

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Source renders cover bytes for a document path. document.Cache satisfies it.
type Source interface {
	GetCover(path string) []byte
}

// Store reads and writes cover PNGs in a single directory.
type Store struct {
	dir    string
	source Source
	log    *slog.Logger
}

// New returns a cover store rooted at dir. source may be nil, in which case
// Ensure never generates missing covers.
func New(dir string, source Source, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{dir: dir, source: source, log: log}
}

// Dir returns the covers directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns where the cover for name lives, whether or not it exists.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, sanitize(name)+".png")
}

// Exists reports whether a cover has been written for name.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// Save writes data as the cover for name. The file is replaced atomically.
func (s *Store) Save(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("cover: empty image")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("cover: create dir: %w", err)
	}
	target := s.Path(name)
	tmp := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("cover: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("cover: rename %s: %w", name, err)
	}
	return target, nil
}

// Generate renders the cover of bookPath and saves it for name.
func (s *Store) Generate(name, bookPath string) (string, error) {
	if s.source == nil {
		return "", errors.New("cover: no cover source")
	}
	data := s.source.GetCover(bookPath)
	if data == nil {
		return "", fmt.Errorf("cover: %s has no renderable cover", name)
	}
	return s.Save(name, data)
}

// Ensure returns the cover path for name, generating it from bookPath when
// missing. It reports false when no cover exists and none could be made.
func (s *Store) Ensure(name, bookPath string) (string, bool) {
	if s.Exists(name) {
		return s.Path(name), true
	}
	if bookPath == "" {
		return "", false
	}
	p, err := s.Generate(name, bookPath)
	if err != nil {
		s.log.Warn("cover: lazy generation failed", "book", name, "err", err)
		return "", false
	}
	return p, true
}

// Invalidate removes the cached cover for name. A missing cover is not an
// error.
func (s *Store) Invalidate(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cover: invalidate %s: %w", name, err)
	}
	return nil
}

// InvalidateAll removes every cover in the directory.
func (s *Store) InvalidateAll() error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cover: list: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cover: invalidate all: %w", errors.Join(errs...))
	}
	return nil
}

// sanitize maps a book name onto a portable file stem.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "_"
	}
	return out
}
