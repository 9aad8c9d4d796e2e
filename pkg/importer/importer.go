// Package importer copies source documents into managed storage and
// registers them in the catalog.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrSourceNotFound is returned when the file to import does not exist.
var ErrSourceNotFound = errors.New("importer: source not found")

// Catalog is the part of the session the pipeline registers books with.
// session.Manager implements it.
type Catalog interface {
	HasBook(name string) bool
	RegisterBook(name, path string) error
}

// Covers renders and stores a cover for a freshly copied book.
// cover.Store implements it.
type Covers interface {
	Generate(name, bookPath string) (string, error)
}

// Pipeline imports books. Cover extraction runs in the background with at
// most a fixed number of jobs rendering at once.
type Pipeline struct {
	booksDir string
	catalog  Catalog
	covers   Covers
	log      *slog.Logger

	jobs  errgroup.Group
	slots *semaphore.Weighted
}

// New returns a pipeline copying into booksDir. covers may be nil to skip
// cover extraction; workers below one means one.
func New(booksDir string, catalog Catalog, covers Covers, workers int, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		booksDir: booksDir,
		catalog:  catalog,
		covers:   covers,
		log:      log,
		slots:    semaphore.NewWeighted(int64(max(workers, 1))),
	}
}

// ImportBook copies source into the books directory and returns its book
// name, the source's base name. A name already in the catalog is returned
// as is without copying. ctx is only consulted before the copy starts.
func (p *Pipeline) ImportBook(ctx context.Context, source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return "", fmt.Errorf("importer: stat %s: %w", source, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, source)
	}

	name := filepath.Base(source)
	if p.catalog.HasBook(name) {
		p.log.Debug("importer: already imported", "book", name)
		return name, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.booksDir, 0o755); err != nil {
		return "", fmt.Errorf("importer: create books dir: %w", err)
	}
	target := filepath.Join(p.booksDir, name)
	if !samePath(source, target) {
		if err := copyFile(source, target); err != nil {
			return "", fmt.Errorf("importer: copy %s: %w", name, err)
		}
	}

	p.scheduleCover(name, target)

	if err := p.catalog.RegisterBook(name, target); err != nil {
		return "", fmt.Errorf("importer: register %s: %w", name, err)
	}
	p.log.Info("importer: imported", "book", name, "path", target)
	return name, nil
}

func (p *Pipeline) scheduleCover(name, path string) {
	if p.covers == nil {
		return
	}
	p.jobs.Go(func() error {
		if err := p.slots.Acquire(context.Background(), 1); err != nil {
			return nil
		}
		defer p.slots.Release(1)

		if _, err := p.covers.Generate(name, path); err != nil {
			p.log.Warn("importer: cover extraction failed", "book", name, "err", err)
		}
		return nil
	})
}

// Wait blocks until every scheduled cover job has finished.
func (p *Pipeline) Wait() {
	_ = p.jobs.Wait()
}

// Result is the outcome of importing one file of a directory.
type Result struct {
	Source string `json:"source" yaml:"source"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// ImportDir imports every PDF directly inside dir. Individual failures are
// reported per file; the error covers only dir itself.
func (p *Pipeline) ImportDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, dir)
		}
		return nil, fmt.Errorf("importer: read %s: %w", dir, err)
	}
	var results []Result
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		src := filepath.Join(dir, e.Name())
		name, err := p.ImportBook(ctx, src)
		results = append(results, Result{Source: src, Name: name, Err: err})
	}
	return results, nil
}

// copyFile writes src to dst through a uniquely named partial file, so an
// interrupted copy never leaves a truncated dst behind.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	partial := filepath.Join(filepath.Dir(dst), ".partial-"+uuid.NewString())
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(partial)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(partial, dst)
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
