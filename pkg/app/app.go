// Package app wires the reading session together and exposes the
// operations front ends share.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tableflip.dev/folio/pkg/config"
	"tableflip.dev/folio/pkg/cover"
	"tableflip.dev/folio/pkg/document"
	"tableflip.dev/folio/pkg/document/pdf"
	"tableflip.dev/folio/pkg/importer"
	"tableflip.dev/folio/pkg/kv"
	"tableflip.dev/folio/pkg/progress"
	"tableflip.dev/folio/pkg/session"
)

// preloadWindow is how many pages are warmed from the resume position when
// a book is opened.
const preloadWindow = 3

// ErrNoWatch is returned by Watch for backends without change
// notifications.
var ErrNoWatch = errors.New("app: storage backend does not support watching")

// Service provides high-level operations over books, tabs and reading
// progress so UIs and CLIs share one code path.
type Service struct {
	Config    *config.Config
	Store     kv.Store
	Settings  *config.Settings
	Documents *document.Cache
	Covers    *cover.Store
	Session   *session.Manager
	Progress  *progress.Tracker
	Importer  *importer.Pipeline

	log    *slog.Logger
	closer io.Closer
}

type options struct {
	log      *slog.Logger
	renderer document.Renderer
	store    kv.Store
}

// Option customizes New.
type Option func(*options)

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRenderer replaces the PDF renderer.
func WithRenderer(r document.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithStore uses store instead of opening the configured backend.
func WithStore(store kv.Store) Option {
	return func(o *options) { o.store = store }
}

// New builds the store, the document cache, the cover cache, the session,
// the progress tracker and the import pipeline in that order, then restores
// the previous session.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: no configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{log: slog.Default(), renderer: pdf.NewRenderer()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	s := &Service{Config: cfg, log: o.log}

	if o.store != nil {
		s.Store = o.store
	} else {
		store, closer, err := OpenStore(cfg, o.log)
		if err != nil {
			return nil, err
		}
		s.Store, s.closer = store, closer
	}
	s.Settings = config.NewSettings(s.Store)

	w, h := cfg.CoverSize()
	s.Documents = document.NewCache(o.renderer,
		document.WithLogger(o.log.With("component", "document")),
		document.WithCoverSize(w, h),
	)
	s.Covers = cover.New(cfg.CoverDir(), s.Documents, o.log.With("component", "cover"))
	s.Progress = progress.New(s.Store, cfg.ProgressDelay(), o.log.With("component", "progress"))
	s.Session = session.New(s.Store,
		session.WithLogger(o.log.With("component", "session")),
		session.WithDebounce(cfg.SessionDelay()),
		session.WithPreferences(s.Settings),
		session.WithRemoveHook(s.forget),
	)
	s.Importer = importer.New(cfg.BookDir(), s.Session, s.Covers, cfg.Workers(), o.log.With("component", "importer"))

	if err := s.Session.Initialize(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("app: restore session: %w", err)
	}
	return s, nil
}

// OpenStore opens the key-value backend cfg selects.
func OpenStore(cfg *config.Config, log *slog.Logger) (kv.Store, io.Closer, error) {
	switch cfg.Backend() {
	case config.StorageMemory:
		m := kv.NewMemory(log)
		return m, m, nil
	case config.StorageSQLite:
		db, err := kv.OpenSQLite(cfg.SQLitePath(), log)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		d, err := kv.OpenDiskv(cfg.StatePath(), log)
		if err != nil {
			return nil, nil, err
		}
		return d, d, nil
	}
}

// forget drops everything derived from a removed book.
func (s *Service) forget(name, path string) {
	if path != "" {
		if err := s.Documents.Release(path); err != nil && !errors.Is(err, document.ErrNotCached) {
			s.log.Warn("app: release document", "book", name, "err", err)
		}
	}
	if err := s.Covers.Invalidate(name); err != nil {
		s.log.Warn("app: invalidate cover", "book", name, "err", err)
	}
	if err := s.Progress.Remove(name); err != nil {
		s.log.Warn("app: forget progress", "book", name, "err", err)
	}
}

// Watch streams key changes made by other processes sharing the store.
func (s *Service) Watch(ctx context.Context) (<-chan kv.Event, error) {
	w, ok := s.Store.(kv.Watcher)
	if !ok {
		return nil, ErrNoWatch
	}
	return w.Watch(ctx)
}

// Flush writes pending session and progress state now.
func (s *Service) Flush() {
	s.Session.Flush()
	s.Progress.Flush()
}

// Close waits for background cover jobs, flushes pending state and releases
// every resource. The Service must not be used afterwards.
func (s *Service) Close() error {
	if s.Importer != nil {
		s.Importer.Wait()
	}
	var errs []error
	if s.Progress != nil {
		s.Progress.Flush()
		s.Progress.Stop()
	}
	if s.Session != nil {
		errs = append(errs, s.Session.Close())
	}
	if s.Documents != nil {
		errs = append(errs, s.Documents.Close())
	}
	if s.closer != nil {
		errs = append(errs, s.closer.Close())
	}
	return errors.Join(errs...)
}
