package document

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCoverWidth  = 300
	defaultCoverHeight = 420
)

// Cache holds one Handle per absolute document path.
type Cache struct {
	renderer Renderer
	log      *slog.Logger
	coverW   int
	coverH   int

	mu      sync.Mutex
	handles map[string]Handle
	opens   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCoverSize sets the raster size covers are rendered at.
func WithCoverSize(width, height int) Option {
	return func(c *Cache) {
		if width > 0 && height > 0 {
			c.coverW, c.coverH = width, height
		}
	}
}

// NewCache returns an empty cache opening documents through renderer.
func NewCache(renderer Renderer, opts ...Option) *Cache {
	c := &Cache{
		renderer: renderer,
		log:      slog.Default(),
		coverW:   defaultCoverWidth,
		coverH:   defaultCoverHeight,
		handles:  make(map[string]Handle),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// OpenOrGet returns the cached handle for path, opening it on first use.
// Concurrent callers for the same path share a single open. Failed opens are
// not cached; the next call retries.
func (c *Cache) OpenOrGet(path string) (Handle, error) {
	key := cacheKey(path)
	if h, ok := c.lookup(key); ok {
		return h, nil
	}

	v, err, _ := c.opens.Do(key, func() (any, error) {
		// A caller that finished just before this one may already have
		// stored the handle.
		if h, ok := c.lookup(key); ok {
			return h, nil
		}
		h, err := c.open(key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.handles[key] = h
		c.mu.Unlock()
		c.log.Debug("document: opened", "path", key)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Handle), nil
}

func (c *Cache) lookup(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[key]
	return h, ok
}

// open goes straight to the renderer and never touches the map.
func (c *Cache) open(path string) (Handle, error) {
	h, err := c.renderer.Open(path)
	if err != nil {
		if h != nil {
			c.closeHandle(path, h)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s: renderer returned no handle", ErrUnreadable, path)
	}
	return h, nil
}

func (c *Cache) closeHandle(path string, h Handle) {
	if err := h.Close(); err != nil {
		c.log.Warn("document: close failed", "path", path, "err", err)
	}
}

// PreloadPages touches pages [start, min(start+count, pageCount)) to warm
// the renderer. Page errors are logged and skipped; it reports false only
// when the document itself is unusable.
func (c *Cache) PreloadPages(path string, start, count int) bool {
	h, err := c.OpenOrGet(path)
	if err != nil {
		c.log.Warn("document: preload skipped", "path", path, "err", err)
		return false
	}
	n, err := h.PageCount()
	if err != nil {
		c.log.Warn("document: preload page count", "path", path, "err", err)
		return false
	}
	if start < 0 {
		start = 0
	}
	end := min(start+count, n)
	for i := start; i < end; i++ {
		if _, err := h.Page(i); err != nil {
			c.log.Warn("document: preload page", "path", path, "page", i, "err", err)
		}
	}
	return true
}

// PageCount opens (or reuses) the document and returns its page count.
func (c *Cache) PageCount(path string) (int, error) {
	h, err := c.OpenOrGet(path)
	if err != nil {
		return 0, err
	}
	n, err := h.PageCount()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}
	return n, nil
}

// Outline returns the document's table of contents.
func (c *Cache) Outline(path string) ([]OutlineItem, error) {
	h, err := c.OpenOrGet(path)
	if err != nil {
		return nil, err
	}
	items, err := h.Outline()
	if err != nil {
		return nil, fmt.Errorf("document: outline %s: %w", path, err)
	}
	return items, nil
}

// GetCover renders page 0 of path as PNG bytes. It uses its own short-lived
// handle rather than the cached one, and closes it on every path. Any
// failure yields nil.
func (c *Cache) GetCover(path string) []byte {
	data, err := c.renderCover(path)
	if err != nil {
		c.log.Warn("document: no cover", "path", path, "err", err)
		return nil
	}
	return data
}

func (c *Cache) renderCover(path string) ([]byte, error) {
	h, err := c.open(path)
	if err != nil {
		return nil, err
	}
	defer c.closeHandle(path, h)

	page, err := h.Page(0)
	if err != nil {
		return nil, fmt.Errorf("document: cover page: %w", err)
	}
	img, err := page.Render(c.coverW, c.coverH)
	if err != nil {
		return nil, fmt.Errorf("document: render cover: %w", err)
	}
	if img == nil {
		return nil, errors.New("document: render cover: empty raster")
	}
	img = imaging.Fit(img, c.coverW, c.coverH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("document: encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// Release closes and forgets the handle for path.
func (c *Cache) Release(path string) error {
	key := cacheKey(path)
	c.mu.Lock()
	h, ok := c.handles[key]
	delete(c.handles, key)
	c.mu.Unlock()
	if !ok {
		return ErrNotCached
	}
	c.closeHandle(key, h)
	return nil
}

// ClearCache closes every held handle and empties the cache. Operations in
// flight during a clear may still store a handle afterwards.
func (c *Cache) ClearCache() {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[string]Handle)
	c.mu.Unlock()

	for path, h := range handles {
		c.closeHandle(path, h)
	}
}

// Len reports the number of held handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Close releases everything; the cache stays usable.
func (c *Cache) Close() error {
	c.ClearCache()
	return nil
}
