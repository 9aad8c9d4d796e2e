// Package session tracks the books a reader has open as tabs, which tab is
// active and which books are known at all.
//
// The Manager is the only writer of that state. Every mutation is applied
// in memory first, then persisted in the background and announced to
// subscribers. Persistence is best-effort: failures are logged and the
// in-memory state stays authoritative until the next restart.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"tableflip.dev/folio/pkg/debounce"
	"tableflip.dev/folio/pkg/kv"
	"tableflip.dev/folio/pkg/library"
)

// MaxTabs is the most books that can be open at once.
const MaxTabs = 10

// Persisted keys.
const (
	KeyOpenBooks    = "open_books"
	KeyCurrentIndex = "current_index"
)

// NoTab is the active index when no tab is open.
const NoTab = -1

var (
	// ErrLimitExceeded is meant to be shown to the user as is.
	ErrLimitExceeded = fmt.Errorf("you can have at most %d books open, close one first", MaxTabs)

	// ErrInvalidName is returned for empty book names.
	ErrInvalidName = errors.New("session: invalid book name")

	// ErrInvalidIndex is returned by front ends for out of range tab
	// indexes. The Manager itself ignores them.
	ErrInvalidIndex = errors.New("session: invalid tab index")
)

// Preferences supplies the auto-restore setting. config.Settings
// implements it.
type Preferences interface {
	AutoRestore() bool
}

// RemoveHook runs after a book has been removed from the catalog. path is
// the book's managed file, or empty when none was recorded.
type RemoveHook func(name, path string)

const (
	persistTabs    = "tabs"
	persistCatalog = "catalog"
)

// Manager owns the open tabs, the active index and the catalog.
type Manager struct {
	store kv.Store
	prefs Preferences
	log   *slog.Logger
	delay time.Duration
	hooks []RemoveHook

	mu      sync.RWMutex
	catalog *library.Catalog
	tabs    []string
	active  int

	persist *debounce.Group
	writeMu sync.Mutex

	subMu      sync.Mutex
	subs       map[int]chan Event
	nextSub    int
	subsClosed bool
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithDebounce sets how long writes are held back to coalesce bursts. A
// zero delay writes synchronously on the mutating goroutine.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) {
		m.delay = max(d, 0)
	}
}

func WithPreferences(p Preferences) Option {
	return func(m *Manager) {
		m.prefs = p
	}
}

// WithRemoveHook registers fn to run for every removed book.
func WithRemoveHook(fn RemoveHook) Option {
	return func(m *Manager) {
		if fn != nil {
			m.hooks = append(m.hooks, fn)
		}
	}
}

// New returns an empty Manager persisting to store. Call Initialize to load
// the previous session.
func New(store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		log:     slog.Default(),
		delay:   250 * time.Millisecond,
		catalog: library.New(),
		active:  NoTab,
		subs:    make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.persist = debounce.NewGroup(m.delay)
	return m
}

// AddRemoveHook registers fn after construction.
func (m *Manager) AddRemoveHook(fn RemoveHook) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

func (m *Manager) autoRestore() bool {
	if m.prefs == nil {
		return true
	}
	return m.prefs.AutoRestore()
}

// Initialize loads the catalog and, when auto-restore is on, the previous
// tabs. Restored tabs are de-duplicated, capped at MaxTabs and added to the
// catalog if missing; the active index is clamped into range.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.catalog.Load(m.store)
	m.tabs = nil
	m.active = NoTab

	if m.autoRestore() {
		saved, _ := m.store.GetStringList(KeyOpenBooks)
		for _, name := range saved {
			if len(m.tabs) == MaxTabs {
				break
			}
			if strings.TrimSpace(name) == "" || slices.Contains(m.tabs, name) {
				continue
			}
			m.tabs = append(m.tabs, name)
			m.catalog.Add(name)
		}
		if len(m.tabs) > 0 {
			idx, _ := m.store.GetInt(KeyCurrentIndex)
			m.active = min(max(idx, 0), len(m.tabs)-1)
		}
	}
	restored := len(m.tabs) > 0
	ev := m.eventLocked(Restored, "")
	m.mu.Unlock()

	m.log.Debug("session: initialized", "tabs", len(ev.Tabs), "active", ev.Active)
	m.schedule(persistCatalog)
	if restored {
		m.schedule(persistTabs)
		m.emit(ev)
	}
	return nil
}

// OpenBook focuses name's tab, opening one if needed. It fails with
// ErrLimitExceeded when MaxTabs tabs are open and name is not one of them.
func (m *Manager) OpenBook(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}

	m.mu.Lock()
	idx := slices.Index(m.tabs, name)
	if idx < 0 && len(m.tabs) >= MaxTabs {
		m.mu.Unlock()
		return ErrLimitExceeded
	}
	added := m.catalog.Add(name)
	if idx < 0 {
		m.tabs = append(m.tabs, name)
		idx = len(m.tabs) - 1
	}
	m.active = idx
	ev := m.eventLocked(TabsChanged, name)
	m.mu.Unlock()

	if added {
		m.schedule(persistCatalog)
	}
	m.schedule(persistTabs)
	m.emit(ev)
	return nil
}

// CloseBook closes the tab at index and reports whether one was closed.
// An out of range index is ignored.
func (m *Manager) CloseBook(index int) bool {
	m.mu.Lock()
	if index < 0 || index >= len(m.tabs) {
		m.mu.Unlock()
		return false
	}
	name := m.tabs[index]
	m.removeTabLocked(index)
	ev := m.eventLocked(TabsChanged, name)
	m.mu.Unlock()

	m.schedule(persistTabs)
	m.emit(ev)
	return true
}

// removeTabLocked drops the tab at index and repairs the active index.
func (m *Manager) removeTabLocked(index int) {
	m.tabs = slices.Delete(m.tabs, index, index+1)
	switch {
	case len(m.tabs) == 0:
		m.active = NoTab
	case m.active >= len(m.tabs):
		m.active = len(m.tabs) - 1
	case m.active > index:
		m.active--
	}
}

// SwitchToBook makes index the active tab and reports whether it did. An
// out of range index is ignored.
func (m *Manager) SwitchToBook(index int) bool {
	m.mu.Lock()
	if index < 0 || index >= len(m.tabs) {
		m.mu.Unlock()
		return false
	}
	m.active = index
	ev := m.eventLocked(TabsChanged, m.tabs[index])
	m.mu.Unlock()

	m.schedule(persistTabs)
	m.emit(ev)
	return true
}

// GetOpenBooks returns the open tabs in order.
func (m *Manager) GetOpenBooks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tabs)
}

// GetCurrentIndex returns the active index, or NoTab.
func (m *Manager) GetCurrentIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// GetCurrentBook returns the active book, if any.
func (m *Manager) GetCurrentBook() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == NoTab {
		return "", false
	}
	return m.tabs[m.active], true
}

// GetAllBooks returns every known book in insertion order.
func (m *Manager) GetAllBooks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog.Names()
}

// HasBook reports whether name is in the catalog.
func (m *Manager) HasBook(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog.Contains(name)
}

// BookPath returns the managed file path recorded for name.
func (m *Manager) BookPath(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog.Path(name)
}

// RegisterBook records name and its managed file in the catalog.
func (m *Manager) RegisterBook(name, path string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	m.mu.Lock()
	m.catalog.SetPath(name, path)
	ev := m.eventLocked(CatalogChanged, name)
	m.mu.Unlock()

	m.schedule(persistCatalog)
	m.emit(ev)
	return nil
}

// RemoveBook drops name from the catalog, closing its tab if open, then
// runs the remove hooks so derived state (handles, covers, progress) goes
// with it.
func (m *Manager) RemoveBook(name string) error {
	m.mu.Lock()
	if !m.catalog.Contains(name) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", library.ErrUnknownBook, name)
	}
	path, _ := m.catalog.Path(name)
	_ = m.catalog.Remove(name)
	tabClosed := false
	if i := slices.Index(m.tabs, name); i >= 0 {
		m.removeTabLocked(i)
		tabClosed = true
	}
	ev := m.eventLocked(CatalogChanged, name)
	hooks := slices.Clone(m.hooks)
	m.mu.Unlock()

	m.schedule(persistCatalog)
	if tabClosed {
		m.schedule(persistTabs)
	}
	m.emit(ev)

	for _, fn := range hooks {
		fn(name, path)
	}
	m.log.Info("session: book removed", "book", name)
	return nil
}

// ClearAllData forgets every book and closes every tab.
func (m *Manager) ClearAllData() {
	m.mu.Lock()
	m.catalog.Clear()
	m.tabs = nil
	m.active = NoTab
	ev := m.eventLocked(Cleared, "")
	m.mu.Unlock()

	m.schedule(persistCatalog)
	m.schedule(persistTabs)
	m.emit(ev)
}

// Flush writes any pending state now.
func (m *Manager) Flush() {
	m.persist.Flush()
}

// Close flushes pending writes and ends every subscription.
func (m *Manager) Close() error {
	m.persist.Flush()
	m.persist.Stop()
	m.closeSubscribers()
	return nil
}
