package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"tableflip.dev/folio/pkg/kv"
	"tableflip.dev/folio/pkg/library"
)

func newManager(t *testing.T, store kv.Store, opts ...Option) *Manager {
	t.Helper()
	if store == nil {
		store = kv.NewMemory(nil)
	}
	m := New(store, append([]Option{WithDebounce(0)}, opts...)...)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func checkTabState(t *testing.T, m *Manager) {
	t.Helper()
	tabs := m.GetOpenBooks()
	active := m.GetCurrentIndex()
	all := m.GetAllBooks()

	if len(tabs) > MaxTabs {
		t.Fatalf("%d tabs open, limit is %d", len(tabs), MaxTabs)
	}
	if (active == NoTab) != (len(tabs) == 0) {
		t.Fatalf("active %d with %d tabs", active, len(tabs))
	}
	if len(tabs) > 0 && (active < 0 || active >= len(tabs)) {
		t.Fatalf("active %d out of range for %d tabs", active, len(tabs))
	}
	seen := map[string]bool{}
	for _, name := range tabs {
		if seen[name] {
			t.Fatalf("duplicate tab %q in %v", name, tabs)
		}
		seen[name] = true
		if !slices.Contains(all, name) {
			t.Fatalf("open tab %q missing from catalog %v", name, all)
		}
	}
}

func TestTabStateHoldsForRandomSequences(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7))
			m := newManager(t, nil)
			for step := 0; step < 300; step++ {
				switch rng.IntN(3) {
				case 0:
					err := m.OpenBook(fmt.Sprintf("book-%d.pdf", rng.IntN(15)))
					if err != nil && !errors.Is(err, ErrLimitExceeded) {
						t.Fatalf("open: %v", err)
					}
				case 1:
					m.CloseBook(rng.IntN(14) - 2)
				case 2:
					m.SwitchToBook(rng.IntN(14) - 2)
				}
				checkTabState(t, m)
			}
		})
	}
}

func TestOpenBookIsIdempotent(t *testing.T) {
	m := newManager(t, nil)
	_ = m.OpenBook("a.pdf")
	_ = m.OpenBook("b.pdf")
	if err := m.OpenBook("a.pdf"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := m.OpenBook("a.pdf"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := m.GetOpenBooks(); !slices.Equal(got, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("unexpected tabs %v", got)
	}
	if m.GetCurrentIndex() != 0 {
		t.Fatalf("expected focus on the existing tab, got %d", m.GetCurrentIndex())
	}
}

func TestOpenBookRejectsEmptyName(t *testing.T) {
	m := newManager(t, nil)
	if err := m.OpenBook("  "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if len(m.GetAllBooks()) != 0 {
		t.Fatalf("empty name must not reach the catalog")
	}
}

func TestOpenBookLimit(t *testing.T) {
	m := newManager(t, nil)
	for i := 0; i < MaxTabs; i++ {
		if err := m.OpenBook(fmt.Sprintf("%d.pdf", i)); err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
	}
	before := m.GetOpenBooks()

	if err := m.OpenBook("eleventh.pdf"); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if got := m.GetOpenBooks(); !slices.Equal(got, before) {
		t.Fatalf("tabs changed on failure: %v", got)
	}
	if m.HasBook("eleventh.pdf") {
		t.Fatalf("failed open must not add to the catalog")
	}
	if err := m.OpenBook("3.pdf"); err != nil {
		t.Fatalf("focusing an open book at the limit: %v", err)
	}
	if m.GetCurrentIndex() != 3 {
		t.Fatalf("expected focus on tab 3, got %d", m.GetCurrentIndex())
	}
}

func TestCloseBookAdjustsActive(t *testing.T) {
	cases := []struct {
		name       string
		active     int
		close      int
		wantActive int
		wantTabs   []string
	}{
		{"close active middle keeps index", 1, 1, 1, []string{"a", "c", "d"}},
		{"close active last decrements", 3, 3, 2, []string{"a", "b", "c"}},
		{"close before active shifts left", 2, 0, 1, []string{"b", "c", "d"}},
		{"close after active unchanged", 1, 3, 1, []string{"a", "b", "c"}},
		{"out of range is ignored", 2, 4, 2, []string{"a", "b", "c", "d"}},
		{"negative is ignored", 2, -1, 2, []string{"a", "b", "c", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newManager(t, nil)
			for _, n := range []string{"a", "b", "c", "d"} {
				_ = m.OpenBook(n)
			}
			m.SwitchToBook(tc.active)
			m.CloseBook(tc.close)
			if got := m.GetOpenBooks(); !slices.Equal(got, tc.wantTabs) {
				t.Fatalf("tabs %v, want %v", got, tc.wantTabs)
			}
			if got := m.GetCurrentIndex(); got != tc.wantActive {
				t.Fatalf("active %d, want %d", got, tc.wantActive)
			}
		})
	}
}

func TestOpenCloseScenario(t *testing.T) {
	m := newManager(t, nil)
	if err := m.RegisterBook("sample.pdf", "/books/sample.pdf"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !slices.Contains(m.GetAllBooks(), "sample.pdf") {
		t.Fatalf("expected sample.pdf in catalog")
	}
	if err := m.OpenBook("sample.pdf"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := m.GetOpenBooks(); !slices.Equal(got, []string{"sample.pdf"}) || m.GetCurrentIndex() != 0 {
		t.Fatalf("unexpected state %v %d", got, m.GetCurrentIndex())
	}
	if name, ok := m.GetCurrentBook(); !ok || name != "sample.pdf" {
		t.Fatalf("unexpected current book %q %v", name, ok)
	}
	if !m.CloseBook(0) {
		t.Fatalf("expected close to succeed")
	}
	if got := m.GetOpenBooks(); len(got) != 0 || m.GetCurrentIndex() != NoTab {
		t.Fatalf("expected no tabs, got %v %d", got, m.GetCurrentIndex())
	}
	if _, ok := m.GetCurrentBook(); ok {
		t.Fatalf("expected no current book")
	}
}

func TestStatePersistsAndRestores(t *testing.T) {
	store := kv.NewMemory(nil)
	m := newManager(t, store)
	_ = m.RegisterBook("a.pdf", "/books/a.pdf")
	_ = m.OpenBook("a.pdf")
	_ = m.OpenBook("b.pdf")
	m.SwitchToBook(0)

	restored := newManager(t, store)
	if got := restored.GetOpenBooks(); !slices.Equal(got, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("unexpected restored tabs %v", got)
	}
	if restored.GetCurrentIndex() != 0 {
		t.Fatalf("expected active 0, got %d", restored.GetCurrentIndex())
	}
	if p, err := restored.BookPath("a.pdf"); err != nil || p != "/books/a.pdf" {
		t.Fatalf("expected restored path, got %q (%v)", p, err)
	}
}

func TestInitializeReconcilesSavedState(t *testing.T) {
	store := kv.NewMemory(nil)
	_ = store.SaveStringList(library.KeyAllBooks, []string{"c.pdf"})
	_ = store.SaveStringList(KeyOpenBooks, []string{"a.pdf", "a.pdf", "", "b.pdf"})
	_ = store.SaveInt(KeyCurrentIndex, 7)

	m := New(store, WithDebounce(0))
	events, cancel := m.Subscribe()
	defer cancel()
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if got := m.GetOpenBooks(); !slices.Equal(got, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("unexpected tabs %v", got)
	}
	if m.GetCurrentIndex() != 1 {
		t.Fatalf("expected clamped index 1, got %d", m.GetCurrentIndex())
	}
	if got := m.GetAllBooks(); !slices.Equal(got, []string{"c.pdf", "a.pdf", "b.pdf"}) {
		t.Fatalf("unexpected catalog %v", got)
	}
	if saved, _ := store.GetStringList(library.KeyAllBooks); !slices.Equal(saved, []string{"c.pdf", "a.pdf", "b.pdf"}) {
		t.Fatalf("expected reconciled catalog persisted, got %v", saved)
	}

	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	if ev := <-events; ev.Type != Restored || ev.Active != 1 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestInitializeCapsRestoredTabs(t *testing.T) {
	store := kv.NewMemory(nil)
	var names []string
	for i := 0; i < MaxTabs+3; i++ {
		names = append(names, fmt.Sprintf("%d.pdf", i))
	}
	_ = store.SaveStringList(KeyOpenBooks, names)
	_ = store.SaveInt(KeyCurrentIndex, -4)

	m := newManager(t, store)
	if n := len(m.GetOpenBooks()); n != MaxTabs {
		t.Fatalf("expected %d tabs, got %d", MaxTabs, n)
	}
	if m.GetCurrentIndex() != 0 {
		t.Fatalf("expected negative index clamped to 0, got %d", m.GetCurrentIndex())
	}
}

type staticPrefs bool

func (p staticPrefs) AutoRestore() bool { return bool(p) }

func TestInitializeWithoutAutoRestore(t *testing.T) {
	store := kv.NewMemory(nil)
	_ = store.SaveStringList(library.KeyAllBooks, []string{"a.pdf"})
	_ = store.SaveStringList(KeyOpenBooks, []string{"a.pdf"})
	_ = store.SaveInt(KeyCurrentIndex, 0)

	m := New(store, WithDebounce(0), WithPreferences(staticPrefs(false)))
	events, cancel := m.Subscribe()
	defer cancel()
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(m.GetOpenBooks()) != 0 || m.GetCurrentIndex() != NoTab {
		t.Fatalf("expected no restored tabs")
	}
	if !m.HasBook("a.pdf") {
		t.Fatalf("expected catalog to load regardless")
	}
	if len(events) != 0 {
		t.Fatalf("expected no event without restored tabs")
	}
}

func TestInitializeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(kv.NewMemory(nil)).Initialize(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClearAllData(t *testing.T) {
	store := kv.NewMemory(nil)
	m := newManager(t, store)
	_ = m.OpenBook("a.pdf")
	_ = m.OpenBook("b.pdf")

	m.ClearAllData()
	if len(m.GetAllBooks()) != 0 || len(m.GetOpenBooks()) != 0 || m.GetCurrentIndex() != NoTab {
		t.Fatalf("expected everything cleared")
	}
	if tabs, _ := store.GetStringList(KeyOpenBooks); len(tabs) != 0 {
		t.Fatalf("expected cleared tabs persisted, got %v", tabs)
	}
	if idx, _ := store.GetInt(KeyCurrentIndex); idx != NoTab {
		t.Fatalf("expected persisted index -1, got %d", idx)
	}
}

func TestRemoveBookCascades(t *testing.T) {
	var mu sync.Mutex
	var removed []string
	hook := func(name, path string) {
		mu.Lock()
		defer mu.Unlock()
		removed = append(removed, name+"="+path)
	}
	m := newManager(t, nil, WithRemoveHook(hook))
	_ = m.RegisterBook("a.pdf", "/books/a.pdf")
	_ = m.OpenBook("a.pdf")
	_ = m.OpenBook("b.pdf")

	if err := m.RemoveBook("a.pdf"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if m.HasBook("a.pdf") {
		t.Fatalf("expected a.pdf gone from catalog")
	}
	if got := m.GetOpenBooks(); !slices.Equal(got, []string{"b.pdf"}) || m.GetCurrentIndex() != 0 {
		t.Fatalf("unexpected tabs after remove %v %d", got, m.GetCurrentIndex())
	}
	if !slices.Equal(removed, []string{"a.pdf=/books/a.pdf"}) {
		t.Fatalf("unexpected hook calls %v", removed)
	}
	if err := m.RemoveBook("a.pdf"); !errors.Is(err, library.ErrUnknownBook) {
		t.Fatalf("expected ErrUnknownBook, got %v", err)
	}
}

func TestEventsFollowMutations(t *testing.T) {
	m := newManager(t, nil)
	events, cancel := m.Subscribe()

	_ = m.OpenBook("a.pdf")
	ev := <-events
	if ev.Type != TabsChanged || ev.Book != "a.pdf" || !slices.Equal(ev.Tabs, []string{"a.pdf"}) || ev.Active != 0 {
		t.Fatalf("unexpected event %+v", ev)
	}
	m.CloseBook(5)
	m.ClearAllData()
	if ev := <-events; ev.Type != Cleared {
		t.Fatalf("expected cleared event after an ignored close, got %+v", ev)
	}

	cancel()
	if _, ok := <-events; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	cancel()
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	m := newManager(t, nil)
	_, cancel := m.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*4; i++ {
			m.SwitchToBook(0)
			_ = m.OpenBook("a.pdf")
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("mutations blocked on a full subscriber")
	}
}

func TestDebouncedWritesLandOnFlush(t *testing.T) {
	store := kv.NewMemory(nil)
	m := New(store, WithDebounce(time.Hour))
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	_ = m.OpenBook("a.pdf")
	_ = m.OpenBook("b.pdf")

	if _, ok := store.GetStringList(KeyOpenBooks); ok {
		t.Fatalf("expected write to be pending")
	}
	if got := m.GetOpenBooks(); len(got) != 2 {
		t.Fatalf("in-memory state must be visible immediately, got %v", got)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if tabs, _ := store.GetStringList(KeyOpenBooks); !slices.Equal(tabs, []string{"a.pdf", "b.pdf"}) {
		t.Fatalf("expected tabs persisted on close, got %v", tabs)
	}
	if idx, _ := store.GetInt(KeyCurrentIndex); idx != 1 {
		t.Fatalf("expected index persisted on close, got %d", idx)
	}
}

type brokenStore struct {
	kv.Store
}

func (brokenStore) SaveStringList(string, []string) error { return kv.ErrStorage }
func (brokenStore) SaveInt(string, int) error             { return kv.ErrStorage }

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	m := newManager(t, brokenStore{Store: kv.NewMemory(nil)})
	if err := m.OpenBook("a.pdf"); err != nil {
		t.Fatalf("open must succeed despite storage failure: %v", err)
	}
	if got := m.GetOpenBooks(); !slices.Equal(got, []string{"a.pdf"}) {
		t.Fatalf("in-memory state must stay authoritative, got %v", got)
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	m := newManager(t, nil)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = m.OpenBook(fmt.Sprintf("%d-%d.pdf", w, i%12))
				m.CloseBook(i % 5)
				m.SwitchToBook(i % 3)
				_, _ = m.GetCurrentBook()
				_ = m.GetAllBooks()
			}
		}(w)
	}
	wg.Wait()
	checkTabState(t, m)
}
