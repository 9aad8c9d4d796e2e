package progress

import (
	"sync"
	"testing"
	"time"

	"tableflip.dev/folio/pkg/kv"
)

type write struct {
	key  string
	page int
}

// countingStore records every SaveInt that reaches the store.
type countingStore struct {
	kv.Store

	mu     sync.Mutex
	writes []write
}

func newCountingStore() *countingStore {
	return &countingStore{Store: kv.NewMemory(nil)}
}

func (s *countingStore) SaveInt(key string, value int) error {
	s.mu.Lock()
	s.writes = append(s.writes, write{key, value})
	s.mu.Unlock()
	return s.Store.SaveInt(key, value)
}

func (s *countingStore) snapshot() []write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]write(nil), s.writes...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestRapidSavesCoalesceToLatestPage(t *testing.T) {
	store := newCountingStore()
	tr := New(store, 50*time.Millisecond, nil)
	defer tr.Stop()

	tr.ScheduleSave("b.pdf", 5)
	tr.ScheduleSave("b.pdf", 9)

	waitFor(t, func() bool { return len(store.snapshot()) > 0 })
	time.Sleep(100 * time.Millisecond)

	writes := store.snapshot()
	if len(writes) != 1 || writes[0] != (write{"last_page:b.pdf", 9}) {
		t.Fatalf("expected a single write of page 9, got %+v", writes)
	}
	if page, ok := tr.GetLastReadPage("b.pdf"); !ok || page != 9 {
		t.Fatalf("expected page 9, got %d %v", page, ok)
	}
}

func TestBooksDebounceIndependently(t *testing.T) {
	store := newCountingStore()
	tr := New(store, time.Hour, nil)

	tr.ScheduleSave("a.pdf", 1)
	tr.ScheduleSave("b.pdf", 2)
	tr.ScheduleSave("a.pdf", 3)
	tr.Flush()

	got := map[string]int{}
	for _, w := range store.snapshot() {
		got[w.key] = w.page
	}
	if len(store.snapshot()) != 2 || got["last_page:a.pdf"] != 3 || got["last_page:b.pdf"] != 2 {
		t.Fatalf("unexpected writes %+v", store.snapshot())
	}
}

func TestGetLastReadPageAbsent(t *testing.T) {
	tr := New(kv.NewMemory(nil), 0, nil)
	if _, ok := tr.GetLastReadPage("never.pdf"); ok {
		t.Fatalf("expected no saved position")
	}
}

func TestPendingSaveNotVisibleUntilFlushed(t *testing.T) {
	tr := New(kv.NewMemory(nil), time.Hour, nil)
	tr.ScheduleSave("a.pdf", 4)
	if _, ok := tr.GetLastReadPage("a.pdf"); ok {
		t.Fatalf("expected pending save to be invisible")
	}
	tr.Flush()
	if page, ok := tr.GetLastReadPage("a.pdf"); !ok || page != 4 {
		t.Fatalf("expected page 4 after flush, got %d %v", page, ok)
	}
}

func TestStopDropsPendingSaves(t *testing.T) {
	store := newCountingStore()
	tr := New(store, time.Hour, nil)
	tr.ScheduleSave("a.pdf", 4)
	tr.Stop()
	tr.Flush()
	tr.ScheduleSave("a.pdf", 5)
	tr.Flush()
	if n := len(store.snapshot()); n != 0 {
		t.Fatalf("expected no writes after stop, got %d", n)
	}
}

func TestRemoveCancelsAndDeletes(t *testing.T) {
	store := newCountingStore()
	tr := New(store, time.Hour, nil)
	if err := tr.SaveNow("a.pdf", 3); err != nil {
		t.Fatalf("save now: %v", err)
	}
	tr.ScheduleSave("a.pdf", 8)

	if err := tr.Remove("a.pdf"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tr.Flush()
	if _, ok := tr.GetLastReadPage("a.pdf"); ok {
		t.Fatalf("expected position forgotten")
	}
}

func TestScheduleSaveIgnoresInvalidInput(t *testing.T) {
	store := newCountingStore()
	tr := New(store, time.Hour, nil)
	tr.ScheduleSave("", 1)
	tr.ScheduleSave("a.pdf", -1)
	tr.Flush()
	if n := len(store.snapshot()); n != 0 {
		t.Fatalf("expected no writes, got %d", n)
	}
}
