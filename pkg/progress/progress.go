// Package progress remembers the last page read in each book.
//
// Page changes arrive far faster than they are worth persisting, so saves
// are debounced per book: a new page restarts that book's timer and only
// the latest page is written.
package progress

import (
	"log/slog"
	"time"

	"tableflip.dev/folio/pkg/debounce"
	"tableflip.dev/folio/pkg/kv"
)

// DefaultDelay is how long a book's page must stay unchanged before it is
// saved.
const DefaultDelay = 1500 * time.Millisecond

const keyPrefix = "last_page:"

// Key returns the store key holding name's last page.
func Key(name string) string {
	return keyPrefix + name
}

// Tracker debounces page saves. Pages are 0-based.
type Tracker struct {
	store   kv.Store
	log     *slog.Logger
	pending *debounce.Group
}

// New returns a Tracker writing to store after delay of quiet per book.
func New(store kv.Store, delay time.Duration, log *slog.Logger) *Tracker {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		store:   store,
		log:     log,
		pending: debounce.NewGroup(delay),
	}
}

// ScheduleSave records page as name's position once the delay passes
// without another call for name. Negative pages are ignored.
func (t *Tracker) ScheduleSave(name string, page int) {
	if name == "" || page < 0 {
		return
	}
	t.pending.Trigger(name, func() {
		t.save(name, page)
	})
}

func (t *Tracker) save(name string, page int) {
	if err := t.store.SaveInt(Key(name), page); err != nil {
		t.log.Warn("progress: save failed", "book", name, "page", page, "err", err)
		return
	}
	t.log.Debug("progress: saved", "book", name, "page", page)
}

// GetLastReadPage returns the saved page for name. It reads the store
// directly, so a save still waiting on its timer is not visible.
func (t *Tracker) GetLastReadPage(name string) (int, bool) {
	page, ok := t.store.GetInt(Key(name))
	if !ok || page < 0 {
		return 0, false
	}
	return page, true
}

// SaveNow writes page for name immediately, replacing any pending save.
func (t *Tracker) SaveNow(name string, page int) error {
	t.pending.Cancel(name)
	return t.store.SaveInt(Key(name), page)
}

// Flush writes every pending save now.
func (t *Tracker) Flush() {
	t.pending.Flush()
}

// Stop drops pending saves and ignores later ones.
func (t *Tracker) Stop() {
	t.pending.Stop()
}

// Remove forgets name's position, including any pending save.
func (t *Tracker) Remove(name string) error {
	t.pending.Cancel(name)
	return t.store.Remove(Key(name))
}
