package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is emitted by Watch when a key file changes on disk. An empty Key
// means the change could not be attributed and callers should reload
// everything.
type Event struct {
	Key string
}

// Watcher is implemented by backends that can report out-of-process writes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

var _ Watcher = (*Diskv)(nil)

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel; events are dropped when the consumer falls behind. The
// channel is closed once ctx is done or the watcher fails.
func (s *Diskv) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("kv: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("kv: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.log.Warn("kv: watcher close", "err", err)
			}
		})
	}

	if err := watcher.Add(s.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("kv: watch %s: %w", s.basePath, err)
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Debug("kv: watcher error", "err", err)
				throttle.Enqueue(Event{}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Key: s.keyForPath(evt.Name)}, send)
			}
		}
	}()

	return events, nil
}

func (s *Diskv) keyForPath(path string) string {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." || filepath.Dir(rel) != "." {
		return ""
	}
	return keyForFile(rel)
}

// eventThrottle coalesces bursts of file notifications into one event per key.
// Once Stop returns no flush is running and none will start.
type eventThrottle struct {
	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]struct{}
	delay    time.Duration
	stopped  bool
	inflight sync.WaitGroup
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[ev.Key] = struct{}{}
	if t.timer == nil {
		t.inflight.Add(1)
		t.timer = time.AfterFunc(t.delay, func() {
			defer t.inflight.Done()
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, all := pending[""]; all {
		send(Event{})
		return
	}
	for key := range pending {
		send(Event{Key: key})
	}
}

// Stop cancels a scheduled flush and waits for one already running.
func (t *eventThrottle) Stop() {
	t.mu.Lock()
	t.stopped = true
	if t.timer != nil {
		if t.timer.Stop() {
			t.inflight.Done()
		}
		t.timer = nil
	}
	t.mu.Unlock()
	t.inflight.Wait()
}
