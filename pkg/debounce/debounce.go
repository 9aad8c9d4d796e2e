// Package debounce coalesces rapid repeated calls into one delayed call.
//
// Each key owns one timer. Triggering a key again before its timer fires
// restarts the timer and replaces the pending function, so only the most
// recent call survives a burst.
package debounce

import (
	"sync"
	"time"
)

type call struct {
	timer *time.Timer
	fn    func()
}

// Group debounces functions per key.
type Group struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*call
	stopped bool
}

// NewGroup returns a Group that waits delay after the last trigger of a key.
func NewGroup(delay time.Duration) *Group {
	return &Group{
		delay:   delay,
		pending: make(map[string]*call),
	}
}

// Trigger schedules fn for key, replacing and restarting any pending call.
func (g *Group) Trigger(key string, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	if prev, ok := g.pending[key]; ok {
		prev.timer.Stop()
	}
	c := &call{fn: fn}
	c.timer = time.AfterFunc(g.delay, func() {
		g.fire(key, c)
	})
	g.pending[key] = c
}

func (g *Group) fire(key string, c *call) {
	g.mu.Lock()
	if g.pending[key] != c {
		// Superseded by a later trigger or already flushed.
		g.mu.Unlock()
		return
	}
	delete(g.pending, key)
	g.mu.Unlock()
	c.fn()
}

// Flush runs every pending call now, on the caller's goroutine.
func (g *Group) Flush() {
	g.mu.Lock()
	calls := make([]*call, 0, len(g.pending))
	for key, c := range g.pending {
		c.timer.Stop()
		calls = append(calls, c)
		delete(g.pending, key)
	}
	g.mu.Unlock()

	for _, c := range calls {
		c.fn()
	}
}

// FlushKey runs the pending call for key now, if there is one.
func (g *Group) FlushKey(key string) {
	g.mu.Lock()
	c, ok := g.pending[key]
	if ok {
		c.timer.Stop()
		delete(g.pending, key)
	}
	g.mu.Unlock()

	if ok {
		c.fn()
	}
}

// Cancel drops the pending call for key without running it.
func (g *Group) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.pending[key]; ok {
		c.timer.Stop()
		delete(g.pending, key)
	}
}

// Pending reports how many keys have a call waiting.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Stop cancels all pending calls. Later triggers are ignored.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	for key, c := range g.pending {
		c.timer.Stop()
		delete(g.pending, key)
	}
}
