package session

import "slices"

// EventType identifies what changed.
type EventType int

const (
	// TabsChanged fires when the open tabs or the active tab change.
	TabsChanged EventType = iota
	// CatalogChanged fires when a book is registered or removed.
	CatalogChanged
	// Cleared fires after ClearAllData.
	Cleared
	// Restored fires once from Initialize when tabs were restored.
	Restored
)

func (t EventType) String() string {
	switch t {
	case TabsChanged:
		return "tabs-changed"
	case CatalogChanged:
		return "catalog-changed"
	case Cleared:
		return "cleared"
	case Restored:
		return "restored"
	default:
		return "unknown"
	}
}

// Event is a snapshot of the session taken right after a mutation.
type Event struct {
	Type   EventType
	Tabs   []string
	Active int
	// Book is the name the mutation concerned, if any.
	Book string
}

const subscriberBuffer = 32

// Subscribe returns a channel of session events and a function that ends
// the subscription and closes the channel. Slow subscribers miss events
// rather than block the session.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	if m.subsClosed {
		m.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	return ch, func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

func (m *Manager) emit(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for id, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.log.Debug("session: subscriber full, event dropped", "subscriber", id, "event", ev.Type.String())
		}
	}
}

func (m *Manager) closeSubscribers() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subsClosed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

// eventLocked snapshots the tab state; the caller holds mu.
func (m *Manager) eventLocked(t EventType, book string) Event {
	return Event{Type: t, Tabs: slices.Clone(m.tabs), Active: m.active, Book: book}
}
