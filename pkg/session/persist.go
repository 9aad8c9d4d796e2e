package session

import "slices"

func (m *Manager) schedule(what string) {
	write := m.writeTabs
	if what == persistCatalog {
		write = m.writeCatalog
	}
	if m.delay <= 0 {
		write()
		return
	}
	m.persist.Trigger(what, write)
}

// writeTabs and writeCatalog snapshot under writeMu so a slow write can never
// land after a newer one.
func (m *Manager) writeTabs() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	tabs := slices.Clone(m.tabs)
	active := m.active
	m.mu.RUnlock()

	if err := m.store.SaveStringList(KeyOpenBooks, tabs); err != nil {
		m.log.Warn("session: persist open books", "err", err)
	}
	if err := m.store.SaveInt(KeyCurrentIndex, active); err != nil {
		m.log.Warn("session: persist current index", "err", err)
	}
}

func (m *Manager) writeCatalog() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	snapshot := m.catalog.Clone()
	m.mu.RUnlock()

	if err := snapshot.Save(m.store); err != nil {
		m.log.Warn("session: persist catalog", "err", err)
	}
}
