package config

import "tableflip.dev/folio/pkg/kv"

// KeyAutoRestore stores whether open tabs are restored on startup.
const KeyAutoRestore = "auto_restore"

// Settings are user preferences persisted in the key-value store.
type Settings struct {
	store kv.Store
}

// NewSettings reads and writes preferences through store.
func NewSettings(store kv.Store) *Settings {
	return &Settings{store: store}
}

// AutoRestore reports whether the previous session's tabs should be reopened.
// It defaults to true when never set.
func (s *Settings) AutoRestore() bool {
	if s == nil || s.store == nil {
		return true
	}
	v, ok := s.store.GetBool(KeyAutoRestore)
	if !ok {
		return true
	}
	return v
}

// SetAutoRestore persists the auto-restore preference.
func (s *Settings) SetAutoRestore(enabled bool) error {
	return s.store.SaveBool(KeyAutoRestore, enabled)
}
