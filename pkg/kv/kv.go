// Package kv is the durable key-value store behind the reading session.
//
// Values are JSON encoded. Reads never fail: a missing key, an uninitialized
// backend or a decode error all read as "absent". Writes report failures as
// errors wrapping ErrStorage and never panic.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// ErrStorage wraps every persistence write failure.
var ErrStorage = errors.New("kv: storage failure")

var errNotFound = errors.New("kv: key not found")

// Store is the typed key-value contract consumed by the session subsystem.
type Store interface {
	GetString(key string) (string, bool)
	SaveString(key, value string) error
	GetInt(key string) (int, bool)
	SaveInt(key string, value int) error
	GetBool(key string) (bool, bool)
	SaveBool(key string, value bool) error
	GetStringList(key string) ([]string, bool)
	SaveStringList(key string, value []string) error
	Remove(key string) error
	Clear() error
}

// rawStore is the byte-level contract each backend implements.
type rawStore interface {
	read(key string) ([]byte, error)
	write(key string, value []byte) error
	erase(key string) error
	eraseAll() error
}

// typed adapts a rawStore to Store. Backends embed it.
type typed struct {
	raw rawStore
	log *slog.Logger
}

func newTyped(raw rawStore, log *slog.Logger) typed {
	if log == nil {
		log = slog.Default()
	}
	return typed{raw: raw, log: log}
}

func (t typed) get(key string, v any) bool {
	data, err := t.raw.read(key)
	if err != nil {
		if !errors.Is(err, errNotFound) {
			t.log.Warn("kv: read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.log.Warn("kv: decode failed", "key", key, "err", err)
		return false
	}
	return true
}

func (t typed) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrStorage, key, err)
	}
	if err := t.raw.write(key, data); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrStorage, key, err)
	}
	return nil
}

func (t typed) GetString(key string) (string, bool) {
	var s string
	ok := t.get(key, &s)
	return s, ok
}

func (t typed) SaveString(key, value string) error {
	return t.put(key, value)
}

func (t typed) GetInt(key string) (int, bool) {
	var i int
	ok := t.get(key, &i)
	return i, ok
}

func (t typed) SaveInt(key string, value int) error {
	return t.put(key, value)
}

func (t typed) GetBool(key string) (bool, bool) {
	var b bool
	ok := t.get(key, &b)
	return b, ok
}

func (t typed) SaveBool(key string, value bool) error {
	return t.put(key, value)
}

func (t typed) GetStringList(key string) ([]string, bool) {
	var list []string
	if !t.get(key, &list) {
		return nil, false
	}
	if list == nil {
		list = []string{}
	}
	return list, true
}

func (t typed) SaveStringList(key string, value []string) error {
	if value == nil {
		value = []string{}
	}
	return t.put(key, value)
}

func (t typed) Remove(key string) error {
	if err := t.raw.erase(key); err != nil && !errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: remove %q: %w", ErrStorage, key, err)
	}
	return nil
}

func (t typed) Clear() error {
	if err := t.raw.eraseAll(); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrStorage, err)
	}
	return nil
}
