// Package library is the catalog of known books: an insertion ordered set
// of names and the managed file path of each.
package library

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"tableflip.dev/folio/pkg/kv"
)

// Persisted keys.
const (
	KeyAllBooks  = "all_books"
	KeyBookPaths = "book_paths"
)

// ErrUnknownBook is returned when a name is not in the catalog.
var ErrUnknownBook = errors.New("library: unknown book")

const pathSep = "|"

// Catalog is not safe for concurrent use.
type Catalog struct {
	names []string
	paths map[string]string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{paths: make(map[string]string)}
}

// Load replaces the catalog with what store holds. Duplicate and empty
// names are dropped and malformed path entries are skipped.
func (c *Catalog) Load(store kv.Store) {
	c.Clear()
	names, _ := store.GetStringList(KeyAllBooks)
	for _, n := range names {
		c.Add(n)
	}
	entries, _ := store.GetStringList(KeyBookPaths)
	for _, e := range entries {
		name, path, ok := c.splitEntry(e)
		if !ok {
			continue
		}
		c.Add(name)
		c.paths[name] = path
	}
}

// Save writes the names and path entries to store.
func (c *Catalog) Save(store kv.Store) error {
	return errors.Join(
		store.SaveStringList(KeyAllBooks, c.Names()),
		store.SaveStringList(KeyBookPaths, c.entries()),
	)
}

// Add inserts name if absent and reports whether it was added.
func (c *Catalog) Add(name string) bool {
	if name == "" || c.Contains(name) {
		return false
	}
	c.names = append(c.names, name)
	return true
}

// SetPath records the managed path of name, adding name if needed.
func (c *Catalog) SetPath(name, path string) {
	if name == "" {
		return
	}
	c.Add(name)
	if path == "" {
		delete(c.paths, name)
		return
	}
	c.paths[name] = path
}

func (c *Catalog) Contains(name string) bool {
	return slices.Contains(c.names, name)
}

// Path returns the managed file path of name.
func (c *Catalog) Path(name string) (string, error) {
	if !c.Contains(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownBook, name)
	}
	p, ok := c.paths[name]
	if !ok {
		return "", fmt.Errorf("library: %q has no file path", name)
	}
	return p, nil
}

// Remove drops name and its path.
func (c *Catalog) Remove(name string) error {
	i := slices.Index(c.names, name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownBook, name)
	}
	c.names = slices.Delete(c.names, i, i+1)
	delete(c.paths, name)
	return nil
}

// Names returns a copy of the names in insertion order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Clone returns an independent copy.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{names: slices.Clone(c.names), paths: maps.Clone(c.paths)}
}

func (c *Catalog) Len() int {
	return len(c.names)
}

func (c *Catalog) Clear() {
	c.names = nil
	c.paths = make(map[string]string)
}

func (c *Catalog) entries() []string {
	out := make([]string, 0, len(c.paths))
	for _, n := range c.names {
		if p, ok := c.paths[n]; ok {
			out = append(out, n+pathSep+p)
		}
	}
	return out
}

// splitEntry splits "name|path". Names may contain the separator, so the
// longest already known name prefixing the entry wins; otherwise the entry is
// cut at the first separator.
func (c *Catalog) splitEntry(e string) (name, path string, ok bool) {
	for _, n := range c.names {
		if len(n) > len(name) && strings.HasPrefix(e, n+pathSep) {
			name = n
		}
	}
	if name != "" {
		path = e[len(name)+len(pathSep):]
	} else {
		name, path, _ = strings.Cut(e, pathSep)
	}
	if name == "" || path == "" {
		return "", "", false
	}
	return name, path, true
}
