// Package document owns opened document handles and the derived artifacts
// rendered from them.
//
// Rendering itself is delegated to a Renderer. The Cache guarantees at most
// one live Handle per path and releases handles only when asked to.
package document

import (
	"errors"
	"image"
)

var (
	// ErrUnreadable is returned when a document cannot be opened or parsed:
	// missing file, corrupt format or permission denied.
	ErrUnreadable = errors.New("document: unreadable")

	// ErrNotCached is returned when no handle is held for a path.
	ErrNotCached = errors.New("document: not cached")
)

// Renderer opens documents. Implementations must return a nil Handle when
// the error is non-nil, but the Cache closes a non-nil one defensively.
type Renderer interface {
	Open(path string) (Handle, error)
}

// Handle is an open document. It must be safe for concurrent use.
type Handle interface {
	PageCount() (int, error)
	// Page returns the page at a 0-based index.
	Page(index int) (Page, error)
	Outline() ([]OutlineItem, error)
	Close() error
}

// Page is a single page of an open document.
type Page interface {
	Render(width, height int) (image.Image, error)
}

// OutlineItem is one entry of a document's table of contents. Page is the
// 0-based destination page, or -1 when it cannot be resolved.
type OutlineItem struct {
	Title    string        `json:"title" yaml:"title"`
	Page     int           `json:"page" yaml:"page"`
	Children []OutlineItem `json:"children,omitempty" yaml:"children,omitempty"`
}
