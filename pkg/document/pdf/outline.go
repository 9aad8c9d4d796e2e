package pdf

import (
	"bytes"

	"github.com/tsawler/tabula/core"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"tableflip.dev/folio/pkg/document"
)

// Outline walks the document's /Outlines tree. A document without one
// yields an empty outline.
func (d *Document) Outline() ([]document.OutlineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}

	catalog, err := d.r.GetCatalog()
	if err != nil {
		return nil, err
	}
	root, ok := resolveDict(d.r, catalog.Get("Outlines"))
	if !ok {
		return []document.OutlineItem{}, nil
	}
	if d.pageIndex == nil {
		d.pageIndex = pageRefs(d.r, catalog)
	}

	w := &outlineWalker{
		r:       d.r,
		catalog: catalog,
		pages:   d.pageIndex,
		seen:    make(map[int]bool),
	}
	return w.siblings(root.Get("First"), 0), nil
}

type outlineWalker struct {
	r       objectResolver
	catalog core.Dict
	pages   map[int]int
	seen    map[int]bool
}

func (w *outlineWalker) siblings(first core.Object, depth int) []document.OutlineItem {
	items := []document.OutlineItem{}
	if depth >= maxOutlineDepth {
		return items
	}
	for next := first; next != nil; {
		if ref, ok := next.(core.IndirectRef); ok {
			if w.seen[ref.Number] {
				break
			}
			w.seen[ref.Number] = true
		}
		node, ok := resolveDict(w.r, next)
		if !ok {
			break
		}
		title, _ := w.r.Resolve(node.Get("Title"))
		item := document.OutlineItem{
			Title: decodeText(title),
			Page:  w.destination(node),
		}
		if kids := w.siblings(node.Get("First"), depth+1); len(kids) > 0 {
			item.Children = kids
		}
		items = append(items, item)
		next = node.Get("Next")
	}
	return items
}

// destination maps an outline node to a 0-based page index, or -1.
func (w *outlineWalker) destination(node core.Dict) int {
	if dest := node.Get("Dest"); dest != nil {
		return w.resolveDest(dest, 0)
	}
	action, ok := resolveDict(w.r, node.Get("A"))
	if !ok {
		return -1
	}
	if s, _ := action.GetName("S"); s != "GoTo" {
		return -1
	}
	return w.resolveDest(action.Get("D"), 0)
}

func (w *outlineWalker) resolveDest(dest core.Object, depth int) int {
	if dest == nil || depth > 4 {
		return -1
	}
	obj, err := w.r.Resolve(dest)
	if err != nil {
		return -1
	}
	switch v := obj.(type) {
	case core.Array:
		if len(v) == 0 {
			return -1
		}
		switch target := v[0].(type) {
		case core.IndirectRef:
			if idx, ok := w.pages[target.Number]; ok {
				return idx
			}
		case core.Int:
			// Remote-style destinations carry a page number instead of a ref.
			if target >= 0 {
				return int(target)
			}
		}
		return -1
	case core.Dict:
		return w.resolveDest(v.Get("D"), depth+1)
	case core.Name:
		return w.resolveDest(w.named(string(v)), depth+1)
	case core.String:
		return w.resolveDest(w.named(string(v)), depth+1)
	}
	return -1
}

// named looks a destination up in the catalog's /Dests dictionary and then
// in the /Names /Dests name tree.
func (w *outlineWalker) named(name string) core.Object {
	if dests, ok := resolveDict(w.r, w.catalog.Get("Dests")); ok {
		if d := dests.Get(name); d != nil {
			return d
		}
	}
	names, ok := resolveDict(w.r, w.catalog.Get("Names"))
	if !ok {
		return nil
	}
	tree, ok := resolveDict(w.r, names.Get("Dests"))
	if !ok {
		return nil
	}
	return w.lookupNameTree(tree, name, 0)
}

func (w *outlineWalker) lookupNameTree(node core.Dict, name string, depth int) core.Object {
	if depth > maxOutlineDepth {
		return nil
	}
	if arr, ok := resolveArray(w.r, node.Get("Names")); ok {
		for i := 0; i+1 < len(arr); i += 2 {
			key, err := w.r.Resolve(arr[i])
			if err != nil {
				continue
			}
			if s, ok := key.(core.String); ok && string(s) == name {
				return arr[i+1]
			}
		}
	}
	kids, ok := resolveArray(w.r, node.Get("Kids"))
	if !ok {
		return nil
	}
	for _, kid := range kids {
		child, ok := resolveDict(w.r, kid)
		if !ok {
			continue
		}
		if limits, ok := resolveArray(w.r, child.Get("Limits")); ok && len(limits) == 2 {
			lo, _ := limits[0].(core.String)
			hi, _ := limits[1].(core.String)
			if name < string(lo) || name > string(hi) {
				continue
			}
		}
		if v := w.lookupNameTree(child, name, depth+1); v != nil {
			return v
		}
	}
	return nil
}

// pageRefs maps page object numbers to 0-based page indexes by walking the
// page tree in document order.
func pageRefs(r objectResolver, catalog core.Dict) map[int]int {
	refs := make(map[int]int)
	seen := make(map[int]bool)
	next := 0
	var walk func(obj core.Object, depth int)
	walk = func(obj core.Object, depth int) {
		if depth > maxOutlineDepth {
			return
		}
		ref, isRef := obj.(core.IndirectRef)
		if isRef {
			if seen[ref.Number] {
				return
			}
			seen[ref.Number] = true
		}
		node, ok := resolveDict(r, obj)
		if !ok {
			return
		}
		if kids, ok := resolveArray(r, node.Get("Kids")); ok {
			for _, kid := range kids {
				walk(kid, depth+1)
			}
			return
		}
		if isRef {
			refs[ref.Number] = next
		}
		next++
	}
	walk(catalog.Get("Pages"), 0)
	return refs
}

func resolveArray(r objectResolver, obj core.Object) (core.Array, bool) {
	if obj == nil {
		return nil, false
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, false
	}
	a, ok := v.(core.Array)
	return a, ok
}

var utf16BOM = []byte{0xFE, 0xFF}

// decodeText decodes a PDF text string: UTF-16BE with a byte order mark, or
// PDFDocEncoding, approximated here as Latin-1.
func decodeText(obj core.Object) string {
	s, ok := obj.(core.String)
	if !ok {
		return ""
	}
	raw := []byte(s)
	if bytes.HasPrefix(raw, utf16BOM) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(raw); err == nil {
			return string(out)
		}
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
