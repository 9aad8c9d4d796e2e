// Package pdf adapts github.com/tsawler/tabula to the document.Renderer
// interface.
//
// Pages are rasterized from their embedded images only: the largest image
// XObject on the page is scaled onto a white canvas sized to the page box.
// Vector content and text are not drawn.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"golang.org/x/image/draw"

	"tableflip.dev/folio/pkg/document"
)

// maxOutlineDepth bounds recursion through malformed outline trees.
const maxOutlineDepth = 32

var errClosed = errors.New("pdf: document closed")

// Renderer opens PDF files with tabula.
type Renderer struct{}

// NewRenderer returns a tabula backed renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

var _ document.Renderer = (*Renderer)(nil)

// Open parses the header, xref table and page tree of path.
func (r *Renderer) Open(path string) (document.Handle, error) {
	rd, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := rd.PageCount(); err != nil {
		_ = rd.Close()
		return nil, fmt.Errorf("pdf: page tree: %w", err)
	}
	return &Document{path: path, r: rd}, nil
}

// Document is an open PDF. The tabula reader caches parsed objects in a
// plain map, so every access goes through mu.
type Document struct {
	path string

	mu        sync.Mutex
	r         *reader.Reader
	closed    bool
	pageIndex map[int]int
}

var _ document.Handle = (*Document)(nil)

func (d *Document) PageCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, errClosed
	}
	return d.r.PageCount()
}

// Page resolves the page at index and returns a renderable reference to it.
func (d *Document) Page(index int) (document.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	n, err := d.r.PageCount()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= n {
		return nil, fmt.Errorf("pdf: page %d out of range [0,%d)", index, n)
	}
	p, err := d.r.GetPage(index)
	if err != nil {
		return nil, fmt.Errorf("pdf: page %d: %w", index, err)
	}
	return &Page{doc: d, page: p, index: index}, nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.r.Close()
}

// Page is a single resolved page of a Document.
type Page struct {
	doc   *Document
	page  *pages.Page
	index int
}

// Render returns a raster no larger than width x height, preserving the
// page's aspect ratio.
func (p *Page) Render(width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pdf: invalid raster size %dx%d", width, height)
	}

	p.doc.mu.Lock()
	if p.doc.closed {
		p.doc.mu.Unlock()
		return nil, errClosed
	}
	pw, errW := p.page.Width()
	ph, errH := p.page.Height()
	images, errI := p.doc.r.ExtractPageImages(p.page)
	p.doc.mu.Unlock()

	if errW != nil || errH != nil || pw <= 0 || ph <= 0 {
		// US Letter when the page box is missing or broken.
		pw, ph = 612, 792
	}
	if errI != nil {
		return nil, fmt.Errorf("pdf: page %d images: %w", p.index, errI)
	}

	w, h := fit(pw, ph, width, height)
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	src := largestImage(images)
	if src == nil {
		return canvas, nil
	}
	data, err := src.ToPNG()
	if err != nil {
		return nil, fmt.Errorf("pdf: page %d image %s: %w", p.index, src.Name, err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pdf: page %d image %s: %w", p.index, src.Name, err)
	}
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, img.Bounds(), draw.Over, nil)
	return canvas, nil
}

// fit scales a pw x ph box down (or up) to fit inside maxW x maxH.
func fit(pw, ph float64, maxW, maxH int) (int, int) {
	scale := math.Min(float64(maxW)/pw, float64(maxH)/ph)
	w := int(math.Round(pw * scale))
	h := int(math.Round(ph * scale))
	return max(w, 1), max(h, 1)
}

func largestImage(images []reader.PageImage) *reader.PageImage {
	var best *reader.PageImage
	for i := range images {
		img := &images[i]
		if img.Width <= 0 || img.Height <= 0 {
			continue
		}
		if best == nil || img.Width*img.Height > best.Width*best.Height {
			best = img
		}
	}
	return best
}

// objectResolver is the subset of the tabula reader used for outline walks.
type objectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

func resolveDict(r objectResolver, obj core.Object) (core.Dict, bool) {
	if obj == nil {
		return nil, false
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, false
	}
	d, ok := v.(core.Dict)
	return d, ok
}
