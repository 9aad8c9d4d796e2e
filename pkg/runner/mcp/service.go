// Package mcp exposes a folio library over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/document"
	"tableflip.dev/folio/pkg/library"
)

// Service adapts app.Service to the request shapes the MCP tools use.
type Service struct {
	App *app.Service
}

// ErrNoLibrary is returned when the service has nothing to serve.
var ErrNoLibrary = errors.New("library is not configured")

// Progress is the saved reading position of a book.
type Progress struct {
	Name  string `json:"name"`
	Page  int    `json:"page"`
	Saved bool   `json:"saved"`
}

// NewService wraps svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

func (s *Service) ready(ctx context.Context) error {
	if s.App == nil {
		return ErrNoLibrary
	}
	return ctx.Err()
}

// ImportBook copies a PDF into the library.
func (s *Service) ImportBook(ctx context.Context, source string) (app.Book, error) {
	if err := s.ready(ctx); err != nil {
		return app.Book{}, err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return app.Book{}, errors.New("source path is required")
	}
	name, err := s.App.Import(ctx, source)
	if err != nil {
		return app.Book{}, err
	}
	return s.book(name)
}

// OpenBook focuses or opens a tab.
func (s *Service) OpenBook(ctx context.Context, name string) (*app.Reading, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	r, err := s.App.Open(name)
	if err != nil && r == nil {
		return nil, err
	}
	// An unreadable document still has its tab.
	return r, nil
}

// CloseBook closes the tab at a 0-based index.
func (s *Service) CloseBook(ctx context.Context, index int) (app.State, error) {
	if err := s.ready(ctx); err != nil {
		return app.State{}, err
	}
	if err := s.App.CloseTab(index); err != nil {
		return app.State{}, err
	}
	return s.App.State(), nil
}

// SwitchBook activates the tab at a 0-based index.
func (s *Service) SwitchBook(ctx context.Context, index int) (app.State, error) {
	if err := s.ready(ctx); err != nil {
		return app.State{}, err
	}
	if err := s.App.SwitchTab(index); err != nil {
		return app.State{}, err
	}
	return s.App.State(), nil
}

// ListBooks returns open tabs, or the whole catalog when all is set.
func (s *Service) ListBooks(ctx context.Context, all bool) ([]app.Book, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.App.Books(all), nil
}

// State returns the open tabs.
func (s *Service) State(ctx context.Context) (app.State, error) {
	if err := s.ready(ctx); err != nil {
		return app.State{}, err
	}
	return s.App.State(), nil
}

// SaveProgress records page for name and writes it straight away.
func (s *Service) SaveProgress(ctx context.Context, name string, page int) (Progress, error) {
	if err := s.ready(ctx); err != nil {
		return Progress{}, err
	}
	if err := s.App.SetPage(name, page); err != nil {
		return Progress{}, err
	}
	s.App.Progress.Flush()
	return s.GetProgress(ctx, name)
}

// GetProgress returns the saved page for name.
func (s *Service) GetProgress(ctx context.Context, name string) (Progress, error) {
	if err := s.ready(ctx); err != nil {
		return Progress{}, err
	}
	if !s.App.Session.HasBook(name) {
		return Progress{}, fmt.Errorf("%w: %q", library.ErrUnknownBook, name)
	}
	page, ok := s.App.LastPage(name)
	return Progress{Name: name, Page: page, Saved: ok}, nil
}

// Outline returns the table of contents of name.
func (s *Service) Outline(ctx context.Context, name string) ([]document.OutlineItem, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.App.Outline(name)
}

// RemoveBook forgets name.
func (s *Service) RemoveBook(ctx context.Context, name string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.App.Remove(name)
}

func (s *Service) book(name string) (app.Book, error) {
	for _, b := range s.App.Books(true) {
		if b.Name == name {
			return b, nil
		}
	}
	return app.Book{}, fmt.Errorf("%w: %q", library.ErrUnknownBook, name)
}
