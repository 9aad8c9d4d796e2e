package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerSessionResource(srv, svc)
	registerCatalogResource(srv, svc)
	registerBookTemplate(srv, svc)
}

func registerSessionResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"folio://session",
		"Session",
		mcp.WithResourceDescription("Open tabs and the active tab index."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		state, err := svc.State(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, state)
	})
}

func registerCatalogResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"folio://books",
		"Catalog",
		mcp.WithResourceDescription("Every book in the library with its path and saved page."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		books, err := svc.ListBooks(ctx, true)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"books": books,
			"count": len(books),
		})
	})
}

func registerBookTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"folio://books/{name}",
		"Book",
		mcp.WithTemplateDescription("A single catalog entry."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name, _ := request.Params.Arguments["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("book name is required")
		}
		if err := svc.ready(ctx); err != nil {
			return nil, err
		}
		book, err := svc.book(name)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"book": book})
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
