package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerImportBookTool(srv, svc)
	registerOpenBookTool(srv, svc)
	registerCloseBookTool(srv, svc)
	registerSwitchBookTool(srv, svc)
	registerListBooksTool(srv, svc)
	registerSaveProgressTool(srv, svc)
	registerGetProgressTool(srv, svc)
	registerOutlineTool(srv, svc)
	registerRemoveBookTool(srv, svc)
}

func registerImportBookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"import_book",
		mcp.WithDescription("Copy a PDF into the library and add it to the catalog."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Path of the PDF to import."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := request.RequireString("source")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		book, err := svc.ImportBook(ctx, source)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(book)
	})
}

func registerOpenBookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"open_book",
		mcp.WithDescription("Open a book in a tab, or focus its tab if already open. At most 10 tabs may be open."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Book name as listed in the catalog."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reading, err := svc.OpenBook(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(reading)
	})
}

func registerCloseBookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"close_book",
		mcp.WithDescription("Close the tab at a 0-based index."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("0-based tab index."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Index int `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		state, err := svc.CloseBook(ctx, args.Index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(state)
	})
}

func registerSwitchBookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"switch_book",
		mcp.WithDescription("Make the tab at a 0-based index the active one."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("0-based tab index."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Index int `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		state, err := svc.SwitchBook(ctx, args.Index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(state)
	})
}

func registerListBooksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_books",
		mcp.WithDescription("List open books, or every book in the catalog."),
		mcp.WithBoolean("all",
			mcp.Description("Include books that are not open."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			All bool `json:"all"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		books, err := svc.ListBooks(ctx, args.All)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"books": books,
			"count": len(books),
		})
	})
}

func registerSaveProgressTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"save_progress",
		mcp.WithDescription("Record the 0-based page last read in a book."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Book name."),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("0-based page index."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Name string `json:"name"`
			Page int    `json:"page"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		progress, err := svc.SaveProgress(ctx, args.Name, args.Page)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(progress)
	})
}

func registerGetProgressTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_progress",
		mcp.WithDescription("Fetch the saved page of a book."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Book name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		progress, err := svc.GetProgress(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(progress)
	})
}

func registerOutlineTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_outline",
		mcp.WithDescription("Fetch a book's table of contents with 0-based destination pages."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Book name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		items, err := svc.Outline(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"name":    name,
			"outline": items,
		})
	})
}

func registerRemoveBookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"remove_book",
		mcp.WithDescription("Forget a book: close its tab and drop its progress and cover. The file stays on disk."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Book name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.RemoveBook(ctx, name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"removed": name})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
