package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var transport, listen, path string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes the catalog, the open tabs and reading
progress as Model Context Protocol tools and resources.

The HTTP transport serves on --listen at --path; stdio talks to a single
client on stdin and stdout.`,
		Example: `  folio mcp
  folio mcp --listen :0
  folio mcp --transport stdio`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := mcp.ParseTransport(transport)
			if err != nil {
				return err
			}
			r := mcp.Runner{
				Version:   version,
				Transport: t,
				Addr:      listen,
				Path:      mcp.EndpointPath(path),
				Listening: func(url string) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP HTTP server listening on %s\n", url)
				},
			}
			return withApp(cmd, func(ctx context.Context, svc *app.Service) error {
				r.App = svc
				return r.Do(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "host:port for the HTTP transport (port 0 picks one)")
	cmd.Flags().StringVar(&path, "path", "/mcp", "HTTP endpoint path")

	topLevel.AddCommand(cmd)
}
