package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/folio/pkg/app"
)

// Transport selects how the server is exposed.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const (
	defaultAddr = "127.0.0.1:8080"
	defaultPath = "/mcp"
)

// Runner serves the library over the Model Context Protocol.
type Runner struct {
	App       *app.Service
	Version   string
	Transport Transport

	// Addr and Path configure the HTTP transport.
	Addr string
	Path string
	// Listening is called with the endpoint URL once the HTTP listener is up.
	Listening func(url string)
}

// Run serves svc over stdio until the client disconnects.
func Run(ctx context.Context, svc *app.Service) error {
	return Runner{App: svc, Transport: TransportStdio}.Do(ctx)
}

// ParseTransport accepts "http" or "stdio" in any case.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TransportHTTP:
		return TransportHTTP, nil
	case TransportStdio:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected http or stdio)", s)
	}
}

// EndpointPath normalizes p to a rooted path, defaulting to /mcp.
func EndpointPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return defaultPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (r Runner) Do(ctx context.Context) error {
	if r.App == nil {
		return errors.New("mcp: no library")
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		"folio MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Import, open and track reading progress of the books in a folio library."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.App)
	registerResources(srv, svc)
	registerTools(srv, svc)

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("mcp: unknown transport %q", r.Transport)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	addr := r.Addr
	if addr == "" {
		addr = defaultAddr
	}
	path := EndpointPath(r.Path)

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", addr, err)
	}
	if r.Listening != nil {
		r.Listening(endpointURL(ln.Addr(), path))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// endpointURL renders a dialable URL; unspecified listen addresses show as loopback.
func endpointURL(a net.Addr, path string) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return "http://" + a.String() + path
	}
	host := "127.0.0.1"
	if tcp.IP != nil && !tcp.IP.IsUnspecified() {
		host = tcp.IP.String()
	}
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(host, fmt.Sprint(tcp.Port)), path)
}
