package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultVersion is reported when the binary carries no build version.
const DefaultVersion = "dev"

// Server exposes the loaded standards to MCP clients: ingest, ask, card and
// quiz generation, export and page lookup, plus a resource per document.
type Server struct {
	ports  *Ports
	impl   *mcp.Implementation
	server *mcp.Server
}

// NewServer creates a server over ports that reports version to clients
// during initialisation.
func NewServer(ports *Ports, version string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "clauselab",
		Version: serverVersion(version),
	}

	s := &Server{
		ports:  ports,
		impl:   impl,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Implementation returns the name and version advertised to clients.
func (s *Server) Implementation() (name, version string) {
	return s.impl.Name, s.impl.Version
}

func serverVersion(v string) string {
	if v == "" {
		return DefaultVersion
	}
	return v
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
