// ABOUTME: MCP server setup for the wellness tracker.
// ABOUTME: Exposes the page controllers of one signed-in user as tools and resources.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/tracker"
)

// Server wraps the MCP server with tracker access.
type Server struct {
	mcpServer *mcp.Server
	client    *storage.Client
	tracker   *tracker.Tracker
}

// NewServer creates a new MCP server over client. recognizer may be nil,
// which disables scan_meal.
func NewServer(client *storage.Client, recognizer recognition.Recognizer, opts ...tracker.Option) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "wellness",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		client:    client,
		tracker:   tracker.New(client, recognizer, opts...),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
