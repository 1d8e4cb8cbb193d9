// ABOUTME: MCP server exposing the bookmark sync engine to AI agents
// ABOUTME: Thin presentation glue; all reconciliation decisions stay in the engine

package mcp

import (
	"github.com/harper/linkhoard/internal/sync"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with the linkhoard engine.
type Server struct {
	mcpServer *server.MCPServer
	engine    *sync.Engine
}

// NewServer creates a new MCP server instance over the engine.
func NewServer(engine *sync.Engine) *Server {
	s := &Server{engine: engine}

	s.mcpServer = server.NewMCPServer(
		"linkhoard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
