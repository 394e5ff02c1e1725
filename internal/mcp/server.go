// Package mcp exposes note retrieval as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/config"
	"github.com/hyperjump/notesearch/internal/search"
	"github.com/hyperjump/notesearch/pkg/utils"
)

// ServerName is the MCP server name.
const ServerName = "notesearch"

// Server wraps the MCP server with the retrieval engine.
type Server struct {
	mcp    *server.MCPServer
	engine *search.Engine
	config *config.Config
	logger *zap.Logger
}

// NewServer creates an MCP server exposing the note tools.
func NewServer(engine *search.Engine, cfg *config.Config, version string, logger *zap.Logger) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, version),
		engine: engine,
		config: cfg,
		logger: utils.OrNop(logger),
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdin/stdout and blocks until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server on stdio",
		zap.String("location", s.engine.Location()),
		zap.String("collection", s.engine.Collection()))
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(getRelevantNotesTool(s.config.RankingDefaults(), s.config.Retrieval.MaxTopK), s.handleGetRelevantNotes)
	s.mcp.AddTool(notesStatusTool(), s.handleNotesStatus)
}
