package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/contexto/internal/explore"
	"github.com/mvp-joe/contexto/internal/indexer"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "contexto"

// Server exposes an Explorer over MCP on stdio.
type Server struct {
	explorer *explore.Explorer
	indexer  *indexer.Indexer
	mcp      *server.MCPServer
}

// NewServer registers the read tools for explorer. When idx is non-nil,
// Serve also watches the project and re-indexes incrementally on change.
func NewServer(explorer *explore.Explorer, idx *indexer.Indexer, version string) (*Server, error) {
	if explorer == nil {
		return nil, fmt.Errorf("explorer is required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	AddTools(mcpServer, explorer)

	return &Server{
		explorer: explorer,
		indexer:  idx,
		mcp:      mcpServer,
	}, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve runs the server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 2)
	if s.indexer != nil {
		go func() {
			if err := s.indexer.Watch(ctx, s.onReindex); err != nil {
				errCh <- fmt.Errorf("watch failed: %w", err)
			}
		}()
	}

	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onReindex drops cached read results after a watch-triggered run.
func (s *Server) onReindex(files []string, stats *indexer.IndexStats, err error) {
	if err != nil {
		if !errors.Is(err, indexer.ErrIndexLocked) {
			log.Printf("Warning: reindex after %d changed paths failed: %v", len(files), err)
		}
		return
	}
	s.explorer.Invalidate()
	log.Printf("Reindexed %d changed paths (%d added, %d modified, %d removed)",
		len(files), stats.FilesAdded, stats.FilesModified, stats.FilesRemoved)
}
