package cli

import (
	"fmt"
	"log"

	"github.com/mvp-joe/contexto/internal/indexer"
	"github.com/mvp-joe/contexto/internal/mcp"
	"github.com/spf13/cobra"
)

var serveWatchFlag bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Start the MCP server for code navigation",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
explore the indexed project.

The MCP server:
- Exposes the map, expand, inspect, read, and search tools
- Communicates via stdio (standard MCP transport)
- With --watch, reindexes incrementally as files change

Example:
  contexto serve
  contexto serve /path/to/project --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVarP(&serveWatchFlag, "watch", "w", false, "Reindex incrementally when files change")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withProject(ctx, args, func(p *project) error {
		var idx *indexer.Indexer
		if serveWatchFlag {
			var err error
			idx, err = indexer.New(p.cfg.ToIndexerConfig(p.rootDir), p.store, p.engine, nil)
			if err != nil {
				return fmt.Errorf("failed to create indexer: %w", err)
			}
			// Catch up on edits made while the server was down
			if _, err := idx.IndexIncremental(ctx); err != nil {
				log.Printf("Warning: initial incremental index failed: %v", err)
			}
			p.explorer.Invalidate()
		}

		server, err := mcp.NewServer(p.explorer, idx, Version)
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}

		log.Printf("Contexto MCP server for %s (index: %s)", p.rootDir, p.store.Path())
		if err := server.Serve(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	})
}
