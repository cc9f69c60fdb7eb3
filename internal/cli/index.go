package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/contexto/internal/config"
	"github.com/mvp-joe/contexto/internal/indexer"
	"github.com/mvp-joe/contexto/internal/search"
	"github.com/mvp-joe/contexto/internal/storage"
	"github.com/spf13/cobra"
)

var (
	quietFlag       bool
	watchFlag       bool
	incrementalFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index the codebase into a navigable code graph",
	Long: `Index parses every supported source file under the project root and
stores the resulting graph of directories, files, classes, functions, and
methods in .contexto/index.db, together with a keyword search index.

The indexer:
  - Parses Python, Go, TypeScript, JavaScript, Java, Rust, C, Ruby, and PHP
  - Records signatures, docstrings, line ranges, and call names
  - Skips vendored, generated, and version-control directories
  - Re-parses only changed files in incremental mode

Examples:
  # Index the current directory
  contexto index

  # Only re-parse files whose content changed since the last run
  contexto index --incremental

  # Watch for changes and reindex incrementally
  contexto index --watch

  # Index a specific directory without progress output
  contexto index /path/to/project --quiet
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reindex incrementally")
	indexCmd.Flags().BoolVarP(&incrementalFlag, "incremental", "i", false, "Only re-parse files that changed since the last run")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling indexing...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootDir, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	indexerConfig := cfg.ToIndexerConfig(rootDir)

	incremental := incrementalFlag || watchFlag
	store, err := storage.Open(ctx, indexerConfig.DBPath)
	if errors.Is(err, storage.ErrSchemaMismatch) {
		log.Printf("Warning: %v; rebuilding index from scratch", err)
		incremental = false
		store, err = storage.Recreate(ctx, indexerConfig.DBPath)
	}
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	progress := NewCLIProgressReporter(quietFlag, out)
	idx, err := indexer.New(indexerConfig, store, search.NewEngine(store), progress)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	var stats *indexer.IndexStats
	if incremental {
		stats, err = idx.IndexIncremental(ctx)
	} else {
		stats, err = idx.Index(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	// Progress reporter prints the summary unless quiet
	if quietFlag {
		fmt.Fprintf(out, "Indexing complete: %d files in %.2fs\n",
			stats.Totals.Files, stats.Duration.Seconds())
	}

	if !watchFlag {
		return nil
	}

	if !quietFlag {
		log.Println("Starting watch mode...")
	}
	err = idx.Watch(ctx, func(files []string, stats *indexer.IndexStats, err error) {
		if err != nil {
			if !errors.Is(err, indexer.ErrIndexLocked) {
				log.Printf("Warning: reindex failed: %v", err)
			}
			return
		}
		if quietFlag {
			fmt.Fprintf(out, "Reindexed %d changed paths in %.2fs\n", len(files), stats.Duration.Seconds())
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	if !quietFlag {
		log.Println("Watch mode stopped")
	}
	return nil
}
