package indexer

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/contexto/internal/graph"
	"github.com/mvp-joe/contexto/internal/indexer/parsers"
	"github.com/mvp-joe/contexto/internal/search"
	"github.com/mvp-joe/contexto/internal/storage"
)

// Indexer turns a project tree into a persisted code graph and search index.
// Every run holds the writer lock and commits in a single transaction.
type Indexer struct {
	config    *Config
	registry  *parsers.Registry
	discovery *FileDiscovery
	store     *storage.Store
	engine    *search.Engine
	progress  ProgressReporter
}

// New creates an indexer that writes to store and refreshes engine.
// A nil progress reporter disables reporting.
func New(config *Config, store *storage.Store, engine *search.Engine, progress ProgressReporter) (*Indexer, error) {
	rootDir, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	cfg := *config
	cfg.RootDir = rootDir
	if cfg.DBPath == "" {
		cfg.DBPath = store.Path()
	}

	registry := parsers.NewDefaultRegistry()
	discovery, err := NewFileDiscovery(rootDir, registry, cfg.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to compile ignore patterns: %w", err)
	}

	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	return &Indexer{
		config:    &cfg,
		registry:  registry,
		discovery: discovery,
		store:     store,
		engine:    engine,
		progress:  progress,
	}, nil
}

// RootDir returns the absolute project root.
func (idx *Indexer) RootDir() string {
	return idx.config.RootDir
}

// Discovery returns the file discovery used by the indexer.
func (idx *Indexer) Discovery() *FileDiscovery {
	return idx.discovery
}

// Index rebuilds the whole graph from disk and replaces the persisted index.
func (idx *Indexer) Index(ctx context.Context) (*IndexStats, error) {
	lock, err := AcquireWriterLock(idx.config.DBPath)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	return idx.indexFull(ctx)
}

// IndexIncremental reparses only added and modified files, drops deleted ones,
// and leaves unchanged files untouched. Without a prior index it performs a
// full run.
func (idx *Indexer) IndexIncremental(ctx context.Context) (*IndexStats, error) {
	lock, err := AcquireWriterLock(idx.config.DBPath)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	g := idx.newGraph()
	loaded, err := idx.store.LoadGraph(ctx, g)
	if err != nil {
		return nil, err
	}
	if !loaded {
		log.Printf("No existing index found, running full index")
		return idx.indexFull(ctx)
	}

	start := time.Now()
	idx.progress.OnDiscoveryStart()

	detector := NewChangeDetector(idx.config.RootDir, idx.store, idx.discovery)
	changes, err := detector.DetectChanges(ctx)
	if err != nil {
		return nil, err
	}

	changed := append(append([]string{}, changes.Added...), changes.Modified...)
	idx.progress.OnDiscoveryComplete(len(changes.Dirs), len(changed)+len(changes.Unchanged))
	idx.progress.OnFileProcessingStart(len(changed))

	for _, relPath := range changes.Deleted {
		g.RemoveFile(relPath)
	}
	for _, relPath := range changed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		absPath := filepath.Join(idx.config.RootDir, filepath.FromSlash(relPath))
		if err := g.AddSingleFile(absPath, relPath, path.Dir(relPath)); err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", relPath, err)
		}
	}
	if err := g.SyncDirectories(changes.Dirs); err != nil {
		return nil, fmt.Errorf("failed to sync directories: %w", err)
	}

	stats := &IndexStats{
		RunID:          uuid.NewString(),
		Mode:           ModeIncremental,
		FilesAdded:     len(changes.Added),
		FilesModified:  len(changes.Modified),
		FilesRemoved:   len(changes.Deleted),
		FilesUnchanged: len(changes.Unchanged),
	}

	idx.progress.OnSearchIndexStart()
	err = idx.store.Update(ctx, func(w *storage.Writer) error {
		for _, relPath := range changes.Deleted {
			if err := w.DeleteFileNodes(ctx, relPath); err != nil {
				return err
			}
		}
		if err := w.ReplaceGraph(ctx, g.Nodes()); err != nil {
			return err
		}
		for _, relPath := range changed {
			if err := w.SaveFileHash(ctx, relPath, changes.Hashes[relPath]); err != nil {
				return err
			}
		}
		if err := idx.engine.Rebuild(ctx, w); err != nil {
			return fmt.Errorf("failed to rebuild search index: %w", err)
		}
		return idx.writeRunMetadata(ctx, w, stats)
	})
	idx.engine.Invalidate()
	if err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	stats.Totals, _ = g.Stats(graph.RootID)
	stats.Duration = time.Since(start)
	idx.progress.OnComplete(stats)
	return stats, nil
}

func (idx *Indexer) indexFull(ctx context.Context) (*IndexStats, error) {
	start := time.Now()
	idx.progress.OnDiscoveryStart()

	g := idx.newGraph()
	if err := g.Build(ctx); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	nodes := g.Nodes()
	hashes := make(map[string]string)
	for _, n := range nodes {
		if n.Type != graph.NodeFile {
			continue
		}
		hash, err := HashFile(filepath.Join(idx.config.RootDir, filepath.FromSlash(n.ID)))
		if err != nil {
			log.Printf("Warning: failed to hash %s: %v", n.ID, err)
			continue
		}
		hashes[n.ID] = hash
	}

	stats := &IndexStats{
		RunID:      uuid.NewString(),
		Mode:       ModeFull,
		FilesAdded: len(hashes),
	}

	idx.progress.OnSearchIndexStart()
	err := idx.store.Update(ctx, func(w *storage.Writer) error {
		if err := w.ReplaceGraph(ctx, nodes); err != nil {
			return err
		}
		if err := w.ClearFileHashes(ctx); err != nil {
			return err
		}
		for relPath, hash := range hashes {
			if err := w.SaveFileHash(ctx, relPath, hash); err != nil {
				return err
			}
		}
		if err := idx.engine.Rebuild(ctx, w); err != nil {
			return fmt.Errorf("failed to rebuild search index: %w", err)
		}
		return idx.writeRunMetadata(ctx, w, stats)
	})
	idx.engine.Invalidate()
	if err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	stats.Totals, _ = g.Stats(graph.RootID)
	stats.Duration = time.Since(start)
	idx.progress.OnComplete(stats)
	return stats, nil
}

func (idx *Indexer) newGraph() *graph.CodeGraph {
	return graph.New(idx.config.RootDir, idx.registry, idx.discovery,
		graph.WithObserver(progressObserver{progress: idx.progress}))
}

func (idx *Indexer) writeRunMetadata(ctx context.Context, w *storage.Writer, stats *IndexStats) error {
	values := map[string]string{
		storage.MetaLastRunID:     stats.RunID,
		storage.MetaLastRunMode:   stats.Mode,
		storage.MetaLastIndexedAt: time.Now().UTC().Format(time.RFC3339),
		storage.MetaRootPath:      idx.config.RootDir,
	}
	for key, value := range values {
		if err := w.SetMetadata(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
