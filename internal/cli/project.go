package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/contexto/internal/config"
	"github.com/mvp-joe/contexto/internal/explore"
	"github.com/mvp-joe/contexto/internal/search"
	"github.com/mvp-joe/contexto/internal/storage"
)

// NoIndexError is returned by read commands when the project has not been indexed.
type NoIndexError struct {
	DBPath string
}

func (e *NoIndexError) Error() string {
	return fmt.Sprintf("No index found at %s. Run 'contexto index' first.", e.DBPath)
}

// project bundles the opened index of one project root.
type project struct {
	rootDir  string
	cfg      *config.Config
	store    *storage.Store
	engine   *search.Engine
	explorer *explore.Explorer
}

// resolveRoot returns the absolute project root: the positional path when
// given, otherwise --project.
func resolveRoot(args []string) (string, error) {
	dir := projectFlag
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}

	rootDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project path: %w", err)
	}
	info, err := os.Stat(rootDir)
	if err != nil {
		return "", fmt.Errorf("project path %s: %w", rootDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path %s is not a directory", rootDir)
	}
	return rootDir, nil
}

// openProject loads configuration and opens an existing index for reading.
func openProject(ctx context.Context, rootDir string) (*project, error) {
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath := cfg.DBPath(rootDir)
	if !storage.Exists(dbPath) {
		return nil, &NoIndexError{DBPath: dbPath}
	}

	store, err := storage.Open(ctx, dbPath)
	if errors.Is(err, storage.ErrSchemaMismatch) {
		return nil, fmt.Errorf("index at %s must be rebuilt with 'contexto index': %w", dbPath, err)
	}
	if err != nil {
		return nil, err
	}

	engine := search.NewEngine(store)
	explorer, err := explore.New(rootDir, store, engine, cfg.ToExploreOptions())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create explorer: %w", err)
	}

	return &project{
		rootDir:  rootDir,
		cfg:      cfg,
		store:    store,
		engine:   engine,
		explorer: explorer,
	}, nil
}

// withProject opens the index selected by args and --project, runs fn, and closes it.
func withProject(ctx context.Context, args []string, fn func(p *project) error) error {
	rootDir, err := resolveRoot(args)
	if err != nil {
		return err
	}
	p, err := openProject(ctx, rootDir)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

func (p *project) Close() {
	p.explorer.Close()
	p.store.Close()
}
