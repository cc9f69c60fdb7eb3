package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/contexto/internal/graph"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed persistence for the code graph, file hashes,
// and the search index. Reads may run concurrently with one writer.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Recreate deletes any database at path and opens a fresh one.
func Recreate(ctx context.Context, path string) (*Store, error) {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove %s: %w", path+suffix, err)
		}
	}
	return Open(ctx, path)
}

// Exists reports whether a database file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn in a single transaction. Any error from fn, or from commit,
// rolls back every write fn made.
func (s *Store) Update(ctx context.Context, fn func(w *Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if err := fn(&Writer{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveGraph replaces the persisted graph with nodes in one transaction.
func (s *Store) SaveGraph(ctx context.Context, nodes []*graph.Node) error {
	return s.Update(ctx, func(w *Writer) error {
		return w.ReplaceGraph(ctx, nodes)
	})
}

// SaveFileHash records the content hash of an indexed file.
func (s *Store) SaveFileHash(ctx context.Context, path, hash string) error {
	return s.Update(ctx, func(w *Writer) error {
		return w.SaveFileHash(ctx, path, hash)
	})
}

// DeleteFileNodes removes a file, its entities, their search rows, and its hash.
func (s *Store) DeleteFileNodes(ctx context.Context, path string) error {
	return s.Update(ctx, func(w *Writer) error {
		return w.DeleteFileNodes(ctx, path)
	})
}
