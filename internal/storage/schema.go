package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SchemaVersion is bumped whenever the table layout changes.
const SchemaVersion = "1"

// Metadata keys written by the indexer.
const (
	MetaSchemaVersion = "schema_version"
	MetaLastRunID     = "last_run_id"
	MetaLastRunMode   = "last_run_mode"
	MetaLastIndexedAt = "last_indexed_at"
	MetaRootPath      = "root_path"
)

// ErrSchemaMismatch is returned when an existing database was written with a
// different schema version.
var ErrSchemaMismatch = errors.New("index schema version mismatch")

// Foreign keys are deferred so a whole graph can be replaced inside one
// transaction; violations surface at commit.
const createNodesTable = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	parent_id  TEXT REFERENCES nodes(id) DEFERRABLE INITIALLY DEFERRED,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	file_path  TEXT,
	line_start INTEGER,
	line_end   INTEGER,
	signature  TEXT,
	docstring  TEXT,
	calls      TEXT
)`

const createCallsTable = `
CREATE TABLE IF NOT EXISTS calls (
	caller_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
	callee    TEXT NOT NULL,
	ordinal   INTEGER NOT NULL,
	PRIMARY KEY (caller_id, ordinal)
)`

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	hash       TEXT NOT NULL,
	indexed_at TEXT NOT NULL
)`

const createSearchIndexTable = `
CREATE TABLE IF NOT EXISTS search_index (
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED,
	term    TEXT NOT NULL,
	tf      REAL NOT NULL,
	PRIMARY KEY (node_id, term)
)`

const createIDFTable = `
CREATE TABLE IF NOT EXISTS idf (
	term TEXT PRIMARY KEY,
	idf  REAL NOT NULL
)`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id)",
	"CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type)",
	"CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(file_path)",
	"CREATE INDEX IF NOT EXISTS idx_calls_callee ON calls(callee)",
	"CREATE INDEX IF NOT EXISTS idx_search_term ON search_index(term)",
}

// CreateSchema creates all tables and indexes in one transaction and stamps
// the schema version on a fresh database. An existing database with another
// version yields ErrSchemaMismatch.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"nodes", createNodesTable},
		{"calls", createCallsTable},
		{"files", createFilesTable},
		{"search_index", createSearchIndexTable},
		{"idf", createIDFTable},
		{"metadata", createMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	var version string
	err = sq.Select("value").
		From("metadata").
		Where(sq.Eq{"key": MetaSchemaVersion}).
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if err := setMetadata(ctx, tx, MetaSchemaVersion, SchemaVersion); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case version != SchemaVersion:
		return fmt.Errorf("%w: database has %s, expected %s", ErrSchemaMismatch, version, SchemaVersion)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

func setMetadata(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := sq.Insert("metadata").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}
