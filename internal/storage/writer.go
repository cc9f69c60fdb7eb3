package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/contexto/internal/graph"
)

var nodeColumns = []string{
	"id", "parent_id", "name", "type", "file_path",
	"line_start", "line_end", "signature", "docstring", "calls",
}

// SearchDocument is the searchable text of one class, function, or method.
type SearchDocument struct {
	NodeID    string
	Name      string
	Signature string
	Docstring string
}

// Posting is the normalized term frequency of a term in one node.
type Posting struct {
	NodeID string
	Term   string
	TF     float64
}

// Writer performs writes inside a Store.Update transaction.
type Writer struct {
	tx *sql.Tx
}

// ReplaceGraph deletes the persisted graph and search index and inserts nodes.
// Every non-root node's parent must be among nodes.
func (w *Writer) ReplaceGraph(ctx context.Context, nodes []*graph.Node) error {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	for _, n := range nodes {
		if n.ID != graph.RootID && !ids[n.ParentID] {
			return fmt.Errorf("node %s references missing parent %q", n.ID, n.ParentID)
		}
	}

	for _, table := range []string{"search_index", "idf", "calls", "nodes"} {
		if _, err := sq.Delete(table).RunWith(w.tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return w.insertNodes(ctx, nodes)
}

func (w *Writer) insertNodes(ctx context.Context, nodes []*graph.Node) error {
	nodeSQL, _, err := sq.Insert("nodes").
		Columns(nodeColumns...).
		Values(make([]interface{}, len(nodeColumns))...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build node insert: %w", err)
	}
	callSQL, _, err := sq.Insert("calls").
		Columns("caller_id", "callee", "ordinal").
		Values(nil, nil, nil).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build call insert: %w", err)
	}

	nodeStmt, err := w.tx.PrepareContext(ctx, nodeSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	callStmt, err := w.tx.PrepareContext(ctx, callSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare call insert: %w", err)
	}
	defer callStmt.Close()

	for _, n := range nodes {
		_, err := nodeStmt.ExecContext(ctx,
			n.ID,
			nullableString(n.ParentID),
			n.Name,
			string(n.Type),
			nullableString(n.FilePath),
			nullableInt(n.LineStart),
			nullableInt(n.LineEnd),
			nullableString(n.Signature),
			nullableString(n.Docstring),
			nullableString(strings.Join(n.Calls, ",")),
		)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}

		for i, callee := range n.Calls {
			if _, err := callStmt.ExecContext(ctx, n.ID, callee, i); err != nil {
				return fmt.Errorf("failed to insert call %s -> %s: %w", n.ID, callee, err)
			}
		}
	}
	return nil
}

// DeleteFileNodes removes the file node for path, every node parsed from it,
// their call and search rows, and the stored hash.
func (w *Writer) DeleteFileNodes(ctx context.Context, path string) error {
	_, err := sq.Delete("nodes").
		Where(sq.Or{sq.Eq{"file_path": path}, sq.Eq{"id": path}}).
		RunWith(w.tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete nodes for %s: %w", path, err)
	}
	return w.DeleteFileHash(ctx, path)
}

// SaveFileHash records or overwrites the content hash for path.
func (w *Writer) SaveFileHash(ctx context.Context, path, hash string) error {
	_, err := sq.Insert("files").
		Columns("path", "hash", "indexed_at").
		Values(path, hash, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, indexed_at = excluded.indexed_at").
		RunWith(w.tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save hash for %s: %w", path, err)
	}
	return nil
}

// DeleteFileHash forgets the stored hash for path.
func (w *Writer) DeleteFileHash(ctx context.Context, path string) error {
	_, err := sq.Delete("files").Where(sq.Eq{"path": path}).RunWith(w.tx).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete hash for %s: %w", path, err)
	}
	return nil
}

// ClearFileHashes forgets every stored hash.
func (w *Writer) ClearFileHashes(ctx context.Context) error {
	if _, err := sq.Delete("files").RunWith(w.tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear file hashes: %w", err)
	}
	return nil
}

// SetMetadata records a key/value pair in the metadata table.
func (w *Writer) SetMetadata(ctx context.Context, key, value string) error {
	return setMetadata(ctx, w.tx, key, value)
}

// SearchDocuments returns every class, function, and method, ordered by id.
func (w *Writer) SearchDocuments(ctx context.Context) ([]SearchDocument, error) {
	rows, err := sq.Select("id", "name", "signature", "docstring").
		From("nodes").
		Where(sq.Eq{"type": []string{string(graph.NodeClass), string(graph.NodeFunction), string(graph.NodeMethod)}}).
		OrderBy("id").
		RunWith(w.tx).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query search documents: %w", err)
	}
	defer rows.Close()

	var docs []SearchDocument
	for rows.Next() {
		var doc SearchDocument
		var signature, docstring sql.NullString
		if err := rows.Scan(&doc.NodeID, &doc.Name, &signature, &docstring); err != nil {
			return nil, fmt.Errorf("failed to scan search document: %w", err)
		}
		doc.Signature = signature.String
		doc.Docstring = docstring.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ReplaceSearchIndex swaps the stored postings and IDF table.
func (w *Writer) ReplaceSearchIndex(ctx context.Context, idf map[string]float64, postings []Posting) error {
	for _, table := range []string{"search_index", "idf"} {
		if _, err := sq.Delete(table).RunWith(w.tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	postingSQL, _, err := sq.Insert("search_index").Columns("node_id", "term", "tf").Values(nil, nil, nil).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build posting insert: %w", err)
	}
	postingStmt, err := w.tx.PrepareContext(ctx, postingSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare posting insert: %w", err)
	}
	defer postingStmt.Close()

	for _, p := range postings {
		if _, err := postingStmt.ExecContext(ctx, p.NodeID, p.Term, p.TF); err != nil {
			return fmt.Errorf("failed to insert posting %s/%s: %w", p.NodeID, p.Term, err)
		}
	}

	idfSQL, _, err := sq.Insert("idf").Columns("term", "idf").Values(nil, nil).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build idf insert: %w", err)
	}
	idfStmt, err := w.tx.PrepareContext(ctx, idfSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare idf insert: %w", err)
	}
	defer idfStmt.Close()

	for term, value := range idf {
		if _, err := idfStmt.ExecContext(ctx, term, value); err != nil {
			return fmt.Errorf("failed to insert idf for %s: %w", term, err)
		}
	}
	return nil
}

// nullableInt maps 0 to NULL.
func nullableInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

// nullableString maps "" to NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
