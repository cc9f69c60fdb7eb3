package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/contexto/internal/graph"
)

// childOrder sorts siblings by source position; directories and files have no
// line_start and sort by id.
var childOrder = []string{"COALESCE(line_start, 0)", "id"}

const statsQuery = `
WITH RECURSIVE subtree(id, type) AS (
	SELECT id, type FROM nodes WHERE id = ?
	UNION ALL
	SELECT n.id, n.type FROM nodes n JOIN subtree s ON n.parent_id = s.id
)
SELECT type, COUNT(*) FROM subtree GROUP BY type`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*graph.Node, error) {
	var (
		n                                  graph.Node
		nodeType                           string
		parentID, filePath, sig, doc, call sql.NullString
		lineStart, lineEnd                 sql.NullInt64
	)
	if err := row.Scan(&n.ID, &parentID, &n.Name, &nodeType, &filePath, &lineStart, &lineEnd, &sig, &doc, &call); err != nil {
		return nil, err
	}
	n.Type = graph.NodeType(nodeType)
	n.ParentID = parentID.String
	n.FilePath = filePath.String
	n.LineStart = int(lineStart.Int64)
	n.LineEnd = int(lineEnd.Int64)
	n.Signature = sig.String
	n.Docstring = doc.String
	if call.String != "" {
		n.Calls = strings.Split(call.String, ",")
	}
	return &n, nil
}

// GetNode returns the node with id and its children ids, or (nil, nil) if absent.
func (s *Store) GetNode(ctx context.Context, id string) (*graph.Node, error) {
	row := sq.Select(nodeColumns...).
		From("nodes").
		Where(sq.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx)

	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node %s: %w", id, err)
	}

	children, err := s.childrenIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	n.ChildrenIDs = children[id]
	return n, nil
}

// GetChildren returns the direct children of id, each with its own children ids.
func (s *Store) GetChildren(ctx context.Context, id string) ([]*graph.Node, error) {
	rows, err := sq.Select(nodeColumns...).
		From("nodes").
		Where(sq.Eq{"parent_id": id}).
		OrderBy(childOrder...).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of %s: %w", id, err)
	}
	defer rows.Close()

	var children []*graph.Node
	var ids []string
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		children = append(children, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return children, nil
	}

	grandchildren, err := s.childrenIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		c.ChildrenIDs = grandchildren[c.ID]
	}
	return children, nil
}

func (s *Store) childrenIDs(ctx context.Context, parentIDs []string) (map[string][]string, error) {
	rows, err := sq.Select("parent_id", "id").
		From("nodes").
		Where(sq.Eq{"parent_id": parentIDs}).
		OrderBy(childOrder...).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query children ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var parentID, id string
		if err := rows.Scan(&parentID, &id); err != nil {
			return nil, fmt.Errorf("failed to scan child id: %w", err)
		}
		out[parentID] = append(out[parentID], id)
	}
	return out, rows.Err()
}

// GetStats counts files, classes, functions, and methods in the subtree of id,
// the node itself included. Unknown ids yield zero counts.
func (s *Store) GetStats(ctx context.Context, id string) (graph.Stats, error) {
	var stats graph.Stats
	rows, err := s.db.QueryContext(ctx, statsQuery, id)
	if err != nil {
		return stats, fmt.Errorf("failed to compute stats for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var nodeType string
		var count int
		if err := rows.Scan(&nodeType, &count); err != nil {
			return stats, fmt.Errorf("failed to scan stats: %w", err)
		}
		for i := 0; i < count; i++ {
			stats.Count(graph.NodeType(nodeType))
		}
	}
	return stats, rows.Err()
}

// LoadNodes returns every persisted node. ChildrenIDs are left empty.
func (s *Store) LoadNodes(ctx context.Context) ([]*graph.Node, error) {
	rows, err := sq.Select(nodeColumns...).
		From("nodes").
		OrderBy("id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// LoadGraph replaces the contents of g with the persisted graph.
// Returns false when nothing has been indexed yet.
func (s *Store) LoadGraph(ctx context.Context, g *graph.CodeGraph) (bool, error) {
	nodes, err := s.LoadNodes(ctx)
	if err != nil {
		return false, err
	}
	if len(nodes) == 0 {
		return false, nil
	}
	if err := g.Load(nodes); err != nil {
		return false, fmt.Errorf("failed to load graph: %w", err)
	}
	return true, nil
}

// GetFileHash returns the stored hash for path.
func (s *Store) GetFileHash(ctx context.Context, path string) (string, bool, error) {
	var hash string
	err := sq.Select("hash").
		From("files").
		Where(sq.Eq{"path": path}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get hash for %s: %w", path, err)
	}
	return hash, true, nil
}

// GetIndexedFiles returns the stored hash of every indexed file.
func (s *Store) GetIndexedFiles(ctx context.Context) (map[string]string, error) {
	rows, err := sq.Select("path", "hash").From("files").RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexed files: %w", err)
	}
	defer rows.Close()

	files := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan indexed file: %w", err)
		}
		files[path] = hash
	}
	return files, rows.Err()
}

// GetCallers returns the ids of nodes whose call list contains name exactly.
func (s *Store) GetCallers(ctx context.Context, name string) ([]string, error) {
	rows, err := sq.Select("DISTINCT caller_id").
		From("calls").
		Where(sq.Eq{"callee": name}).
		OrderBy("caller_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query callers of %s: %w", name, err)
	}
	defer rows.Close()

	var callers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan caller: %w", err)
		}
		callers = append(callers, id)
	}
	return callers, rows.Err()
}

// Metadata returns the value stored under key.
func (s *Store) Metadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := sq.Select("value").
		From("metadata").
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return value, true, nil
}

// IDF returns the inverse document frequency of every indexed term.
func (s *Store) IDF(ctx context.Context) (map[string]float64, error) {
	rows, err := sq.Select("term", "idf").From("idf").RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query idf: %w", err)
	}
	defer rows.Close()

	idf := make(map[string]float64)
	for rows.Next() {
		var term string
		var value float64
		if err := rows.Scan(&term, &value); err != nil {
			return nil, fmt.Errorf("failed to scan idf: %w", err)
		}
		idf[term] = value
	}
	return idf, rows.Err()
}

// Postings returns every (node, tf) pair recorded for term.
func (s *Store) Postings(ctx context.Context, term string) ([]Posting, error) {
	rows, err := sq.Select("node_id", "term", "tf").
		From("search_index").
		Where(sq.Eq{"term": term}).
		OrderBy("node_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query postings for %s: %w", term, err)
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.NodeID, &p.Term, &p.TF); err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}
