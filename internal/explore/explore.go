// Package explore answers the read-side questions asked of an index:
// the project map, a node's children, an entity's call relationships,
// raw source lines, and keyword search.
package explore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/contexto/internal/graph"
	"github.com/mvp-joe/contexto/internal/search"
	"github.com/mvp-joe/contexto/internal/storage"
)

var (
	// ErrNodeNotFound is returned when an id or path is not in the index or on disk.
	ErrNodeNotFound = errors.New("node not found")
	// ErrAccessDenied is returned when a read resolves outside the project root.
	ErrAccessDenied = errors.New("access denied: path outside project directory")
	// ErrNotAFile is returned when a read targets a directory.
	ErrNotAFile = errors.New("not a file")
)

// DefaultCacheSize is the stats cache capacity used when none is configured.
const DefaultCacheSize = 1024

// Options configures an Explorer.
type Options struct {
	DefaultLimit int // Search limit used for non-positive requests
	CacheSize    int // Capacity of the per-node stats cache
}

// NodeStats pairs a node with the counts of its subtree.
type NodeStats struct {
	Node  *graph.Node
	Stats graph.Stats
}

// MapResult is the top-level overview of a project.
type MapResult struct {
	RootName string
	RootPath string
	Totals   graph.Stats
	Dirs     []NodeStats
}

// ExpandResult is a node with its direct children.
type ExpandResult struct {
	Node     *graph.Node
	Children []NodeStats
}

// InspectResult describes an entity and its call relationships.
type InspectResult struct {
	Node     *graph.Node
	Calls    []string
	CalledBy []string
}

// ReadResult holds source lines starting at StartLine.
type ReadResult struct {
	Path      string
	StartLine int
	Lines     []string
}

// Explorer serves read requests against an index. Subtree stats are cached
// until Invalidate is called.
type Explorer struct {
	rootDir      string
	store        *storage.Store
	engine       *search.Engine
	defaultLimit int
	stats        otter.Cache[string, graph.Stats]
}

// New creates an explorer for the project at rootDir.
func New(rootDir string, store *storage.Store, engine *search.Engine, opts Options) (*Explorer, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = search.DefaultLimit
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	cache, err := otter.MustBuilder[string, graph.Stats](opts.CacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create stats cache: %w", err)
	}

	return &Explorer{
		rootDir:      root,
		store:        store,
		engine:       engine,
		defaultLimit: opts.DefaultLimit,
		stats:        cache,
	}, nil
}

// RootDir returns the resolved project root.
func (e *Explorer) RootDir() string {
	return e.rootDir
}

// Invalidate drops cached stats and search state after the index changes.
func (e *Explorer) Invalidate() {
	e.stats.Clear()
	e.engine.Invalidate()
}

// Close releases the cache.
func (e *Explorer) Close() {
	e.stats.Close()
}

func (e *Explorer) statsFor(ctx context.Context, id string) (graph.Stats, error) {
	if s, ok := e.stats.Get(id); ok {
		return s, nil
	}
	s, err := e.store.GetStats(ctx, id)
	if err != nil {
		return s, err
	}
	e.stats.Set(id, s)
	return s, nil
}

// Map returns the root name, total counts, and each top-level directory
// with its counts.
func (e *Explorer) Map(ctx context.Context) (*MapResult, error) {
	root, err := e.store.GetNode(ctx, graph.RootID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root node", ErrNodeNotFound)
	}

	totals, err := e.statsFor(ctx, graph.RootID)
	if err != nil {
		return nil, err
	}

	children, err := e.store.GetChildren(ctx, graph.RootID)
	if err != nil {
		return nil, err
	}

	result := &MapResult{
		RootName: root.Name,
		RootPath: e.rootDir,
		Totals:   totals,
		Dirs:     []NodeStats{},
	}
	for _, child := range children {
		if child.Type != graph.NodeDir {
			continue
		}
		s, err := e.statsFor(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		result.Dirs = append(result.Dirs, NodeStats{Node: child, Stats: s})
	}
	return result, nil
}

// Expand returns the node with id and its children, each with subtree counts.
func (e *Explorer) Expand(ctx context.Context, id string) (*ExpandResult, error) {
	node, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := e.store.GetChildren(ctx, node.ID)
	if err != nil {
		return nil, err
	}

	result := &ExpandResult{Node: node, Children: make([]NodeStats, 0, len(children))}
	for _, child := range children {
		s, err := e.statsFor(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		result.Children = append(result.Children, NodeStats{Node: child, Stats: s})
	}
	return result, nil
}

// Inspect returns the node with id, the names it calls, and the ids of the
// entities calling its name. The node never appears among its own callers.
func (e *Explorer) Inspect(ctx context.Context, id string) (*InspectResult, error) {
	node, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	callers, err := e.store.GetCallers(ctx, node.Name)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Node:     node,
		Calls:    append([]string{}, node.Calls...),
		CalledBy: []string{},
	}
	for _, caller := range callers {
		if caller != node.ID {
			result.CalledBy = append(result.CalledBy, caller)
		}
	}
	return result, nil
}

// Search runs a keyword query. A non-positive limit uses the configured default.
func (e *Explorer) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = e.defaultLimit
	}
	return e.engine.Search(ctx, query, limit)
}

// Read returns lines of the file at path, relative to the project root.
// An entity id ("file.py:Name") reads its file, limited to the entity's
// lines when no range is given. start and end are 1-based and inclusive;
// zero means unbounded.
func (e *Explorer) Read(ctx context.Context, path string, start, end int) (*ReadResult, error) {
	filePath := path
	if i := strings.Index(path, ":"); i >= 0 {
		filePath = path[:i]
	}

	fullPath, err := e.resolve(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	if start <= 0 && end <= 0 && filePath != path {
		node, err := e.store.GetNode(ctx, path)
		if err != nil {
			return nil, err
		}
		if node != nil && node.LineStart > 0 {
			start, end = node.LineStart, node.LineEnd
		}
	}

	lines := splitLines(string(data))
	first := 1
	if start > 0 || end > 0 {
		if start > 0 {
			first = start
		}
		last := len(lines)
		if end > 0 && end < last {
			last = end
		}
		if first-1 >= last {
			lines = []string{}
		} else {
			lines = lines[first-1 : last]
		}
	}

	return &ReadResult{Path: filePath, StartLine: first, Lines: lines}, nil
}

// resolve maps a project-relative path to an absolute one, rejecting paths
// that escape the root directly or through a symlink.
func (e *Explorer) resolve(filePath string) (string, error) {
	candidate := filepath.FromSlash(filePath)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(e.rootDir, candidate)
	}
	candidate = filepath.Clean(candidate)
	if !e.contains(candidate) {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, filePath)
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", ErrNodeNotFound, filePath)
		}
		return "", fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}
	if !e.contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, filePath)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, filePath)
	}
	return resolved, nil
}

func (e *Explorer) contains(path string) bool {
	rel, err := filepath.Rel(e.rootDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (e *Explorer) lookup(ctx context.Context, id string) (*graph.Node, error) {
	node, err := e.store.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return node, nil
}

// splitLines splits content into lines; a trailing newline does not start
// an extra line.
func splitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
