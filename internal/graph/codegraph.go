package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/mvp-joe/contexto/internal/indexer/parsers"
)

// Walker lists the directories and source files under a project root as
// slash-separated paths relative to it, each list sorted.
type Walker interface {
	Walk(ctx context.Context) (dirs []string, files []string, err error)
}

// SourceParser extracts entities from the contents of one source file.
type SourceParser interface {
	Parse(filePath string, source []byte) ([]parsers.Entity, error)
}

// Observer is notified as a build progresses.
type Observer interface {
	OnDiscovered(dirs, files int)
	OnFileParsed(relPath string, err error)
}

// Option configures a CodeGraph.
type Option func(*CodeGraph)

// WithObserver reports build progress to o.
func WithObserver(o Observer) Option {
	return func(g *CodeGraph) {
		g.observer = o
	}
}

// CodeGraph is the in-memory project tree: root, directories, files, and the
// entities parsed from each file. Edges run from parent to child.
// A CodeGraph is not safe for concurrent use.
type CodeGraph struct {
	rootDir  string
	parser   SourceParser
	walker   Walker
	observer Observer
	tree     graph.Graph[string, *Node]
}

// New creates a graph for the project at rootDir containing only the root node.
func New(rootDir string, parser SourceParser, walker Walker, opts ...Option) *CodeGraph {
	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}
	g := &CodeGraph{
		rootDir: rootDir,
		parser:  parser,
		walker:  walker,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reset(filepath.Base(rootDir))
	return g
}

func (g *CodeGraph) reset(rootName string) {
	g.tree = graph.New(func(n *Node) string { return n.ID }, graph.Directed())
	_ = g.tree.AddVertex(&Node{ID: RootID, Name: rootName, Type: NodeRoot})
}

// RootDir returns the absolute project root.
func (g *CodeGraph) RootDir() string {
	return g.rootDir
}

// Node returns the node with the given id.
func (g *CodeGraph) Node(id string) (*Node, bool) {
	n, err := g.tree.Vertex(id)
	if err != nil {
		return nil, false
	}
	return n, true
}

// Root returns the root node.
func (g *CodeGraph) Root() *Node {
	n, _ := g.Node(RootID)
	return n
}

// Len returns the number of nodes, root included.
func (g *CodeGraph) Len() int {
	n, err := g.tree.Order()
	if err != nil {
		return 0
	}
	return n
}

// Children returns the direct children of id in insertion order.
func (g *CodeGraph) Children(id string) []*Node {
	parent, ok := g.Node(id)
	if !ok {
		return nil
	}
	children := make([]*Node, 0, len(parent.ChildrenIDs))
	for _, cid := range parent.ChildrenIDs {
		if c, ok := g.Node(cid); ok {
			children = append(children, c)
		}
	}
	return children
}

// Nodes returns every node with parents before their children.
func (g *CodeGraph) Nodes() []*Node {
	var out []*Node
	queue := []string{RootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		out = append(out, n)
		queue = append(queue, n.ChildrenIDs...)
	}
	return out
}

// Stats counts node types in the subtree rooted at id, the node itself included.
func (g *CodeGraph) Stats(id string) (Stats, bool) {
	var stats Stats
	if _, ok := g.Node(id); !ok {
		return stats, false
	}
	_ = graph.DFS(g.tree, id, func(v string) bool {
		if n, ok := g.Node(v); ok {
			stats.Count(n.Type)
		}
		return false
	})
	return stats, true
}

// addNode inserts n under its parent. The parent must already exist.
func (g *CodeGraph) addNode(n *Node) error {
	parent, ok := g.Node(n.ParentID)
	if !ok {
		return fmt.Errorf("parent %q of %q is not in the graph", n.ParentID, n.ID)
	}
	if err := g.tree.AddVertex(n); err != nil {
		return fmt.Errorf("failed to add node %s: %w", n.ID, err)
	}
	if err := g.tree.AddEdge(parent.ID, n.ID); err != nil {
		return fmt.Errorf("failed to link node %s: %w", n.ID, err)
	}
	parent.ChildrenIDs = append(parent.ChildrenIDs, n.ID)
	return nil
}

// removeSubtree deletes id and everything below it. Returns false if id is unknown.
func (g *CodeGraph) removeSubtree(id string) bool {
	if _, ok := g.Node(id); !ok || id == RootID {
		return false
	}

	var ids []string
	_ = graph.DFS(g.tree, id, func(v string) bool {
		ids = append(ids, v)
		return false
	})

	// DFS yields ancestors first, so walking backwards detaches leaves first.
	for i := len(ids) - 1; i >= 0; i-- {
		g.detach(ids[i])
	}
	return true
}

func (g *CodeGraph) detach(id string) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	if parent, ok := g.Node(n.ParentID); ok {
		_ = g.tree.RemoveEdge(parent.ID, id)
		for i, cid := range parent.ChildrenIDs {
			if cid == id {
				parent.ChildrenIDs = append(parent.ChildrenIDs[:i:i], parent.ChildrenIDs[i+1:]...)
				break
			}
		}
	}
	_ = g.tree.RemoveVertex(id)
}

// Load replaces the graph with previously persisted nodes. ChildrenIDs are
// recomputed from parent links; siblings are ordered by start line, then id.
func (g *CodeGraph) Load(nodes []*Node) error {
	byParent := make(map[string][]*Node)
	var root *Node
	for _, n := range nodes {
		if n.ID == RootID {
			root = n
			continue
		}
		byParent[n.ParentID] = append(byParent[n.ParentID], n)
	}
	if root == nil {
		return fmt.Errorf("persisted graph has no root node")
	}

	g.reset(root.Name)
	queue := []string{RootID}
	loaded := 1
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		children := byParent[parentID]
		sort.SliceStable(children, func(i, j int) bool {
			if children[i].LineStart != children[j].LineStart {
				return children[i].LineStart < children[j].LineStart
			}
			return children[i].ID < children[j].ID
		})
		for _, c := range children {
			n := c.Clone()
			n.ChildrenIDs = nil
			if err := g.addNode(n); err != nil {
				return err
			}
			queue = append(queue, n.ID)
			loaded++
		}
	}

	if loaded != len(nodes) {
		return fmt.Errorf("persisted graph has %d nodes unreachable from the root", len(nodes)-loaded)
	}
	return nil
}
