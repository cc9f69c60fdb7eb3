package graph

import (
	"bytes"
	"context"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/mvp-joe/contexto/internal/indexer/parsers"
)

// Build discards the current contents and rebuilds the tree from disk.
// Files that cannot be read are skipped; files that fail to parse keep a
// bare file node.
func (g *CodeGraph) Build(ctx context.Context) error {
	g.reset(filepath.Base(g.rootDir))

	dirs, files, err := g.walker.Walk(ctx)
	if err != nil {
		return err
	}
	if g.observer != nil {
		g.observer.OnDiscovered(len(dirs), len(files))
	}

	for _, dir := range dirs {
		if _, err := g.ensureDir(dir); err != nil {
			return err
		}
	}

	for _, relPath := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		parentID, err := g.ensureDir(path.Dir(relPath))
		if err != nil {
			return err
		}
		if err := g.addFile(g.absPath(relPath), relPath, parentID); err != nil {
			return err
		}
	}
	return nil
}

// AddSingleFile replaces the file node for relPath and its entity subtree with
// a fresh parse of filePath. Missing directory ancestors are created.
// Calling it twice on unchanged content yields the same nodes.
func (g *CodeGraph) AddSingleFile(filePath, relPath, parentDirID string) error {
	g.RemoveFile(relPath)

	parentID, err := g.ensureDir(parentDirID)
	if err != nil {
		return err
	}
	return g.addFile(filePath, relPath, parentID)
}

// RemoveFile deletes the file node for relPath and everything parsed from it.
func (g *CodeGraph) RemoveFile(relPath string) bool {
	n, ok := g.Node(relPath)
	if !ok || n.Type != NodeFile {
		return false
	}
	return g.removeSubtree(relPath)
}

// SyncDirectories adds dir nodes for dirs and drops empty dir nodes no longer listed.
func (g *CodeGraph) SyncDirectories(dirs []string) error {
	want := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		want[dir] = true
		if _, err := g.ensureDir(dir); err != nil {
			return err
		}
	}

	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Type == NodeDir && !want[n.ID] && len(n.ChildrenIDs) == 0 {
			g.detach(n.ID)
		}
	}
	return nil
}

func (g *CodeGraph) absPath(relPath string) string {
	return filepath.Join(g.rootDir, filepath.FromSlash(relPath))
}

// ensureDir returns the node id for a relative directory, creating it and
// its ancestors as needed.
func (g *CodeGraph) ensureDir(rel string) (string, error) {
	if rel == "" || rel == "." || rel == RootID {
		return RootID, nil
	}
	if _, ok := g.Node(rel); ok {
		return rel, nil
	}

	parentID, err := g.ensureDir(path.Dir(rel))
	if err != nil {
		return "", err
	}
	err = g.addNode(&Node{
		ID:       rel,
		ParentID: parentID,
		Name:     path.Base(rel),
		Type:     NodeDir,
	})
	return rel, err
}

func (g *CodeGraph) addFile(filePath, relPath, parentID string) error {
	source, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", relPath, err)
		g.notify(relPath, err)
		return nil
	}

	err = g.addNode(&Node{
		ID:        relPath,
		ParentID:  parentID,
		Name:      path.Base(relPath),
		Type:      NodeFile,
		FilePath:  relPath,
		LineStart: 1,
		LineEnd:   countLines(source),
	})
	if err != nil {
		return err
	}

	entities, parseErr := g.parser.Parse(relPath, source)
	if parseErr != nil {
		log.Printf("Warning: failed to parse %s: %v", relPath, parseErr)
		g.notify(relPath, parseErr)
		return nil
	}

	if err := g.addEntities(relPath, relPath, nil, entities); err != nil {
		return err
	}
	g.notify(relPath, nil)
	return nil
}

// addEntities flattens parsed entities under parentID. When a name repeats
// within the same scope the later definition replaces the earlier one, the
// way rebinding a name does at runtime.
func (g *CodeGraph) addEntities(filePath, parentID string, scope []string, entities []parsers.Entity) error {
	for _, e := range entities {
		qualified := append(append([]string(nil), scope...), e.Name)
		id := EntityID(filePath, qualified...)
		g.removeSubtree(id)

		err := g.addNode(&Node{
			ID:        id,
			ParentID:  parentID,
			Name:      e.Name,
			Type:      nodeType(e.Kind),
			FilePath:  filePath,
			LineStart: e.StartLine,
			LineEnd:   e.EndLine,
			Signature: e.Signature,
			Docstring: e.Docstring,
			Calls:     e.Calls,
		})
		if err != nil {
			return err
		}

		if len(e.Children) > 0 {
			if err := g.addEntities(filePath, id, qualified, e.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *CodeGraph) notify(relPath string, err error) {
	if g.observer != nil {
		g.observer.OnFileParsed(relPath, err)
	}
}

func nodeType(kind parsers.EntityKind) NodeType {
	switch kind {
	case parsers.KindClass:
		return NodeClass
	case parsers.KindMethod:
		return NodeMethod
	default:
		return NodeFunction
	}
}

// countLines counts lines the way an editor does: a trailing newline does not
// start a new line.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte("\n"))
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
