package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/contexto/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Store:
// - SaveGraph then LoadNodes returns the same nodes
// - GetNode returns fields and children ids, (nil, nil) when missing
// - Lookups of unknown keys report a miss without an error
// - GetChildren orders by line then id and includes grandchildren ids
// - GetStats counts the subtree and root stats equal the sum over children
// - GetCallers matches callee names exactly
// - File hashes can be saved, overwritten, listed, and deleted
// - DeleteFileNodes removes nodes, calls, search rows, and the hash
// - A failing Update leaves the previous graph untouched
// - ReplaceGraph rejects orphans and duplicate ids
// - Opening a database with another schema version fails; Recreate recovers
// - LoadGraph restores a CodeGraph

func sampleNodes() []*graph.Node {
	return []*graph.Node{
		{ID: ".", Name: "proj", Type: graph.NodeRoot},
		{ID: "src", ParentID: ".", Name: "src", Type: graph.NodeDir},
		{ID: "src/main.py", ParentID: "src", Name: "main.py", Type: graph.NodeFile, FilePath: "src/main.py", LineStart: 1, LineEnd: 8},
		{ID: "src/main.py:main", ParentID: "src/main.py", Name: "main", Type: graph.NodeFunction, FilePath: "src/main.py",
			LineStart: 1, LineEnd: 3, Signature: "def main()", Docstring: "Entry point.", Calls: []string{"print", "helper"}},
		{ID: "src/main.py:helper", ParentID: "src/main.py", Name: "helper", Type: graph.NodeFunction, FilePath: "src/main.py",
			LineStart: 6, LineEnd: 8, Signature: "def helper()"},
		{ID: "src/calc.py", ParentID: "src", Name: "calc.py", Type: graph.NodeFile, FilePath: "src/calc.py", LineStart: 1, LineEnd: 7},
		{ID: "src/calc.py:Calc", ParentID: "src/calc.py", Name: "Calc", Type: graph.NodeClass, FilePath: "src/calc.py",
			LineStart: 1, LineEnd: 7, Docstring: "Adds and subtracts."},
		{ID: "src/calc.py:Calc.sub", ParentID: "src/calc.py:Calc", Name: "sub", Type: graph.NodeMethod, FilePath: "src/calc.py",
			LineStart: 5, LineEnd: 7, Signature: "def sub(self, a, b)"},
		{ID: "src/calc.py:Calc.add", ParentID: "src/calc.py:Calc", Name: "add", Type: graph.NodeMethod, FilePath: "src/calc.py",
			LineStart: 2, LineEnd: 4, Signature: "def add(self, a, b)", Calls: []string{"helper"}},
	}
}

func savedStore(t *testing.T) *Store {
	t.Helper()
	store := NewTestStore(t)
	require.NoError(t, store.SaveGraph(context.Background(), sampleNodes()))
	return store
}

func TestSaveGraph_RoundTrip(t *testing.T) {
	t.Parallel()

	store := savedStore(t)
	nodes, err := store.LoadNodes(context.Background())
	require.NoError(t, err)

	want := make(map[string]graph.Node)
	for _, n := range sampleNodes() {
		want[n.ID] = *n
	}
	got := make(map[string]graph.Node)
	for _, n := range nodes {
		got[n.ID] = *n
	}
	assert.Equal(t, want, got)
}

func TestGetNode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)

	n, err := store.GetNode(ctx, "src/main.py:main")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "main", n.Name)
	assert.Equal(t, graph.NodeFunction, n.Type)
	assert.Equal(t, "src/main.py", n.ParentID)
	assert.Equal(t, "def main()", n.Signature)
	assert.Equal(t, "Entry point.", n.Docstring)
	assert.Equal(t, []string{"print", "helper"}, n.Calls)
	assert.Empty(t, n.ChildrenIDs)

	calc, err := store.GetNode(ctx, "src/calc.py:Calc")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/calc.py:Calc.add", "src/calc.py:Calc.sub"}, calc.ChildrenIDs)

	root, err := store.GetNode(ctx, ".")
	require.NoError(t, err)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, []string{"src"}, root.ChildrenIDs)

	missing, err := store.GetNode(ctx, "nope.py")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLookups_MissIsNotAnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)

	node, err := store.GetNode(ctx, "src/calc.py:Nope")
	require.NoError(t, err)
	assert.Nil(t, node)

	children, err := store.GetChildren(ctx, "src/nope")
	require.NoError(t, err)
	assert.Empty(t, children)

	_, ok, err := store.GetFileHash(ctx, "src/nope.py")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Metadata(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetChildren(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)

	children, err := store.GetChildren(ctx, "src")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "src/calc.py", children[0].ID)
	assert.Equal(t, []string{"src/calc.py:Calc"}, children[0].ChildrenIDs)
	assert.Equal(t, "src/main.py", children[1].ID)
	assert.Equal(t, []string{"src/main.py:main", "src/main.py:helper"}, children[1].ChildrenIDs)

	leaf, err := store.GetChildren(ctx, "src/main.py:helper")
	require.NoError(t, err)
	assert.Empty(t, leaf)
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)

	total, err := store.GetStats(ctx, ".")
	require.NoError(t, err)
	assert.Equal(t, graph.Stats{Files: 2, Classes: 1, Functions: 2, Methods: 2}, total)

	var sum graph.Stats
	children, err := store.GetChildren(ctx, ".")
	require.NoError(t, err)
	for _, c := range children {
		s, err := store.GetStats(ctx, c.ID)
		require.NoError(t, err)
		sum.Add(s)
	}
	assert.Equal(t, total, sum)

	file, err := store.GetStats(ctx, "src/calc.py")
	require.NoError(t, err)
	assert.Equal(t, graph.Stats{Files: 1, Classes: 1, Methods: 2}, file)

	unknown, err := store.GetStats(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, graph.Stats{}, unknown)
}

func TestGetCallers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)

	callers, err := store.GetCallers(ctx, "helper")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/calc.py:Calc.add", "src/main.py:main"}, callers)

	partial, err := store.GetCallers(ctx, "help")
	require.NoError(t, err)
	assert.Empty(t, partial)
}

func TestFileHashes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewTestStore(t)

	_, ok, err := store.GetFileHash(ctx, "a.py")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveFileHash(ctx, "a.py", "111"))
	require.NoError(t, store.SaveFileHash(ctx, "b.py", "222"))
	require.NoError(t, store.SaveFileHash(ctx, "a.py", "333"))

	hash, ok, err := store.GetFileHash(ctx, "a.py")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "333", hash)

	files, err := store.GetIndexedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.py": "333", "b.py": "222"}, files)

	require.NoError(t, store.Update(ctx, func(w *Writer) error {
		return w.ClearFileHashes(ctx)
	}))
	files, err = store.GetIndexedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDeleteFileNodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)

	require.NoError(t, store.Update(ctx, func(w *Writer) error {
		if err := w.SaveFileHash(ctx, "src/calc.py", "abc"); err != nil {
			return err
		}
		return w.ReplaceSearchIndex(ctx, map[string]float64{"add": 1.5}, []Posting{
			{NodeID: "src/calc.py:Calc.add", Term: "add", TF: 1},
			{NodeID: "src/main.py:main", Term: "entry", TF: 1},
		})
	}))

	require.NoError(t, store.DeleteFileNodes(ctx, "src/calc.py"))

	for _, id := range []string{"src/calc.py", "src/calc.py:Calc", "src/calc.py:Calc.add"} {
		n, err := store.GetNode(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, n, id)
	}

	_, ok, err := store.GetFileHash(ctx, "src/calc.py")
	require.NoError(t, err)
	assert.False(t, ok)

	postings, err := store.Postings(ctx, "add")
	require.NoError(t, err)
	assert.Empty(t, postings)

	callers, err := store.GetCallers(ctx, "helper")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.py:main"}, callers)

	src, err := store.GetNode(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.py"}, src.ChildrenIDs)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)
	before, err := store.LoadNodes(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Update(ctx, func(w *Writer) error {
		if err := w.ReplaceGraph(ctx, []*graph.Node{{ID: ".", Name: "other", Type: graph.NodeRoot}}); err != nil {
			return err
		}
		if err := w.SaveFileHash(ctx, "x.py", "1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := store.LoadNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, ok, err := store.GetFileHash(ctx, "x.py")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceGraph_RejectsInvalidGraphs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := savedStore(t)
	before, err := store.LoadNodes(ctx)
	require.NoError(t, err)

	orphan := append(sampleNodes(), &graph.Node{ID: "x.py", ParentID: "missing", Name: "x.py", Type: graph.NodeFile})
	assert.Error(t, store.SaveGraph(ctx, orphan))

	duplicate := append(sampleNodes(), &graph.Node{ID: "src", ParentID: ".", Name: "src", Type: graph.NodeDir})
	assert.Error(t, store.SaveGraph(ctx, duplicate))

	after, err := store.LoadNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOpen_SchemaMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "index.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	version, ok, err := store.Metadata(ctx, MetaSchemaVersion)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, SchemaVersion, version)

	require.NoError(t, store.Update(ctx, func(w *Writer) error {
		return w.SetMetadata(ctx, MetaSchemaVersion, "0")
	}))
	require.NoError(t, store.Close())

	_, err = Open(ctx, path)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	fresh, err := Recreate(ctx, path)
	require.NoError(t, err)
	defer fresh.Close()

	nodes, err := fresh.LoadNodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestLoadGraph(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	empty := NewTestStore(t)
	g := graph.New(t.TempDir(), nil, nil)
	ok, err := empty.LoadGraph(ctx, g)
	require.NoError(t, err)
	assert.False(t, ok)

	store := savedStore(t)
	ok, err = store.LoadGraph(ctx, g)
	require.NoError(t, err)
	assert.True(t, ok)

	stats, found := g.Stats(graph.RootID)
	require.True(t, found)
	assert.Equal(t, graph.Stats{Files: 2, Classes: 1, Functions: 2, Methods: 2}, stats)
	assert.Equal(t, "proj", g.Root().Name)
}
