package explore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/contexto/internal/graph"
	"github.com/mvp-joe/contexto/internal/indexer"
	"github.com/mvp-joe/contexto/internal/search"
	"github.com/mvp-joe/contexto/internal/storage"
	"github.com/mvp-joe/contexto/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Explorer:
// - Map reports the root name, totals, and top-level directories with stats
// - Expand lists children in order with subtree stats; unknown ids are ErrNodeNotFound
// - Inspect lists calls and callers, excluding the node itself
// - Read returns whole files, explicit ranges, and entity ranges
// - Read rejects traversal, absolute paths, and symlinks outside the root
// - Read reports directories as ErrNotAFile and missing files as ErrNodeNotFound
// - Search applies the configured default limit
// - Invalidate makes re-indexed stats visible

type fixture struct {
	root     string
	store    *storage.Store
	indexer  *indexer.Indexer
	explorer *Explorer
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()

	root := testutil.SampleProject(t)
	store := storage.NewTestStore(t)
	engine := search.NewEngine(store)

	idx, err := indexer.New(&indexer.Config{RootDir: root, DBPath: store.Path()}, store, engine, nil)
	require.NoError(t, err)
	_, err = idx.Index(ctx)
	require.NoError(t, err)

	explorer, err := New(root, store, engine, opts)
	require.NoError(t, err)
	t.Cleanup(explorer.Close)

	return &fixture{root: root, store: store, indexer: idx, explorer: explorer}
}

func TestMap(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	m, err := f.explorer.Map(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(f.root), m.RootName)
	assert.Equal(t, f.explorer.RootDir(), m.RootPath)
	assert.Equal(t, graph.Stats{Files: 4, Classes: 1, Functions: 4, Methods: 2}, m.Totals)
	require.Len(t, m.Dirs, 1)
	assert.Equal(t, "src", m.Dirs[0].Node.ID)
	assert.Equal(t, m.Totals, m.Dirs[0].Stats)
}

func TestMap_EmptyIndex(t *testing.T) {
	t.Parallel()

	store := storage.NewTestStore(t)
	explorer, err := New(t.TempDir(), store, search.NewEngine(store), Options{})
	require.NoError(t, err)
	defer explorer.Close()

	_, err = explorer.Map(context.Background())
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestExpand(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	ctx := context.Background()

	result, err := f.explorer.Expand(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, graph.NodeDir, result.Node.Type)

	var ids []string
	for _, c := range result.Children {
		ids = append(ids, c.Node.ID)
	}
	assert.Equal(t, []string{"src/utils", "src/__init__.py", "src/main.py"}, ids)
	assert.Equal(t, graph.Stats{Files: 2, Classes: 1, Functions: 2, Methods: 2}, result.Children[0].Stats)
	assert.Equal(t, graph.Stats{Files: 1, Functions: 2}, result.Children[2].Stats)

	class, err := f.explorer.Expand(ctx, "src/utils/helpers.py:Calculator")
	require.NoError(t, err)
	require.Len(t, class.Children, 2)
	assert.Equal(t, "add", class.Children[0].Node.Name)
	assert.Equal(t, "subtract", class.Children[1].Node.Name)

	_, err = f.explorer.Expand(ctx, "src/nope.py")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	ctx := context.Background()

	main, err := f.explorer.Inspect(ctx, "src/main.py:main")
	require.NoError(t, err)
	assert.Equal(t, []string{"print", "helper"}, main.Calls)
	assert.Empty(t, main.CalledBy)

	helper, err := f.explorer.Inspect(ctx, "src/main.py:helper")
	require.NoError(t, err)
	assert.Empty(t, helper.Calls)
	assert.Equal(t, []string{"src/main.py:main"}, helper.CalledBy)

	_, err = f.explorer.Inspect(ctx, "src/main.py:missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestInspect_ExcludesSelf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewTestStore(t)
	require.NoError(t, store.SaveGraph(ctx, []*graph.Node{
		{ID: ".", Name: "proj", Type: graph.NodeRoot},
		{ID: "r.py", ParentID: ".", Name: "r.py", Type: graph.NodeFile, FilePath: "r.py"},
		{ID: "r.py:walk", ParentID: "r.py", Name: "walk", Type: graph.NodeFunction, FilePath: "r.py",
			LineStart: 1, LineEnd: 3, Calls: []string{"walk"}},
		{ID: "r.py:run", ParentID: "r.py", Name: "run", Type: graph.NodeFunction, FilePath: "r.py",
			LineStart: 5, LineEnd: 6, Calls: []string{"walk"}},
	}))
	explorer, err := New(t.TempDir(), store, search.NewEngine(store), Options{})
	require.NoError(t, err)
	defer explorer.Close()

	result, err := explorer.Inspect(ctx, "r.py:walk")
	require.NoError(t, err)
	assert.Equal(t, []string{"r.py:run"}, result.CalledBy)
	assert.Equal(t, []string{"walk"}, result.Calls)
}

func TestRead(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	ctx := context.Background()

	whole, err := f.explorer.Read(ctx, "src/main.py", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "src/main.py", whole.Path)
	assert.Equal(t, 1, whole.StartLine)
	require.Len(t, whole.Lines, 12)
	assert.Equal(t, `"""Main module."""`, whole.Lines[0])
	assert.Equal(t, "    return 42", whole.Lines[11])

	ranged, err := f.explorer.Read(ctx, "src/main.py", 4, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, ranged.StartLine)
	assert.Equal(t, []string{"def main():", `    """Entry point."""`}, ranged.Lines)

	entity, err := f.explorer.Read(ctx, "src/main.py:helper", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "src/main.py", entity.Path)
	assert.Equal(t, 10, entity.StartLine)
	assert.Equal(t, []string{"def helper():", `    """Helper function."""`, "    return 42"}, entity.Lines)

	openEnded, err := f.explorer.Read(ctx, "src/main.py", 11, 0)
	require.NoError(t, err)
	assert.Len(t, openEnded.Lines, 2)

	past, err := f.explorer.Read(ctx, "src/main.py", 50, 60)
	require.NoError(t, err)
	assert.Empty(t, past.Lines)
}

func TestRead_AccessDenied(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	ctx := context.Background()

	outside := filepath.Join(t.TempDir(), "secret.py")
	require.NoError(t, os.WriteFile(outside, []byte("TOKEN = 1\n"), 0644))
	require.NoError(t, os.Symlink(outside, filepath.Join(f.root, "link.py")))

	for _, path := range []string{"../secret.py", "src/../../secret.py", outside, "link.py"} {
		_, err := f.explorer.Read(ctx, path, 0, 0)
		assert.ErrorIs(t, err, ErrAccessDenied, path)
	}
}

func TestRead_NotAFileAndMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.explorer.Read(ctx, "src/utils", 0, 0)
	assert.ErrorIs(t, err, ErrNotAFile)

	_, err = f.explorer.Read(ctx, "src/missing.py", 0, 0)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSearch_DefaultLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{DefaultLimit: 1})
	results, err := f.explorer.Search(context.Background(), "int", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "src/utils/helpers.py:Calculator.add", results[0].Node.ID)

	results, err = f.explorer.Search(context.Background(), "int", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Options{})
	ctx := context.Background()

	before, err := f.explorer.Map(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, before.Totals.Files)

	testutil.WriteFiles(t, f.root, map[string]string{"src/extra.py": "def extra():\n    pass\n"})
	_, err = f.indexer.IndexIncremental(ctx)
	require.NoError(t, err)

	f.explorer.Invalidate()
	after, err := f.explorer.Map(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Totals.Files)
	assert.Equal(t, 5, after.Totals.Functions)
}
