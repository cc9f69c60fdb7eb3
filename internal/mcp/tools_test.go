package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/contexto/internal/explore"
	"github.com/mvp-joe/contexto/internal/indexer"
	"github.com/mvp-joe/contexto/internal/search"
	"github.com/mvp-joe/contexto/internal/storage"
	"github.com/mvp-joe/contexto/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for MCP tools:
// - tools/list advertises map, expand, inspect, read, and search
// - map renders the project overview
// - expand and inspect render nodes; unknown ids become tool errors
// - read honours string-typed line ranges and rejects paths outside the root
// - search renders ranked results; a missing query is a tool error
// - NewServer requires an explorer

func newTestExplorer(t *testing.T) *explore.Explorer {
	t.Helper()
	ctx := context.Background()

	root := testutil.SampleProject(t)
	store := storage.NewTestStore(t)
	engine := search.NewEngine(store)

	idx, err := indexer.New(&indexer.Config{RootDir: root, DBPath: store.Path()}, store, engine, nil)
	require.NoError(t, err)
	_, err = idx.Index(ctx)
	require.NoError(t, err)

	explorer, err := explore.New(root, store, engine, explore.Options{})
	require.NoError(t, err)
	t.Cleanup(explorer.Close)
	return explorer
}

func callTool(t *testing.T, handler toolHandler, args map[string]any) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	s, err := NewServer(newTestExplorer(t), nil, "test")
	require.NoError(t, err)

	response := s.MCPServer().HandleMessage(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	resp, ok := response.(mcp.JSONRPCResponse)
	require.True(t, ok)
	result, ok := resp.Result.(mcp.ListToolsResult)
	require.True(t, ok)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"map", "expand", "inspect", "read", "search"}, names)
}

func TestNewServer_RequiresExplorer(t *testing.T) {
	t.Parallel()

	_, err := NewServer(nil, nil, "test")
	assert.Error(t, err)
}

func TestMapTool(t *testing.T) {
	t.Parallel()

	text, isErr := callTool(t, createMapHandler(newTestExplorer(t)), nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "project: ")
	assert.Contains(t, text, "src/")
	assert.Contains(t, text, "4 files, 1 classes, 6 functions")
}

func TestExpandTool(t *testing.T) {
	t.Parallel()

	explorer := newTestExplorer(t)
	handler := createExpandHandler(explorer)

	text, isErr := callTool(t, handler, map[string]any{"path": "src/utils/helpers.py"})
	assert.False(t, isErr)
	assert.Contains(t, text, "Calculator")
	assert.Contains(t, text, "format_output")

	text, isErr = callTool(t, handler, map[string]any{"path": "src/missing.py"})
	assert.True(t, isErr)
	assert.Contains(t, text, "node not found")

	text, isErr = callTool(t, handler, map[string]any{})
	assert.True(t, isErr)
	assert.Equal(t, "path parameter is required", text)
}

func TestInspectTool(t *testing.T) {
	t.Parallel()

	handler := createInspectHandler(newTestExplorer(t))

	text, isErr := callTool(t, handler, map[string]any{"path": "src/main.py:helper"})
	assert.False(t, isErr)
	assert.Contains(t, text, "def helper()")
	assert.Contains(t, text, "src/main.py:main")

	_, isErr = callTool(t, handler, map[string]any{"path": "src/main.py:nope"})
	assert.True(t, isErr)
}

func TestReadTool(t *testing.T) {
	t.Parallel()

	handler := createReadHandler(newTestExplorer(t))

	text, isErr := callTool(t, handler, map[string]any{"path": "src/main.py", "start_line": "4", "end_line": float64(5)})
	assert.False(t, isErr)
	assert.Equal(t, "file: src/main.py\n\n   4 | def main():\n   5 |     \"\"\"Entry point.\"\"\"", text)

	text, isErr = callTool(t, handler, map[string]any{"path": "../outside.py"})
	assert.True(t, isErr)
	assert.Contains(t, text, "access denied")
}

func TestSearchTool(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(newTestExplorer(t))

	text, isErr := callTool(t, handler, map[string]any{"query": "calculator", "limit": "3"})
	assert.False(t, isErr)
	assert.Contains(t, text, `search: "calculator"`)
	assert.Contains(t, text, "src/utils/helpers.py:Calculator")

	text, isErr = callTool(t, handler, map[string]any{"limit": 3})
	assert.True(t, isErr)
	assert.Equal(t, "query parameter is required", text)
}
