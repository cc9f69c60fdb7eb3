package parsers

import (
	"errors"
	"testing"

	"github.com/mvp-joe/contexto/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Python parser:
// - Top-level functions with line ranges, signatures, docstrings, and calls
// - Classes with methods in source order
// - Async functions keep the async keyword in their signature
// - Decorated methods are still methods
// - Nested classes become children of the outer class
// - Nested functions are not entities
// - self.method() calls resolve to the method name
// - Syntax errors return ErrSyntax
// - Empty files produce no entities

func parsePython(t *testing.T, source string) []Entity {
	t.Helper()
	entities, err := newTreeSitterParser(Python).Parse("test.py", []byte(source))
	require.NoError(t, err)
	return entities
}

func TestPythonParser_Functions(t *testing.T) {
	t.Parallel()

	entities := parsePython(t, testutil.MainPy)
	require.Len(t, entities, 2)

	main := entities[0]
	assert.Equal(t, KindFunction, main.Kind)
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, "def main()", main.Signature)
	assert.Equal(t, "Entry point.", main.Docstring)
	assert.Equal(t, 4, main.StartLine)
	assert.Equal(t, 7, main.EndLine)
	assert.Equal(t, []string{"print", "helper"}, main.Calls)

	helper := entities[1]
	assert.Equal(t, "helper", helper.Name)
	assert.Equal(t, 10, helper.StartLine)
	assert.Equal(t, 12, helper.EndLine)
	assert.Empty(t, helper.Calls)
}

func TestPythonParser_ClassWithMethods(t *testing.T) {
	t.Parallel()

	entities := parsePython(t, testutil.HelpersPy)
	require.Len(t, entities, 3)

	calc := entities[0]
	assert.Equal(t, KindClass, calc.Kind)
	assert.Equal(t, "Calculator", calc.Name)
	assert.Equal(t, "A simple calculator class.", calc.Docstring)
	assert.Empty(t, calc.Signature)
	assert.Equal(t, 4, calc.StartLine)
	assert.Equal(t, 13, calc.EndLine)

	require.Len(t, calc.Children, 2)
	add := calc.Children[0]
	assert.Equal(t, KindMethod, add.Kind)
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, "def add(self, a: int, b: int) -> int", add.Signature)
	assert.Equal(t, "Add two numbers.", add.Docstring)
	assert.Equal(t, 7, add.StartLine)
	assert.Equal(t, 9, add.EndLine)
	assert.Equal(t, "subtract", calc.Children[1].Name)

	assert.Equal(t, "format_output", entities[1].Name)
	assert.Equal(t, []string{"str"}, entities[1].Calls)

	fetch := entities[2]
	assert.Equal(t, "async_fetch", fetch.Name)
	assert.Equal(t, KindFunction, fetch.Kind)
	assert.Equal(t, "async def async_fetch(url: str) -> str", fetch.Signature)
	assert.Equal(t, "Fetch data asynchronously.", fetch.Docstring)
}

func TestPythonParser_DecoratorsAndNesting(t *testing.T) {
	t.Parallel()

	source := `class Outer:
    @staticmethod
    def build():
        def inner():
            pass
        return inner()

    class Inner:
        def run(self):
            self.helper()
            self.helper()
            os.path.join("a", "b")
`
	entities := parsePython(t, source)
	require.Len(t, entities, 1)

	outer := entities[0]
	require.Len(t, outer.Children, 2)

	build := outer.Children[0]
	assert.Equal(t, KindMethod, build.Kind)
	assert.Equal(t, "build", build.Name)
	assert.Equal(t, []string{"inner"}, build.Calls)

	inner := outer.Children[1]
	assert.Equal(t, KindClass, inner.Kind)
	assert.Equal(t, "Inner", inner.Name)
	require.Len(t, inner.Children, 1)
	assert.Equal(t, []string{"helper", "join"}, inner.Children[0].Calls)
}

func TestPythonParser_MultilineDocstring(t *testing.T) {
	t.Parallel()

	source := `def run():
    """Run the job.

    Retries twice.
    """
    pass
`
	entities := parsePython(t, source)
	require.Len(t, entities, 1)
	assert.Equal(t, "Run the job.\n\nRetries twice.", entities[0].Docstring)
}

func TestPythonParser_NoDocstring(t *testing.T) {
	t.Parallel()

	entities := parsePython(t, "def f(x):\n    return x\n")
	require.Len(t, entities, 1)
	assert.Empty(t, entities[0].Docstring)
}

func TestPythonParser_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := newTreeSitterParser(Python).Parse("broken.py", []byte("def broken(:\n    pass\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestPythonParser_EmptyFile(t *testing.T) {
	t.Parallel()

	entities := parsePython(t, "")
	assert.Empty(t, entities)
}
