// Package testutil provides sample projects shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MainPy is src/main.py of the sample project.
const MainPy = `"""Main module."""


def main():
    """Entry point."""
    print("Hello, World!")
    helper()


def helper():
    """Helper function."""
    return 42
`

// HelpersPy is src/utils/helpers.py of the sample project.
const HelpersPy = `"""Utility helpers."""


class Calculator:
    """A simple calculator class."""

    def add(self, a: int, b: int) -> int:
        """Add two numbers."""
        return a + b

    def subtract(self, a: int, b: int) -> int:
        """Subtract b from a."""
        return a - b


def format_output(value):
    """Format a value for output."""
    return str(value)


async def async_fetch(url: str) -> str:
    """Fetch data asynchronously."""
    return f"Data from {url}"
`

// SampleFiles maps relative paths to contents for the sample project.
var SampleFiles = map[string]string{
	"src/main.py":           MainPy,
	"src/utils/helpers.py":  HelpersPy,
	"src/utils/__init__.py": "\"\"\"Utils package.\"\"\"\n",
	"src/__init__.py":       "\"\"\"Source package.\"\"\"\n",
}

// WriteFiles writes files under root, creating parent directories.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// SampleProject writes the sample project into a fresh temp directory and returns its path.
func SampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, SampleFiles)
	return root
}
