package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestStore opens a store in t.TempDir() and closes it on cleanup.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    store := storage.NewTestStore(t)
//	    // ... test code ...
//	}
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}
