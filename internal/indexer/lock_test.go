package indexer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLock(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), ".contexto", "index.db")

	first, err := AcquireWriterLock(dbPath)
	require.NoError(t, err)

	_, err = AcquireWriterLock(dbPath)
	assert.ErrorIs(t, err, ErrIndexLocked)

	require.NoError(t, first.Release())

	again, err := AcquireWriterLock(dbPath)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}
