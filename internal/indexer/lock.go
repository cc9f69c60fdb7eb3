package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrIndexLocked is returned when another process is already writing the index.
var ErrIndexLocked = errors.New("index is locked by another process")

// WriterLock enforces a single writer per index database using a lock file
// next to it.
type WriterLock struct {
	lock *flock.Flock
}

// AcquireWriterLock takes the writer lock for dbPath without blocking.
// Returns ErrIndexLocked if another process holds it.
func AcquireWriterLock(dbPath string) (*WriterLock, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrIndexLocked
	}
	return &WriterLock{lock: lock}, nil
}

// Release releases the lock.
func (l *WriterLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
