package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// HashStore provides the file hashes recorded by the previous run.
type HashStore interface {
	GetIndexedFiles(ctx context.Context) (map[string]string, error)
}

// ChangeSet contains the result of change detection.
type ChangeSet struct {
	Added     []string // New files with no stored hash
	Modified  []string // Files whose hash differs from the stored one
	Deleted   []string // Files with a stored hash that are gone from disk
	Unchanged []string // Files whose hash matches

	// Dirs lists every directory found during discovery.
	Dirs []string
	// Hashes holds the current hash of every added or modified file.
	Hashes map[string]string
}

// HasChanges reports whether any file was added, modified, or deleted.
func (c *ChangeSet) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Modified) > 0 || len(c.Deleted) > 0
}

// ChangeDetector compares the files on disk to the stored hash map.
type ChangeDetector struct {
	rootDir   string
	store     HashStore
	discovery *FileDiscovery
}

// NewChangeDetector creates a new change detector.
func NewChangeDetector(rootDir string, store HashStore, discovery *FileDiscovery) *ChangeDetector {
	return &ChangeDetector{
		rootDir:   rootDir,
		store:     store,
		discovery: discovery,
	}
}

// DetectChanges classifies every discovered file as added, modified, or
// unchanged by content hash, and every stored file missing from disk as deleted.
// Unchanged files are only hashed, never parsed.
func (cd *ChangeDetector) DetectChanges(ctx context.Context) (*ChangeSet, error) {
	dirs, files, err := cd.discovery.Walk(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	stored, err := cd.store.GetIndexedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored hashes: %w", err)
	}

	changes := &ChangeSet{
		Added:     []string{},
		Modified:  []string{},
		Deleted:   []string{},
		Unchanged: []string{},
		Dirs:      dirs,
		Hashes:    make(map[string]string),
	}

	seen := make(map[string]bool, len(files))
	for _, relPath := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[relPath] = true

		hash, err := HashFile(filepath.Join(cd.rootDir, filepath.FromSlash(relPath)))
		if err != nil {
			if os.IsNotExist(err) {
				// Removed between discovery and hashing; handled as deleted below.
				delete(seen, relPath)
				continue
			}
			return nil, fmt.Errorf("failed to calculate hash for %s: %w", relPath, err)
		}

		previous, existed := stored[relPath]
		switch {
		case !existed:
			changes.Added = append(changes.Added, relPath)
			changes.Hashes[relPath] = hash
		case previous != hash:
			changes.Modified = append(changes.Modified, relPath)
			changes.Hashes[relPath] = hash
		default:
			changes.Unchanged = append(changes.Unchanged, relPath)
		}
	}

	for relPath := range stored {
		if !seen[relPath] {
			changes.Deleted = append(changes.Deleted, relPath)
		}
	}
	sort.Strings(changes.Deleted)

	return changes, nil
}

// HashFile calculates the SHA-256 hash of a file as lowercase hex.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes calculates the SHA-256 hash of data as lowercase hex.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
