package indexer

import (
	"time"

	"github.com/mvp-joe/contexto/internal/graph"
)

// Run modes recorded in the index metadata.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// Config contains indexer configuration.
type Config struct {
	RootDir        string        // Absolute project root
	DBPath         string        // Absolute path of the SQLite index
	IgnorePatterns []string      // Extra exclusions on top of the defaults
	WatchDebounce  time.Duration // Quiet period before a watch-triggered run
}

// IndexStats describes one indexing run.
type IndexStats struct {
	RunID          string
	Mode           string
	FilesAdded     int
	FilesModified  int
	FilesRemoved   int
	FilesUnchanged int
	Totals         graph.Stats
	Duration       time.Duration
}
