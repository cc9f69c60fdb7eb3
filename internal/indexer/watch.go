package indexer

import (
	"context"
	"errors"
	"log"

	"github.com/mvp-joe/contexto/internal/watcher"
)

// Watch runs an incremental index each time source files settle after a
// change, until ctx is cancelled. onRun, if set, receives the outcome of
// every run. A run that finds the index locked is skipped.
func (idx *Indexer) Watch(ctx context.Context, onRun func(files []string, stats *IndexStats, err error)) error {
	w, err := watcher.New(idx.config.RootDir, idx.discovery, idx.config.WatchDebounce)
	if err != nil {
		return err
	}

	err = w.Start(ctx, func(files []string) {
		stats, err := idx.IndexIncremental(ctx)
		if errors.Is(err, ErrIndexLocked) {
			log.Printf("Warning: index locked, skipping update for %d changed files", len(files))
		}
		if onRun != nil {
			onRun(files, stats, err)
		}
	})
	if err != nil {
		w.Stop()
		return err
	}

	<-ctx.Done()
	return w.Stop()
}
