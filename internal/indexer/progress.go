package indexer

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(dirs, files int)

	// OnFileProcessingStart is called before parsing files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is parsed.
	OnFileProcessed(fileName string)

	// OnSearchIndexStart is called before the graph and search index are written.
	OnSearchIndexStart()

	// OnComplete is called when indexing completes successfully.
	OnComplete(stats *IndexStats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                    {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(dirs, files int)  {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)      {}
func (n *NoOpProgressReporter) OnSearchIndexStart()                  {}
func (n *NoOpProgressReporter) OnComplete(stats *IndexStats)         {}

// progressObserver forwards graph build events to a ProgressReporter.
type progressObserver struct {
	progress ProgressReporter
}

func (o progressObserver) OnDiscovered(dirs, files int) {
	o.progress.OnDiscoveryComplete(dirs, files)
	o.progress.OnFileProcessingStart(files)
}

func (o progressObserver) OnFileParsed(relPath string, err error) {
	o.progress.OnFileProcessed(relPath)
}
