package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mvp-joe/contexto/internal/indexer"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet          bool
	out            io.Writer
	fileBar        *progressbar.ProgressBar
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(quiet bool, out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(dirs, files int) {
	if c.quiet {
		return
	}
	log.Printf("Processing %d files in %d directories\n", files, dirs)
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.totalFiles = totalFiles
	c.processedFiles = 0

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Indexing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil && c.processedFiles < c.totalFiles {
		c.processedFiles++
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnSearchIndexStart() {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	log.Println("Writing graph and search index...")
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.IndexStats) {
	if c.quiet {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Indexing complete (%s): %s files in %.1fs\n",
		stats.Mode, formatNumber(stats.Totals.Files), stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Classes:   %s\n", formatNumber(stats.Totals.Classes))
	fmt.Fprintf(c.out, "  Functions: %s\n", formatNumber(stats.Totals.Functions))
	fmt.Fprintf(c.out, "  Methods:   %s\n", formatNumber(stats.Totals.Methods))
	if stats.Mode == indexer.ModeIncremental {
		fmt.Fprintf(c.out, "  Changes:   %d added, %d modified, %d removed, %d unchanged\n",
			stats.FilesAdded, stats.FilesModified, stats.FilesRemoved, stats.FilesUnchanged)
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
