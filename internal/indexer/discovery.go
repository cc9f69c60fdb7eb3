package indexer

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/contexto/internal/indexer/parsers"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// segment patterns have no slash and match any single path component.
	segment bool
}

// FileDiscovery walks a project tree, skipping excluded paths and files no
// parser recognizes.
type FileDiscovery struct {
	rootDir        string
	registry       *parsers.Registry
	ignorePatterns []compiledPattern
}

// NewFileDiscovery creates a discovery for rootDir. The registry's default
// exclusions are always applied before ignorePatterns.
func NewFileDiscovery(rootDir string, registry *parsers.Registry, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir:  rootDir,
		registry: registry,
	}

	patterns := append(append([]string{}, parsers.DefaultExcludePatterns...), ignorePatterns...)
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{
			pattern: pattern,
			glob:    g,
			segment: !strings.Contains(pattern, "/"),
		})
	}

	return fd, nil
}

// RootDir returns the directory being walked.
func (fd *FileDiscovery) RootDir() string {
	return fd.rootDir
}

// Walk returns every non-excluded directory and every recognized source file
// as sorted, slash-separated paths relative to the root.
func (fd *FileDiscovery) Walk(ctx context.Context) (dirs []string, files []string, err error) {
	dirs = []string{}
	files = []string{}

	err = filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if fd.ShouldIgnore(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			dirs = append(dirs, relPath)
		case d.Type().IsRegular() && fd.registry.Supports(relPath):
			files = append(files, relPath)
		}
		return nil
	})

	sort.Strings(dirs)
	sort.Strings(files)
	return dirs, files, err
}

// IsSourceFile reports whether relPath would be picked up by Walk.
func (fd *FileDiscovery) IsSourceFile(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return fd.registry.Supports(relPath) && !fd.ShouldIgnore(relPath)
}

// ShouldIgnore checks if a path or one of its ancestors matches an ignore pattern.
func (fd *FileDiscovery) ShouldIgnore(relPath string) bool {
	segments := strings.Split(relPath, "/")
	for _, cp := range fd.ignorePatterns {
		if cp.segment {
			for _, segment := range segments {
				if cp.glob.Match(segment) {
					return true
				}
			}
			continue
		}

		// "docs/generated" also excludes everything below it.
		for p := relPath; p != "." && p != ""; p = parentDir(p) {
			if cp.glob.Match(p) {
				return true
			}
		}
	}
	return false
}

func parentDir(relPath string) string {
	i := strings.LastIndex(relPath, "/")
	if i < 0 {
		return "."
	}
	return relPath[:i]
}
