package parsers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludePatterns are skipped during discovery in addition to user patterns.
// Patterns without a slash match any single path segment.
var DefaultExcludePatterns = []string{
	".git",
	".hg",
	".svn",
	".contexto",
	"__pycache__",
	".venv",
	"venv",
	"node_modules",
	"vendor",
	".pytest_cache",
	".mypy_cache",
	".ruff_cache",
	".tox",
	"*.egg-info",
	"dist",
	"build",
	"target",
}

// Languages lists every language known to the default registry.
var Languages = []*LanguageConfig{Python, JavaScript, TypeScript, TSX, Go, Rust, Java, C, Ruby, PHP}

// Registry maps file extensions to parsers.
type Registry struct {
	byExt map[string]*treeSitterParser
}

// NewRegistry builds a registry for the given languages. Later entries win
// when two languages claim the same extension.
func NewRegistry(languages ...*LanguageConfig) *Registry {
	r := &Registry{byExt: make(map[string]*treeSitterParser)}
	for _, lang := range languages {
		p := newTreeSitterParser(lang)
		for _, ext := range lang.Extensions {
			r.byExt[strings.ToLower(ext)] = p
		}
	}
	return r
}

// NewDefaultRegistry returns a registry with every supported language.
func NewDefaultRegistry() *Registry {
	return NewRegistry(Languages...)
}

// ParserFor returns the parser registered for the extension of path.
func (r *Registry) ParserFor(path string) (Parser, bool) {
	p, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, false
	}
	return p, true
}

// Language returns the language name for path, or "" when unsupported.
func (r *Registry) Language(path string) string {
	p, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return ""
	}
	return p.config.Name
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ParserFor(path)
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse dispatches to the parser registered for filePath.
func (r *Registry) Parse(filePath string, source []byte) ([]Entity, error) {
	p, ok := r.ParserFor(filePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filePath)
	}
	return p.Parse(filePath, source)
}
