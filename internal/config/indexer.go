package config

import (
	"github.com/mvp-joe/contexto/internal/explore"
	"github.com/mvp-joe/contexto/internal/indexer"
)

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the root directory of the codebase to index.
func (c *Config) ToIndexerConfig(rootDir string) *indexer.Config {
	return &indexer.Config{
		RootDir:        rootDir,
		DBPath:         c.DBPath(rootDir),
		IgnorePatterns: c.Paths.Ignore,
		WatchDebounce:  c.WatchDebounce(),
	}
}

// ToExploreOptions converts a Config to explore.Options.
func (c *Config) ToExploreOptions() explore.Options {
	return explore.Options{
		DefaultLimit: c.Search.DefaultLimit,
		CacheSize:    c.Serve.CacheSize,
	}
}
