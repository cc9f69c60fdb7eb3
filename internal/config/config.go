package config

import (
	"path/filepath"
	"time"
)

// DirName is the per-project directory holding the index and config file.
const DirName = ".contexto"

// Config represents the complete contexto configuration.
// It can be loaded from .contexto/config.yml with environment variable overrides.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
}

// PathsConfig defines extra paths to leave out of the index.
type PathsConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns added to the built-in exclusions
}

// StorageConfig defines where the index lives.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // relative to the project root unless absolute
}

// SearchConfig defines search behavior.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"` // results when no limit is given
}

// WatchConfig defines watch mode behavior.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before re-indexing
}

// ServeConfig defines MCP server behavior.
type ServeConfig struct {
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // stats cache capacity
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Ignore: []string{},
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(DirName, "index.db"),
		},
		Search: SearchConfig{
			DefaultLimit: 10,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Serve: ServeConfig{
			CacheSize: 1024,
		},
	}
}

// DBPath resolves the index location for a project root.
func (c *Config) DBPath(rootDir string) string {
	if filepath.IsAbs(c.Storage.DBPath) {
		return c.Storage.DBPath
	}
	return filepath.Join(rootDir, c.Storage.DBPath)
}

// WatchDebounce returns the watch quiet period.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
