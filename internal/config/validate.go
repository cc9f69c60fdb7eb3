package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// MaxSearchLimit is the largest accepted search.default_limit.
const MaxSearchLimit = 1000

var (
	// ErrInvalidIgnorePattern indicates an ignore pattern that is not a valid glob
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")

	// ErrEmptyDBPath indicates a missing index location
	ErrEmptyDBPath = errors.New("empty database path")

	// ErrInvalidSearchLimit indicates a default limit outside 1..MaxSearchLimit
	ErrInvalidSearchLimit = errors.New("invalid search limit")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidCacheSize indicates a non-positive cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")
)

// Validate checks that the configuration is valid and complete.
// All problems are reported together; each matches its sentinel with errors.Is.
func Validate(cfg *Config) error {
	var errs []error

	for _, pattern := range cfg.Paths.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnorePattern, pattern, err))
		}
	}

	if strings.TrimSpace(cfg.Storage.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: storage.db_path is required", ErrEmptyDBPath))
	}

	if cfg.Search.DefaultLimit < 1 || cfg.Search.DefaultLimit > MaxSearchLimit {
		errs = append(errs, fmt.Errorf("%w: default_limit must be between 1 and %d, got %d",
			ErrInvalidSearchLimit, MaxSearchLimit, cfg.Search.DefaultLimit))
	}

	if cfg.Watch.DebounceMS <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMS))
	}

	if cfg.Serve.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidCacheSize, cfg.Serve.CacheSize))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors, keeping each one matchable.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
}
