package symstash

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options configures a Stash.
type Options struct {
	Logger         *slog.Logger
	IgnorePatterns []string
}

// Option is a functional option for configuring Open.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for sync outcomes and lookups.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithIgnorePatterns excludes identifiers matching any glob pattern from sync
// and health accounting.
func WithIgnorePatterns(patterns ...string) Option {
	return func(o *Options) { o.IgnorePatterns = append(o.IgnorePatterns, patterns...) }
}

// DefaultSymbolDir returns the default stash directory.
func DefaultSymbolDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "symstash")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "symstash")
	}
	return ".symstash"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
