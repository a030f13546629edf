package symstash

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/aweris/symstash/internal/ignore"
	"github.com/aweris/symstash/internal/store"
)

// Stash is a local cache of symbol databases mirrored from a Catalog.
//
// All methods are safe for concurrent use. At most one Sync runs at a time.
type Stash struct {
	path    string
	catalog Catalog
	state   *store.StateFile
	handles *store.HandleCache
	ignore  *ignore.Patterns
	logger  *slog.Logger

	syncMu sync.Mutex
}

// Open creates or opens the stash rooted at dir. Nothing is read from disk
// or the catalog until first use.
func Open(dir string, catalog Catalog, opts ...Option) (*Stash, error) {
	if catalog == nil {
		return nil, errors.New("symstash: nil catalog")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	path := expandPath(dir)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create symbol dir: %w", err)
	}

	patterns, err := ignore.Compile(options.IgnorePatterns...)
	if err != nil {
		return nil, err
	}

	return &Stash{
		path:    path,
		catalog: catalog,
		state:   store.NewStateFile(path),
		handles: store.NewHandleCache(),
		ignore:  patterns,
		logger:  options.Logger,
	}, nil
}

// Path returns the stash directory.
func (s *Stash) Path() string { return s.path }

// IsIgnored reports whether info is excluded by the ignore patterns.
func (s *Stash) IsIgnored(info SDKInfo) bool {
	return s.ignore.Match(info.ID())
}

// Revision reads the local state from disk and returns its revision, 0 if
// the stash was never synced.
func (s *Stash) Revision() (uint64, error) {
	state, err := s.state.Read()
	if err != nil {
		return 0, err
	}
	return state.Rev(), nil
}

// SDKCount returns how many databases the local state records.
func (s *Stash) SDKCount() (int, error) {
	state, err := s.state.Cached()
	if err != nil {
		return 0, err
	}
	return state.Len(), nil
}

// ListSDKs returns the entries recorded in the local state in ascending
// identity order.
func (s *Stash) ListSDKs() ([]RemoteSDK, error) {
	state, err := s.state.Cached()
	if err != nil {
		return nil, err
	}
	infos := state.Infos()
	entries := make([]RemoteSDK, 0, len(infos))
	for _, info := range infos {
		entry, _ := state.Get(info)
		entries = append(entries, entry)
	}
	return entries, nil
}
