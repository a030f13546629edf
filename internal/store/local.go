package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// StateFile persists a SyncState under a root directory and keeps the last
// loaded or written state as a shared in-memory snapshot.
type StateFile struct {
	path string

	mu       sync.RWMutex
	snapshot *SyncState
}

// NewStateFile returns the state file stored in root.
func NewStateFile(root string) *StateFile {
	return &StateFile{path: filepath.Join(root, StateFilename)}
}

// Path returns the canonical state file path.
func (f *StateFile) Path() string { return f.path }

func (f *StateFile) tempPath() string {
	return f.path[:len(f.path)-len(filepath.Ext(f.path))] + TempStateExt
}

// Read loads the state from disk and makes it the current snapshot.
// A missing file yields a fresh state.
func (f *StateFile) Read() (*SyncState, error) {
	state, err := f.load()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.snapshot = state
	f.mu.Unlock()

	return state, nil
}

func (f *StateFile) load() (*SyncState, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewSyncState(), nil
		}
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	defer file.Close()

	state := NewSyncState()
	dec := json.NewDecoder(bufio.NewReader(file))
	if err := dec.Decode(state); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptState, f.path, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: trailing data after state", ErrCorruptState, f.path)
	}
	if state.SDKs == nil {
		state.SDKs = NewSyncState().SDKs
	}
	for key, entry := range state.SDKs {
		if key != entry.Info.Filename() || entry.Filename != key {
			return nil, fmt.Errorf("%w: %s: entry %q is recorded as %s", ErrCorruptState, f.path, key, entry.Info)
		}
	}
	return state, nil
}

// Cached returns the current snapshot, reading from disk only if nothing has
// been loaded yet.
func (f *StateFile) Cached() (*SyncState, error) {
	f.mu.RLock()
	state := f.snapshot
	f.mu.RUnlock()
	if state != nil {
		return state, nil
	}
	return f.Read()
}

// Write persists state and replaces the snapshot with a copy of it.
//
// The state is written to a temporary file next to the canonical one and then
// renamed over it, so the canonical file always holds a complete state.
func (f *StateFile) Write(state *SyncState) error {
	tmp := f.tempPath()
	if err := writeJSON(tmp, state); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write sync state: %w", err)
	}
	if err := atomic.ReplaceFile(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace sync state: %w", err)
	}

	snapshot := state.Clone()
	f.mu.Lock()
	f.snapshot = snapshot
	f.mu.Unlock()
	return nil
}

func writeJSON(path string, v any) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Sync()
}
