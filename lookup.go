package symstash

import (
	"errors"
	"fmt"

	"github.com/aweris/symstash/internal/memdb"
	"github.com/aweris/symstash/internal/sdk"
	"github.com/aweris/symstash/internal/store"
)

// GetMemDB returns a shared handle to the database for info.
//
// Only databases recorded in the local state are served; ErrUnknownSDK is
// returned otherwise, whatever is on disk. Handles stay valid after a sync
// replaces or deletes the underlying file.
func (s *Stash) GetMemDB(info SDKInfo) (*MemDB, error) {
	for {
		if db, ok := s.handles.Get(info); ok {
			return db, nil
		}

		gen := s.handles.Generation(info)
		state, err := s.state.Cached()
		if err != nil {
			return nil, err
		}
		if _, ok := state.Get(info); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSDK, info)
		}

		db, err := memdb.Open(store.DatabasePath(s.path, info))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", info, err)
		}
		cached, added, err := s.handles.AddIfAbsent(info, db.Share(), gen)
		if errors.Is(err, store.ErrStaleHandle) {
			// sync replaced the file while it was being opened
			_ = db.Close()
			s.logger.Debug("reopening memdb after eviction", "sdk", info.ID())
			continue
		}
		if !added {
			_ = db.Close()
		}
		s.logger.Debug("opened memdb", "sdk", info.ID(), "size", cached.Len())
		return cached, nil
	}
}

// GetMemDBFromSDKID parses id and returns its database. An id that does not
// parse is an unknown SDK.
func (s *Stash) GetMemDBFromSDKID(id string) (*MemDB, error) {
	info, err := sdk.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownSDK, err)
	}
	return s.GetMemDB(info)
}
