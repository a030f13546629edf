// Package store implements the local durable state of the stash.
//
// Storage layout:
//
//	root/
//	  sync.state          (JSON SyncState, replaced atomically)
//	  sync.tempstate      (in-flight write, renamed over sync.state)
//	  <ID>.memdb          (one database per synced identity)
//	  <ID>.memdb.download (in-flight download, renamed over <ID>.memdb)
//
// Presence in sync.state is the only authority for "this database is valid";
// files on disk that are not recorded there are never served.
package store

import (
	"errors"
	"path/filepath"

	"github.com/aweris/symstash/internal/sdk"
)

const (
	StateFilename = "sync.state"
	TempStateExt  = ".tempstate"
	DownloadExt   = ".download"
)

var ErrCorruptState = errors.New("symstash: corrupt sync state")

// DatabasePath returns the on-disk location of the database for info.
func DatabasePath(root string, info sdk.Info) string {
	return filepath.Join(root, info.Filename())
}
