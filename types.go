package symstash

import (
	"github.com/aweris/symstash/internal/memdb"
	"github.com/aweris/symstash/internal/remote"
	"github.com/aweris/symstash/internal/sdk"
	"github.com/aweris/symstash/internal/store"
)

// SDKInfo identifies a symbol database.
// Re-exported from internal/sdk for convenience.
type SDKInfo = sdk.Info

// RemoteSDK describes a database as published in the catalog.
type RemoteSDK = sdk.Remote

// SyncState is the durable record of what the stash holds.
type SyncState = store.SyncState

// MemDB is a shared, memory-mapped database. Holders cannot close it; the
// mapping is released once no holder references it.
type MemDB = memdb.Shared

// Catalog is the source of published databases.
// Re-exported from internal/remote for convenience.
type Catalog = remote.Catalog

// ParseSDKInfo parses an identifier such as "iOS_10.2.1_14D27" or a
// database filename.
func ParseSDKInfo(s string) (SDKInfo, error) {
	return sdk.Parse(s)
}

// OCICatalog is a Catalog stored in an OCI registry repository.
type OCICatalog = remote.OCICatalog

// NewOCICatalog creates a catalog for a repository reference such as
// "ghcr.io/acme/memdbs". insecure allows plain HTTP registries.
func NewOCICatalog(repository string, insecure bool) (*OCICatalog, error) {
	return remote.NewOCICatalog(repository, insecure)
}

// WriteMemDB writes a database file holding body for info.
func WriteMemDB(path string, info SDKInfo, body []byte) error {
	return memdb.WriteFile(path, info, body)
}
