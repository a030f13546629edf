// Package symstash keeps a local cache of symbol databases ("memdb" files)
// in sync with a catalog published to an OCI registry, and serves
// memory-mapped handles onto the cached files.
//
// The local state is recorded in a sync.state file under the stash directory.
// A database is served only if that file records it; a database that sync
// replaces or removes is evicted from the handle cache, while readers still
// holding the old handle keep a valid mapping until they drop it.
//
// Basic usage:
//
//	catalog, _ := symstash.NewOCICatalog("ghcr.io/acme/memdbs", false)
//	stash, _ := symstash.Open("~/.local/share/symstash", catalog,
//	    symstash.WithLogger(logger),
//	    symstash.WithIgnorePatterns("watchOS_*"),
//	)
//
//	// Bring the local cache up to date
//	report, _ := stash.Sync(ctx, symstash.SyncOptions{})
//	fmt.Println(len(report.Updated), "updated, revision", report.Revision)
//
//	// Check health without changing anything
//	status, _ := stash.SyncStatus(ctx)
//	fmt.Println(status.Lag(), status.Healthy())
//
//	// Look up a database
//	db, _ := stash.GetMemDBFromSDKID("iOS_10.2.1_14D27")
//	fmt.Println(db.Info(), db.Len())
//
//	// Resolve a partial identifier
//	matches, _ := stash.FuzzyMatchSDKID("iOS_10.2")
package symstash
