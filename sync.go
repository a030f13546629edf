package symstash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/natefinch/atomic"

	"github.com/aweris/symstash/internal/compression"
	"github.com/aweris/symstash/internal/memdb"
	"github.com/aweris/symstash/internal/progress"
	"github.com/aweris/symstash/internal/sdk"
	"github.com/aweris/symstash/internal/store"
)

// SyncOptions controls how a sync reports its progress.
type SyncOptions struct {
	// UserFacing prints one line per database and a progress line for
	// downloads to Out instead of logging.
	UserFacing bool
	// Out defaults to os.Stdout.
	Out io.Writer
}

func (o SyncOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// SyncReport summarizes a completed sync.
type SyncReport struct {
	Updated   []SDKInfo
	Unchanged []SDKInfo
	Ignored   []SDKInfo
	Deleted   []SDKInfo
	Revision  uint64
	Duration  time.Duration
}

// Changed reports whether the sync touched any database.
func (r SyncReport) Changed() bool {
	return len(r.Updated) > 0 || len(r.Deleted) > 0
}

// Sync brings the local cache in line with the catalog.
//
// Databases are visited newest first. A new or changed database is
// downloaded, recorded and persisted before the next one is looked at, so an
// interrupted sync keeps everything it finished. Local databases that are no
// longer published are deleted afterwards. Unreachable catalogs fail with an
// error wrapping ErrUnavailable and leave the local state untouched.
func (s *Stash) Sync(ctx context.Context, opts SyncOptions) (SyncReport, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	started := time.Now()
	out := opts.out()
	var report SyncReport

	local, err := s.state.Read()
	if err != nil {
		return report, err
	}
	working := local.Clone()

	published, err := s.catalog.List(ctx)
	if err != nil {
		return report, fmt.Errorf("sync: %w", err)
	}
	remoteState := make(map[string]RemoteSDK, len(published))
	for _, entry := range published {
		remoteState[entry.Info.Filename()] = entry
	}

	toDelete := make(map[SDKInfo]struct{}, working.Len())
	for _, info := range working.Infos() {
		toDelete[info] = struct{}{}
	}

	infos := make([]SDKInfo, 0, len(remoteState))
	for _, entry := range remoteState {
		infos = append(infos, entry.Info)
	}
	slices.SortFunc(infos, func(a, b SDKInfo) int { return sdk.Compare(b, a) })

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := remoteState[info.Filename()]
		delete(toDelete, info)

		if s.IsIgnored(info) {
			if opts.UserFacing {
				fmt.Fprintf(out, "Ignored  %s\n", info)
			} else {
				s.logger.Debug("ignored sdk", "sdk", info.ID())
			}
			report.Ignored = append(report.Ignored, info)
			continue
		}

		if current, ok := working.Get(info); ok && current.Equal(entry) {
			if opts.UserFacing {
				fmt.Fprintf(out, "Unchanged %s\n", info)
			} else {
				s.logger.Debug("unchanged sdk", "sdk", info.ID())
			}
			report.Unchanged = append(report.Unchanged, info)
			continue
		}

		if err := s.updateSDK(ctx, entry, opts); err != nil {
			return report, err
		}
		s.handles.Remove(info)

		working.Put(entry)
		working.Bump()
		if err := s.state.Write(working); err != nil {
			return report, err
		}
		report.Updated = append(report.Updated, info)
	}

	for _, info := range sortedInfos(toDelete) {
		working.Remove(info)
		if err := s.removeSDK(info, opts); err != nil {
			return report, err
		}
		s.handles.Remove(info)
		report.Deleted = append(report.Deleted, info)
	}

	report.Revision = working.Bump()
	if err := s.state.Write(working); err != nil {
		return report, err
	}

	report.Duration = time.Since(started)
	if opts.UserFacing {
		fmt.Fprintf(out, "Sync done in %s\n", progress.Duration(report.Duration))
	}
	s.logger.Info("sync finished",
		"revision", report.Revision,
		"updated", len(report.Updated),
		"unchanged", len(report.Unchanged),
		"ignored", len(report.Ignored),
		"deleted", len(report.Deleted),
		"duration", report.Duration,
	)
	return report, nil
}

func sortedInfos(set map[SDKInfo]struct{}) []SDKInfo {
	infos := make([]SDKInfo, 0, len(set))
	for info := range set {
		infos = append(infos, info)
	}
	slices.SortFunc(infos, sdk.Compare)
	return infos
}

// updateSDK downloads entry next to its final location, checks that the
// result is a database for the expected identity, and renames it into place.
func (s *Stash) updateSDK(ctx context.Context, entry RemoteSDK, opts SyncOptions) error {
	started := time.Now()
	info := entry.Info
	out := opts.out()

	if opts.UserFacing {
		fmt.Fprintf(out, "Updating %s (%s)\n", info, progress.Bytes(entry.Size))
	} else {
		s.logger.Info("updating sdk", "sdk", info.ID(), "size", entry.Size, "etag", entry.ETag)
	}

	rc, err := s.catalog.Open(ctx, entry)
	if err != nil {
		return fmt.Errorf("download %s: %w", info, err)
	}
	defer rc.Close()

	var progressOut io.Writer
	if opts.UserFacing {
		progressOut = out
	}
	pr := progress.NewReader(rc, entry.Size, progressOut)

	dst := store.DatabasePath(s.path, info)
	tmp := dst + store.DownloadExt
	err = writeDatabase(tmp, pr, info)
	pr.Finish()
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("download %s: %w", info, err)
	}
	if err := atomic.ReplaceFile(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install %s: %w", info, err)
	}

	s.logger.Debug("updated sdk", "sdk", info.ID(), "transferred", pr.N(), "duration", time.Since(started))
	return nil
}

func writeDatabase(path string, r io.Reader, want SDKInfo) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := compression.Decompress(f, r); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}

	db, err := memdb.Open(path)
	if err != nil {
		return err
	}
	got := db.Info()
	if err := db.Close(); err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: database is %s", memdb.ErrBadHeader, got)
	}
	return nil
}

func (s *Stash) removeSDK(info SDKInfo, opts SyncOptions) error {
	if opts.UserFacing {
		fmt.Fprintf(opts.out(), "Deleting %s\n", info)
	} else {
		s.logger.Info("deleting sdk", "sdk", info.ID())
	}

	err := os.Remove(store.DatabasePath(s.path, info))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", info, err)
	}
	return nil
}
