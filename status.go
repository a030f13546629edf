package symstash

import (
	"context"
	"errors"
)

// SyncStatus compares the local state with the catalog.
type SyncStatus struct {
	// RemoteTotal counts published databases that are not ignored.
	RemoteTotal int
	// Missing counts databases that are published but not held locally.
	Missing int
	// Different counts databases held locally in another version.
	Different int
	// Revision is the local revision.
	Revision uint64
	// Offline is set when the catalog could not be reached.
	Offline bool
}

// Lag returns how many databases a sync would download.
func (s SyncStatus) Lag() int { return s.Missing + s.Different }

// Healthy reports whether the local cache is close enough to the catalog to
// serve from: at least 90% current, or nothing published at all. An offline
// stash is healthy so lookups keep working from what is on disk.
func (s SyncStatus) Healthy() bool {
	if s.Offline || s.RemoteTotal == 0 {
		return true
	}
	return float64(s.Lag())/float64(s.RemoteTotal) < 0.10
}

// SyncStatus reads the local state from disk and compares it with the catalog
// without changing anything. An unreachable catalog yields an Offline status
// rather than an error.
func (s *Stash) SyncStatus(ctx context.Context) (SyncStatus, error) {
	local, err := s.state.Read()
	if err != nil {
		return SyncStatus{}, err
	}
	status := SyncStatus{Revision: local.Rev()}

	published, err := s.catalog.List(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			s.logger.Warn("catalog unavailable", "error", err)
			status.Offline = true
			return status, nil
		}
		return SyncStatus{}, err
	}

	for _, entry := range published {
		if s.IsIgnored(entry.Info) {
			continue
		}
		status.RemoteTotal++
		current, ok := local.Get(entry.Info)
		switch {
		case !ok:
			status.Missing++
		case !current.Equal(entry):
			status.Different++
		}
	}
	return status, nil
}
