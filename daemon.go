package symstash

import (
	"context"
	"errors"
	"time"
)

// DefaultSyncInterval is how often RunSyncLoop syncs when no interval is given.
const DefaultSyncInterval = 5 * time.Minute

// RunSyncLoop syncs immediately and then every interval until ctx is done.
// Failed syncs are logged and retried on the next tick. It returns nil when
// ctx is cancelled.
func (s *Stash) RunSyncLoop(ctx context.Context, interval time.Duration, opts SyncOptions) error {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sync(ctx, opts); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrUnavailable) {
				s.logger.Warn("sync skipped, catalog unavailable", "error", err)
			} else {
				s.logger.Error("sync failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
