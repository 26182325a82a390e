package workers

import (
	"context"
	"eum/logger"
	"sync"
	"time"
)

type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// PurgeLocalStore deletes local storage entries untouched for retention, the
// same idle expiry the redis backend gets from key TTLs.
func PurgeLocalStore(ctx context.Context, wg *sync.WaitGroup, p Purger, retention, every time.Duration) {
	if retention <= 0 {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			n, err := p.Purge(ctx, time.Now().Add(-retention))
			if err != nil && ctx.Err() == nil {
				logger.ErrorWithStack(err)
			} else if n > 0 {
				logger.Infof("workers:PurgeLocalStore: removed %d stale entries", n)
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}
