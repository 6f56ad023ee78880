package correlation

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"enrich-service/internal/common/logging"
)

// Sweeper periodically removes unclaimed callback payloads from a Store
// to bound memory growth. Late callbacks for subjects whose waiters gave
// up long ago would otherwise accumulate forever.
type Sweeper struct {
	store    *Store
	maxAge   time.Duration
	interval time.Duration
	cron     *cron.Cron
}

// NewSweeper creates a sweeper that removes payloads older than maxAge
// every interval. Call Start to begin sweeping.
func NewSweeper(store *Store, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start schedules the periodic sweep.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		removed := s.store.Sweep(s.maxAge)
		if removed > 0 {
			logging.Info("Swept unclaimed callback payloads",
				logging.Int("removed", removed),
				logging.Int("remaining", s.store.Size()),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule payload sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the periodic sweep. Does not wait for a running sweep;
// Sweep itself is mutex-guarded and quick.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}
