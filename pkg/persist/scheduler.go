package persist

import (
	"github.com/robfig/cron/v3"

	"github.com/clubworks/hookconf/pkg/log"
)

// Scheduler runs periodic snapshot backups of a configuration file on a
// cron schedule. It backs up the file as-is and relies on the store's
// retention pruning to bound disk usage.
type Scheduler struct {
	store  *Store
	cron   *cron.Cron
	logger log.Logger
}

// NewScheduler creates a backup scheduler around a store.
func NewScheduler(store *Store, logger log.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		cron:   cron.New(),
		logger: logger.WithComponent("backup-scheduler"),
	}
}

// Add registers a cron schedule for the given configuration file.
func (s *Scheduler) Add(spec, path string) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		if _, err := s.store.CreateBackup(path, "scheduled"); err != nil {
			s.logger.Error("scheduled backup failed",
				log.Str("path", path), log.Err(err))
			return
		}
		if s.store.opts.MaxBackups > 0 {
			if err := s.store.pruneBackups(path); err != nil {
				s.logger.Warn("scheduled prune failed",
					log.Str("path", path), log.Err(err))
			}
		}
	})
}

// Start begins executing schedules in their own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
