// Package scheduler periodically reloads the zone datasets.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// reloadTimeout bounds one scheduled reload.
const reloadTimeout = 30 * time.Second

// Reloader reloads the served zone datasets.
type Reloader interface {
	ReloadZones(ctx context.Context, reason string) error
}

// Scheduler runs Reloader on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reloader  Reloader
	interval  time.Duration
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(interval time.Duration, reloader Reloader) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reloader:  reloader,
		interval:  interval,
	}
}

// Start schedules the reload job. The first run happens one interval after
// Start, since datasets are loaded at startup.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		slog.Info("scheduler: periodic dataset reload disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()

		if err := s.reloader.ReloadZones(ctx, "scheduled"); err != nil {
			slog.Error("scheduler: dataset reload failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	slog.Info("scheduler: periodic dataset reload enabled", "interval", s.interval)
	return nil
}

// Stop cancels future reloads.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
