package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Scheduler wraps gocron for the optional periodic rebuild. It exists for
// deployments where the filesystem watcher cannot see every change, such as
// network mounts.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *slog.Logger
}

// NewScheduler creates a scheduler that calls invalidate every interval.
func NewScheduler(interval time.Duration, invalidate func(), log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("rebuild interval must be positive, got %s", interval)
	}
	if log == nil {
		log = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			log.Debug("periodic rebuild triggered", logfields.DurationMS(interval))
			invalidate()
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}

	return &Scheduler{scheduler: s, log: log}, nil
}

// Start begins firing the periodic job.
func (s *Scheduler) Start() {
	s.log.Info("starting rebuild scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.log.Info("stopping rebuild scheduler")
	return s.scheduler.Shutdown()
}
