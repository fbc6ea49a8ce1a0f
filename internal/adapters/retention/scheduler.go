package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/attrition/pkg/logger"
)

// Scheduler runs a Pruner on its cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	stopCh  chan struct{}
	log     logger.Logger
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		log:    pruner.log.Named("retention"),
	}
}

// Start schedules pruning. An empty schedule or a zero retention period
// leaves the scheduler idle. The scheduler stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.pruner.Config()
	if cfg.Schedule == "" || cfg.RetentionDays <= 0 {
		s.log.Info(ctx, "retention disabled, scheduler idle",
			logger.String("schedule", cfg.Schedule),
			logger.Int("retention_days", cfg.RetentionDays))
		return nil
	}
	if s.running {
		return fmt.Errorf("retention scheduler already running")
	}

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule, err)
	}
	// A fresh cron per run so a restart never carries the previous entry.
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule pruning: %w", err)
	}

	c.Start()
	s.cron = c
	s.stopCh = make(chan struct{})
	s.running = true
	s.log.Info(ctx, "retention scheduler started",
		logger.String("schedule", cfg.Schedule),
		logger.Int("retention_days", cfg.RetentionDays))

	go func(stopCh <-chan struct{}) {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
		}
	}(s.stopCh)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		s.log.Error(ctx, "scheduled pruning failed", logger.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info(ctx, "scheduled pruning completed", logger.Int64("deleted", deleted))
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	done := s.cron.Stop()
	<-done.Done()
	s.cron = nil
	s.running = false
	s.log.Info(context.Background(), "retention scheduler stopped")
}

// IsRunning reports whether pruning is scheduled.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}
