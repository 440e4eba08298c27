package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Prunable is a journal that supports retention pruning.
type Prunable interface {
	Prune(ctx context.Context, olderThan time.Time) (int, error)
}

// Pruner deletes journal entries older than the retention period.
type Pruner struct {
	journal   Prunable
	retention time.Duration
	logger    *slog.Logger
}

// NewPruner creates a Pruner removing entries older than retention.
func NewPruner(journal Prunable, retention time.Duration) *Pruner {
	return &Pruner{
		journal:   journal,
		retention: retention,
		logger:    slog.Default().With("component", "journal.pruner"),
	}
}

// Prune executes one pruning cycle.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-p.retention)
	return p.journal.Prune(ctx, cutoff)
}

// Scheduler runs a Pruner on a cron schedule.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a retention scheduler. An empty schedule creates a
// scheduler whose Start is a no-op.
func NewScheduler(pruner *Pruner, schedule string) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "journal.scheduler"),
	}
}

// Start begins scheduled pruning. It returns an error for an invalid cron
// expression. The scheduler stops itself when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("journal retention scheduler started",
		"schedule", s.schedule,
		"retention", s.pruner.retention.String(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled pruning. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("journal retention scheduler stopped")
}

func (s *Scheduler) runPruning(ctx context.Context) {
	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled journal pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("scheduled journal pruning completed", "deleted_count", deleted)
	}
}
