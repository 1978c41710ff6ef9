// Package scheduler reconciles the live leaderboard with the score
// store on a fixed interval, so ranker drift (missed submits, redis
// restarts) heals itself without operator action.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/numberhop/numberhop/internal/logging"
	"github.com/numberhop/numberhop/pkg/ports"
)

const (
	reconcileTimeout = 30 * time.Second

	// The lock must outlive a full rebuild but free itself well before
	// the next cycle if the holder crashes.
	reconcileLockTTL = time.Minute

	// How long a cycle waits for the lock before conceding it.
	reconcileLockWait = 2 * time.Second
)

// Scheduler manages the recurring reconciliation job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	scores    ports.ScoreStore
	ranker    ports.Ranker
	locker    ports.Locker
	interval  time.Duration
	logger    *slog.Logger
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithLogger configures a logger for job outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLocker elects one reconciler per cycle among instances sharing
// a board. Without it every instance rebuilds, which is harmless but
// wasteful.
func WithLocker(locker ports.Locker) Option {
	return func(s *Scheduler) {
		s.locker = locker
	}
}

// New creates a scheduler that rebuilds ranker from scores every interval.
func New(scores ports.ScoreStore, ranker ports.Ranker, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		scores:    scores,
		ranker:    ranker,
		interval:  interval,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins running the reconciliation job in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return fmt.Errorf("schedule reconciliation: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the background job and waits for a running one.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Reconcile replaces the ranker's board with the stored totals. The
// serve path also calls it once on startup so the board is warm before
// the first request.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	entries, err := s.scores.TopTotals(ctx, 0)
	if err != nil {
		return fmt.Errorf("load totals: %w", err)
	}
	if err := s.ranker.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuild board: %w", err)
	}
	s.logger.Debug("leaderboard reconciled", "players", len(entries))
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	if s.locker != nil {
		lockCtx, cancelLock := context.WithTimeout(ctx, reconcileLockWait)
		unlock, err := s.locker.Lock(lockCtx, "reconcile", reconcileLockTTL)
		cancelLock()
		if err != nil {
			s.logger.Debug("reconcile skipped, another instance holds the lock", "err", err)
			return
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("failed to release reconcile lock", "err", err)
			}
		}()
	}

	if err := s.Reconcile(ctx); err != nil {
		s.logger.Warn("leaderboard reconciliation failed", "err", err)
	}
}
