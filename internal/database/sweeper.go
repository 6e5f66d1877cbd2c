package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	"github.com/robfig/cron/v3"
)

// SweepResult counts the records removed by one sweep.
type SweepResult struct {
	Events int
	Resets int
}

// Sweeper deletes ended events and expired password resets on a schedule.
type Sweeper struct {
	events domain.EventRepository
	resets domain.PasswordResetRepository
	lock   Locker
	now    func() time.Time
	cron   *cron.Cron
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithLock makes each sweep hold lock, skipping the run when it is taken.
func WithLock(lock Locker) SweeperOption {
	return func(s *Sweeper) { s.lock = lock }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

func NewSweeper(events domain.EventRepository, resets domain.PasswordResetRepository, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{events: events, resets: resets, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep runs one pass. When the lock is held elsewhere it returns a zero
// result and no error.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx)
		if err != nil {
			return res, err
		}
		if !ok {
			slog.DebugContext(ctx, "Sweep skipped, lock held elsewhere", "event", "sweep_skipped")
			return res, nil
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "Failed to release sweep lock", "error", err)
			}
		}()
	}

	now := s.now()
	var err error
	if res.Events, err = s.events.DeleteEnded(ctx, now); err != nil {
		return res, fmt.Errorf("sweep events: %w", err)
	}
	if res.Resets, err = s.resets.DeleteExpired(ctx, now); err != nil {
		return res, fmt.Errorf("sweep password resets: %w", err)
	}
	if res.Events > 0 || res.Resets > 0 {
		slog.InfoContext(ctx, "Swept expired records", "event", "sweep_done", "events", res.Events, "resets", res.Resets)
	}
	return res, nil
}

// Start schedules Sweep using a cron expression such as "@every 1m".
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			slog.ErrorContext(ctx, "Sweep failed", "event", "sweep_failure", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running sweep or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
