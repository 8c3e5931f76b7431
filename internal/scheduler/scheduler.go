// Package scheduler runs the daily reconciliation sweep that closes
// sessions abandoned without a check-out.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Reconciler is the slice of the attendance service the scheduler drives.
type Reconciler interface {
	ReconcileDay(ctx context.Context, day time.Time) (int, error)
}

// Config configures the reconciliation scheduler.
type Config struct {
	// Hour is the local hour of day (0-23) the sweep runs at.
	Hour int
	// Location is the facility timezone the hour is interpreted in.
	Location *time.Location
}

// Scheduler triggers reconciliation once per day at the configured hour.
type Scheduler struct {
	mu       sync.Mutex
	service  Reconciler
	logger   *slog.Logger
	cfg      Config
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	// now is swappable in tests.
	now func() time.Time
}

func New(service Reconciler, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Scheduler{
		service: service,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Start begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("reconciliation scheduler starting", "hour", s.cfg.Hour)

	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// Stop gracefully stops the scheduling loop.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler not running")
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("reconciliation scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(s.untilNextRun())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweep(ctx)
		}
	}
}

// untilNextRun returns the duration until the next configured run hour.
func (s *Scheduler) untilNextRun() time.Duration {
	now := s.now().In(s.cfg.Location)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.Hour, 0, 0, 0, s.cfg.Location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Scheduler) sweep(ctx context.Context) {
	day := s.now().In(s.cfg.Location)
	closed, err := s.service.ReconcileDay(ctx, day)
	if err != nil {
		s.logger.Error("scheduled reconciliation failed",
			"day", day.Format("2006-01-02"),
			"error", err)
		return
	}
	s.logger.Info("scheduled reconciliation finished",
		"day", day.Format("2006-01-02"),
		"closed", closed)
}
