package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vericlock-systems/vericlock/internal/metrics"
)

// ReconcileDay closes every session still open that was opened on the given
// local calendar day. It is idempotent: the open-session filter excludes
// rows a previous run already closed. Per-row failures are logged and
// skipped; only a failure to list the residual set aborts the sweep.
func (s *AttendanceService) ReconcileDay(ctx context.Context, day time.Time) (int, error) {
	local := day.In(s.cfg.Location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.cfg.Location)
	dayEnd := dayStart.AddDate(0, 0, 1)
	runAt := s.now()

	open, err := s.repo.ListOpenSessionsOpenedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		metrics.ReconciliationRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("list open sessions: %w", err)
	}

	closed := 0
	for _, session := range open {
		closeAt := runAt
		if s.cfg.CloseMode == CloseAtFacilityClose {
			closeAt = s.cfg.FacilityClose.At(session.OpenedAt.In(s.cfg.Location))
		}
		if closeAt.Before(session.OpenedAt) {
			// A session opened after the facility close instant still has
			// to close at or after it opened.
			closeAt = session.OpenedAt
		}

		if _, err := s.repo.CloseSession(ctx, session.ID, closeAt); err != nil {
			// Includes rows a concurrent check-out closed in the meantime.
			s.logger.Warn("reconciliation skipped session",
				"session_id", session.ID,
				"employee_id", session.EmployeeID,
				"error", err)
			continue
		}
		closed++
		metrics.SessionsReconciled.Inc()
	}

	metrics.ReconciliationRuns.WithLabelValues("ok").Inc()
	s.logger.Info("reconciliation sweep finished",
		"day", dayStart.Format("2006-01-02"),
		"residual", len(open),
		"closed", closed)
	return closed, nil
}
