package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vericlock-systems/vericlock/internal/metrics"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/notification"
	"github.com/vericlock-systems/vericlock/internal/repository"
)

// CheckIn verifies the face and opens a new session. Punctuality is fixed at
// open time from the same instant that is persisted, and never recomputed.
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string, image []byte) (*models.Session, error) {
	v, err := s.verify(ctx, employeeID, image, actionCheckIn)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues(string(actionCheckIn), "rejected").Inc()
		return nil, err
	}

	local := v.at.In(s.cfg.Location)
	session := &models.Session{
		ID:          uuid.New().String(),
		EmployeeID:  v.employee.ID,
		OpenedAt:    v.at,
		Punctuality: models.Classify(local, s.cfg.WorkStart, s.cfg.LateCutoff),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, repository.ErrOpenSessionExists) {
			metrics.VerificationsTotal.WithLabelValues(string(actionCheckIn), "rejected").Inc()
			return nil, ErrAlreadyCheckedIn
		}
		metrics.VerificationsTotal.WithLabelValues(string(actionCheckIn), "error").Inc()
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.VerificationsTotal.WithLabelValues(string(actionCheckIn), "accepted").Inc()
	s.logger.Info("check-in accepted",
		"employee_id", v.employee.ID,
		"session_id", session.ID,
		"punctuality", string(session.Punctuality))

	s.notify(notification.Event{
		Kind:         notification.EventCheckIn,
		EmployeeID:   v.employee.ID,
		EmployeeName: v.employee.FullName(),
		Timestamp:    v.at,
		Punctuality:  session.Punctuality,
	})
	return session, nil
}

// CheckOut verifies the face and closes the open session found during
// verification, by id: the update cannot land on a different row than the
// one the decision was made about.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string, image []byte) (*models.Session, error) {
	v, err := s.verify(ctx, employeeID, image, actionCheckOut)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues(string(actionCheckOut), "rejected").Inc()
		return nil, err
	}

	closedAt := v.at
	if closedAt.Before(v.openSession.OpenedAt) {
		// Clock skew between nodes must not produce a session that closes
		// before it opened.
		closedAt = v.openSession.OpenedAt
	}

	session, err := s.repo.CloseSession(ctx, v.openSession.ID, closedAt)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// A racing check-out or reconciliation sweep closed it first.
			metrics.VerificationsTotal.WithLabelValues(string(actionCheckOut), "rejected").Inc()
			return nil, ErrNoOpenSession
		}
		metrics.VerificationsTotal.WithLabelValues(string(actionCheckOut), "error").Inc()
		return nil, fmt.Errorf("close session: %w", err)
	}

	metrics.VerificationsTotal.WithLabelValues(string(actionCheckOut), "accepted").Inc()
	s.logger.Info("check-out accepted",
		"employee_id", v.employee.ID,
		"session_id", session.ID)

	s.notify(notification.Event{
		Kind:         notification.EventCheckOut,
		EmployeeID:   v.employee.ID,
		EmployeeName: v.employee.FullName(),
		Timestamp:    closedAt,
	})
	return session, nil
}

func (s *AttendanceService) notify(event notification.Event) {
	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}
