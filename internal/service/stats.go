package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/repository"
	"github.com/vericlock-systems/vericlock/internal/stats"
)

// EmployeeStats summarizes one employee's month-to-date attendance.
func (s *AttendanceService) EmployeeStats(ctx context.Context, employeeID string) (*models.StatsResponse, error) {
	if _, err := s.repo.GetEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("fetch employee: %w", err)
	}

	now := s.now().In(s.cfg.Location)
	sessions, err := s.repo.ListSessionsBetween(ctx, employeeID, monthStart(now), upTo(now))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summary := stats.MonthToDate(sessions, now, s.calendar, 1)
	return &models.StatsResponse{
		EmployeeID:  employeeID,
		WorkingDays: summary.WorkingDays,
		PresentDays: summary.PresentDays,
		AbsentDays:  summary.Absent,
	}, nil
}

// OrgStats summarizes month-to-date attendance across all employees.
func (s *AttendanceService) OrgStats(ctx context.Context) (*models.StatsResponse, error) {
	now := s.now().In(s.cfg.Location)

	count, err := s.repo.CountEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}
	sessions, err := s.repo.ListSessionsBetween(ctx, "", monthStart(now), upTo(now))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summary := stats.MonthToDate(sessions, now, s.calendar, count)
	return &models.StatsResponse{
		WorkingDays: summary.WorkingDays,
		PresentDays: summary.PresentDays,
		AbsentDays:  summary.Absent,
	}, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// upTo nudges the exclusive repository bound so the month-to-date window
// includes a session opened at the instant of the call.
func upTo(t time.Time) time.Time {
	return t.Add(time.Nanosecond)
}
