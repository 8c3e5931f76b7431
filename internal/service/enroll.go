package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vericlock-systems/vericlock/internal/biometric"
	"github.com/vericlock-systems/vericlock/internal/directory"
	"github.com/vericlock-systems/vericlock/internal/metrics"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/repository"
)

// Enroll provisions a new employee across the credentials service and our
// store. The two systems share no transaction, so any failure after the
// account exists deletes that account again before the error is surfaced.
// The only gap is a process crash between account creation and compensation;
// that orphan window is accepted, not eliminated.
//
// image may be nil: the employee is then provisioned unregistered and can be
// enrolled biometrically later.
func (s *AttendanceService) Enroll(ctx context.Context, req *models.EnrollRequest, image []byte) (*models.Employee, error) {
	if req.EmployeeCode == "" || req.FirstName == "" {
		metrics.EnrollmentsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: employee code and first name are required", ErrInvalidRequest)
	}

	// Best-effort pre-check. The store's unique constraint is the real
	// guard; this only avoids creating a doomed account in the common case.
	if _, err := s.repo.GetEmployeeByCode(ctx, req.EmployeeCode); err == nil {
		metrics.EnrollmentsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrEmployeeExists
	} else if !errors.Is(err, repository.ErrEmployeeNotFound) {
		metrics.EnrollmentsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("check employee code: %w", err)
	}

	account, err := s.directory.CreateAccount(ctx, &directory.CreateAccountRequest{
		EmployeeCode: req.EmployeeCode,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
	})
	if err != nil {
		if errors.Is(err, directory.ErrAccountExists) {
			metrics.EnrollmentsTotal.WithLabelValues("rejected").Inc()
			return nil, ErrEmployeeExists
		}
		metrics.EnrollmentsTotal.WithLabelValues("error").Inc()
		// Nothing was created; no compensation needed.
		return nil, fmt.Errorf("create directory account: %w", err)
	}

	var embedding []float32
	if len(image) > 0 {
		embedding, err = s.extractor.Extract(ctx, image)
		if err != nil {
			s.compensate(ctx, account.ID)
			metrics.EnrollmentsTotal.WithLabelValues("rejected").Inc()
			switch {
			case errors.Is(err, biometric.ErrNoFace):
				return nil, ErrNoFaceDetected
			case errors.Is(err, biometric.ErrUnavailable):
				return nil, ErrExtractorUnavailable
			default:
				return nil, fmt.Errorf("extract enrollment embedding: %w", err)
			}
		}
	}

	employee := &models.Employee{
		ID:           uuid.New().String(),
		AccountID:    account.ID,
		EmployeeCode: req.EmployeeCode,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Registered:   len(embedding) > 0,
		Embedding:    embedding,
		CreatedAt:    s.now(),
	}

	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		s.compensate(ctx, account.ID)
		if errors.Is(err, repository.ErrEmployeeExists) {
			// Lost the uniqueness race despite the pre-check.
			metrics.EnrollmentsTotal.WithLabelValues("rejected").Inc()
			return nil, ErrEmployeeExists
		}
		metrics.EnrollmentsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create employee: %w", err)
	}

	metrics.EnrollmentsTotal.WithLabelValues("accepted").Inc()
	s.logger.Info("employee enrolled",
		"employee_id", employee.ID,
		"employee_code", employee.EmployeeCode,
		"registered", employee.Registered)
	return employee, nil
}

// compensate deletes the directory account created earlier in the saga. A
// compensation failure is logged but never masks the error that triggered it.
func (s *AttendanceService) compensate(ctx context.Context, accountID string) {
	metrics.EnrollmentCompensations.Inc()
	if err := s.directory.DeleteAccount(ctx, accountID); err != nil {
		s.logger.Error("enrollment compensation failed, orphaned directory account",
			"account_id", accountID,
			"error", err)
	}
}

// RemoveEmployee is the administrative deletion path: it removes the store
// row and then best-effort deletes the directory account.
func (s *AttendanceService) RemoveEmployee(ctx context.Context, employeeID string) error {
	employee, err := s.repo.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("fetch employee: %w", err)
	}

	if err := s.repo.DeleteEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("delete employee: %w", err)
	}

	if err := s.directory.DeleteAccount(ctx, employee.AccountID); err != nil {
		s.logger.Warn("directory account cleanup failed",
			"account_id", employee.AccountID,
			"error", err)
	}
	return nil
}
