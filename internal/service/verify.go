package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vericlock-systems/vericlock/internal/biometric"
	"github.com/vericlock-systems/vericlock/internal/metrics"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/repository"
)

type action string

const (
	actionCheckIn  action = "check_in"
	actionCheckOut action = "check_out"
)

// verification is the joined outcome of the concurrent lookups, evaluated
// only after every launched task has finished.
type verification struct {
	employee    *models.Employee
	captured    []float32
	openSession *models.Session
	// at is captured once per request and reused for every decision and
	// every persisted timestamp in the same call.
	at time.Time
}

// verify authenticates a presence event. It is read-only: no store mutation
// happens here, so an abandoned or retried verification is always safe.
func (s *AttendanceService) verify(ctx context.Context, employeeID string, image []byte, act action) (*verification, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrInvalidRequest)
	}
	if len(image) == 0 {
		return nil, ErrMissingImage
	}

	allowed, err := s.limiter.Allow(ctx, employeeID)
	if err != nil {
		// A broken limiter must not take attendance down with it.
		s.logger.Warn("attempt limiter unavailable, allowing request", "error", err)
	} else if !allowed {
		return nil, ErrTooManyAttempts
	}

	v := &verification{at: s.now()}

	// The store lookups and the biometric extraction are independent, so
	// they run concurrently and all run to completion: the most specific
	// error can only be chosen once every outcome is known.
	var (
		wg sync.WaitGroup

		employee    *models.Employee
		employeeErr error

		captured   []float32
		extractErr error

		openSession *models.Session
		sessionErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		employee, employeeErr = s.repo.GetEmployee(ctx, employeeID)
	}()
	go func() {
		defer wg.Done()
		captured, extractErr = s.extractor.Extract(ctx, image)
	}()

	if act == actionCheckOut {
		wg.Add(1)
		go func() {
			defer wg.Done()
			openSession, sessionErr = s.repo.GetOpenSession(ctx, employeeID)
		}()
	}

	wg.Wait()

	// Fixed priority order, most specific check first.
	if employeeErr != nil {
		if errors.Is(employeeErr, repository.ErrEmployeeNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("fetch employee: %w", employeeErr)
	}
	if !employee.Registered || len(employee.Embedding) == 0 {
		return nil, ErrNotEnrolled
	}

	if extractErr != nil {
		switch {
		case errors.Is(extractErr, biometric.ErrNoFace):
			return nil, ErrNoFaceDetected
		case errors.Is(extractErr, biometric.ErrUnavailable):
			return nil, ErrExtractorUnavailable
		default:
			return nil, fmt.Errorf("extract embedding: %w", extractErr)
		}
	}

	distance := biometric.Distance(employee.Embedding, captured)
	metrics.BiometricDistance.Observe(distance)
	if distance > s.cfg.MatchThreshold {
		return nil, ErrFaceMismatch
	}

	if act == actionCheckOut {
		if sessionErr != nil {
			if errors.Is(sessionErr, repository.ErrSessionNotFound) {
				return nil, ErrNoOpenSession
			}
			return nil, fmt.Errorf("fetch open session: %w", sessionErr)
		}
		v.openSession = openSession
	}

	v.employee = employee
	v.captured = captured
	return v, nil
}
