package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vericlock-systems/vericlock/internal/models"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeExists   = errors.New("employee already exists")
	ErrSessionNotFound  = errors.New("session not found")
	// ErrOpenSessionExists is returned by CreateSession when the employee
	// already has an open session. Backed by a partial unique index in
	// postgres, so a concurrent double check-in cannot slip through.
	ErrOpenSessionExists = errors.New("open session already exists")
)

// Repository is the persistence boundary for employees and attendance
// sessions. The store is the single source of truth: callers re-read before
// every mutation and hold no state between requests.
type Repository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	CountEmployees(ctx context.Context) (int, error)

	CreateSession(ctx context.Context, session *models.Session) error
	// GetOpenSession returns the employee's open session, most recent first
	// if the invariant was ever violated, or ErrSessionNotFound.
	GetOpenSession(ctx context.Context, employeeID string) (*models.Session, error)
	// CloseSession closes the session by id. Closing an already-closed or
	// missing session returns ErrSessionNotFound.
	CloseSession(ctx context.Context, id string, closedAt time.Time) (*models.Session, error)
	ListOpenSessionsOpenedBetween(ctx context.Context, from, to time.Time) ([]*models.Session, error)
	// ListSessionsBetween returns sessions opened in [from, to). An empty
	// employeeID means all employees.
	ListSessionsBetween(ctx context.Context, employeeID string, from, to time.Time) ([]*models.Session, error)

	Close()
}
