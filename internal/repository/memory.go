package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vericlock-systems/vericlock/internal/models"
)

// InMemoryRepository backs development mode and unit tests. It enforces the
// same single-open-session rule the postgres partial unique index does.
type InMemoryRepository struct {
	mu              sync.RWMutex
	employees       map[string]*models.Employee
	employeesByCode map[string]*models.Employee
	sessions        map[string]*models.Session
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		employees:       make(map[string]*models.Employee),
		employeesByCode: make(map[string]*models.Employee),
		sessions:        make(map[string]*models.Session),
	}
}

func (r *InMemoryRepository) Close() {}

func (r *InMemoryRepository) CreateEmployee(_ context.Context, employee *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.employeesByCode[employee.EmployeeCode]; exists {
		return ErrEmployeeExists
	}
	if _, exists := r.employees[employee.ID]; exists {
		return ErrEmployeeExists
	}

	clone := *employee
	r.employees[employee.ID] = &clone
	r.employeesByCode[employee.EmployeeCode] = &clone
	return nil
}

func (r *InMemoryRepository) GetEmployee(_ context.Context, id string) (*models.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, exists := r.employees[id]
	if !exists {
		return nil, ErrEmployeeNotFound
	}
	clone := *employee
	return &clone, nil
}

func (r *InMemoryRepository) GetEmployeeByCode(_ context.Context, code string) (*models.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, exists := r.employeesByCode[code]
	if !exists {
		return nil, ErrEmployeeNotFound
	}
	clone := *employee
	return &clone, nil
}

func (r *InMemoryRepository) DeleteEmployee(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee, exists := r.employees[id]
	if !exists {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	delete(r.employeesByCode, employee.EmployeeCode)
	return nil
}

func (r *InMemoryRepository) CountEmployees(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.employees), nil
}

func (r *InMemoryRepository) CreateSession(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.EmployeeID == session.EmployeeID && existing.ClosedAt == nil {
			return ErrOpenSessionExists
		}
	}

	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *InMemoryRepository) GetOpenSession(_ context.Context, employeeID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Session
	for _, session := range r.sessions {
		if session.EmployeeID != employeeID || session.ClosedAt != nil {
			continue
		}
		if latest == nil || session.OpenedAt.After(latest.OpenedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, ErrSessionNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *InMemoryRepository) CloseSession(_ context.Context, id string, closedAt time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists || session.ClosedAt != nil {
		return nil, ErrSessionNotFound
	}

	at := closedAt
	session.ClosedAt = &at
	clone := *session
	return &clone, nil
}

func (r *InMemoryRepository) ListOpenSessionsOpenedBetween(_ context.Context, from, to time.Time) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*models.Session
	for _, session := range r.sessions {
		if session.ClosedAt != nil {
			continue
		}
		if session.OpenedAt.Before(from) || !session.OpenedAt.Before(to) {
			continue
		}
		clone := *session
		sessions = append(sessions, &clone)
	}
	sortByOpenedAt(sessions)
	return sessions, nil
}

func (r *InMemoryRepository) ListSessionsBetween(_ context.Context, employeeID string, from, to time.Time) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*models.Session
	for _, session := range r.sessions {
		if employeeID != "" && session.EmployeeID != employeeID {
			continue
		}
		if session.OpenedAt.Before(from) || !session.OpenedAt.Before(to) {
			continue
		}
		clone := *session
		sessions = append(sessions, &clone)
	}
	sortByOpenedAt(sessions)
	return sessions, nil
}

func sortByOpenedAt(sessions []*models.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].OpenedAt.Before(sessions[j].OpenedAt)
	})
}
