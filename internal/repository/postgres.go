package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vericlock-systems/vericlock/internal/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO employees (id, account_id, employee_code, first_name, last_name, registered, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		employee.ID, employee.AccountID, employee.EmployeeCode,
		employee.FirstName, employee.LastName, employee.Registered,
		employee.Embedding, employee.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmployeeExists
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	return r.getEmployee(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error) {
	return r.getEmployee(ctx, "employee_code = $1", code)
}

func (r *PostgresRepository) getEmployee(ctx context.Context, where string, arg any) (*models.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, account_id, employee_code, first_name, last_name, registered, embedding, created_at
		FROM employees
		WHERE ` + where

	var employee models.Employee
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&employee.ID, &employee.AccountID, &employee.EmployeeCode,
		&employee.FirstName, &employee.LastName, &employee.Registered,
		&employee.Embedding, &employee.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &employee, nil
}

func (r *PostgresRepository) DeleteEmployee(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *PostgresRepository) CountEmployees(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO sessions (id, employee_id, opened_at, closed_at, punctuality)
		VALUES ($1, $2, $3, $4, $5)
	`

	var punctuality *string
	if session.Punctuality != "" {
		p := string(session.Punctuality)
		punctuality = &p
	}

	_, err := r.pool.Exec(ctx, query,
		session.ID, session.EmployeeID, session.OpenedAt, session.ClosedAt,
		punctuality,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrOpenSessionExists
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetOpenSession(ctx context.Context, employeeID string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, employee_id, opened_at, closed_at, punctuality
		FROM sessions
		WHERE employee_id = $1 AND closed_at IS NULL
		ORDER BY opened_at DESC
		LIMIT 1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) CloseSession(ctx context.Context, id string, closedAt time.Time) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The closed_at IS NULL guard makes the close idempotent per row: a
	// session already closed by a racing check-out or a reconciliation run
	// is reported as not found, never closed twice.
	query := `
		UPDATE sessions
		SET closed_at = $2
		WHERE id = $1 AND closed_at IS NULL
		RETURNING id, employee_id, opened_at, closed_at, punctuality
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, closedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) ListOpenSessionsOpenedBetween(ctx context.Context, from, to time.Time) ([]*models.Session, error) {
	query := `
		SELECT id, employee_id, opened_at, closed_at, punctuality
		FROM sessions
		WHERE closed_at IS NULL AND opened_at >= $1 AND opened_at < $2
		ORDER BY opened_at
	`
	return r.listSessions(ctx, query, from, to)
}

func (r *PostgresRepository) ListSessionsBetween(ctx context.Context, employeeID string, from, to time.Time) ([]*models.Session, error) {
	if employeeID == "" {
		query := `
			SELECT id, employee_id, opened_at, closed_at, punctuality
			FROM sessions
			WHERE opened_at >= $1 AND opened_at < $2
			ORDER BY opened_at
		`
		return r.listSessions(ctx, query, from, to)
	}

	query := `
		SELECT id, employee_id, opened_at, closed_at, punctuality
		FROM sessions
		WHERE employee_id = $3 AND opened_at >= $1 AND opened_at < $2
		ORDER BY opened_at
	`
	return r.listSessions(ctx, query, from, to, employeeID)
}

func (r *PostgresRepository) listSessions(ctx context.Context, query string, args ...any) ([]*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	var punctuality *string
	err := row.Scan(
		&session.ID, &session.EmployeeID, &session.OpenedAt, &session.ClosedAt,
		&punctuality,
	)
	if err != nil {
		return nil, err
	}
	if punctuality != nil {
		session.Punctuality = models.Punctuality(*punctuality)
	}
	return &session, nil
}
