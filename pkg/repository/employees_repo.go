package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

// EmployeesRepository handles employee persistence. Every query is scoped by
// organization_id.
type EmployeesRepository struct {
	db *sql.DB
}

// NewEmployeesRepository creates a new employees repository.
func NewEmployeesRepository(db *sql.DB) *EmployeesRepository {
	return &EmployeesRepository{db: db}
}

const employeeColumns = `id, organization_id, name, role, image_urls, created_at, updated_at`

// ListEmployees returns the organization's employees oldest first.
func (r *EmployeesRepository) ListEmployees(ctx context.Context, orgID uuid.UUID) ([]domain.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE organization_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

// GetEmployee retrieves an employee owned by orgID.
func (r *EmployeesRepository) GetEmployee(ctx context.Context, orgID, id uuid.UUID) (*domain.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND organization_id = $2
	`
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEmployee inserts an employee.
func (r *EmployeesRepository) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (id, organization_id, name, role, image_urls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.OrganizationID, e.Name, e.Role, pq.Array(e.ImageURLs), e.CreatedAt,
	)
	return err
}

// UpdateEmployee applies the non-empty fields of upd to an employee owned by orgID.
func (r *EmployeesRepository) UpdateEmployee(ctx context.Context, orgID, id uuid.UUID, upd domain.EmployeeUpdate, updatedAt time.Time) error {
	query := `
		UPDATE employees
		SET name = COALESCE(NULLIF($3, ''), name),
		    role = COALESCE(NULLIF($4, ''), role),
		    image_urls = COALESCE($5, image_urls),
		    updated_at = $6
		WHERE id = $1 AND organization_id = $2
	`
	var images any
	if len(upd.ImageURLs) > 0 {
		images = pq.Array(upd.ImageURLs)
	}

	result, err := r.db.ExecContext(ctx, query,
		id, orgID, nullableString(upd.Name), nullableString(upd.Role), images, updatedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrEmployeeNotFound)
}

// DeleteEmployee removes an employee owned by orgID.
func (r *EmployeesRepository) DeleteEmployee(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM employees WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return err
	}
	return expectOneRow(result, domain.ErrEmployeeNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e         domain.Employee
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&e.ID, &e.OrganizationID, &e.Name, &e.Role, pq.Array(&e.ImageURLs),
		&e.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		e.UpdatedAt = &t
	}
	return &e, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
