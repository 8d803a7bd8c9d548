package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/payroll-core-go/internal/domain/employee"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, full_name, email, entity_id, department_id, position_id, line_manager_id,
	grade_id, bank_name, bank_account, status, joined_at, terminated_at
`

// GetByID implements employee.Repository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	var emp employee.Employee
	err := q.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE id = $1
	`, id).Scan(
		&emp.ID, &emp.FullName, &emp.Email, &emp.EntityID, &emp.DepartmentID, &emp.PositionID, &emp.LineManagerID,
		&emp.GradeID, &emp.BankName, &emp.BankAccount, &emp.Status, &emp.JoinedAt, &emp.TerminatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListActive implements employee.Repository. An empty entityID returns
// active employees across all entities.
func (r *employeeRepository) ListActive(ctx context.Context, entityID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE status = 'ACTIVE'
		  AND ($1 = '' OR entity_id = $1)
		ORDER BY id
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	return collectEmployees(rows)
}

// ListByIDs implements employee.Repository.
func (r *employeeRepository) ListByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by ids: %w", err)
	}
	defer rows.Close()

	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		err := rows.Scan(
			&emp.ID, &emp.FullName, &emp.Email, &emp.EntityID, &emp.DepartmentID, &emp.PositionID, &emp.LineManagerID,
			&emp.GradeID, &emp.BankName, &emp.BankAccount, &emp.Status, &emp.JoinedAt, &emp.TerminatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}
