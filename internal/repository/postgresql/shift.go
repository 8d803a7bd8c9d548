package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/payroll-core-go/internal/domain/shift"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) *shiftRepository {
	return &shiftRepository{db: db}
}

// GetActiveAssignment implements shift.AssignmentRepository. The scope
// precedence (employee over department over position) is encoded in the
// ORDER BY.
func (r *shiftRepository) GetActiveAssignment(ctx context.Context, employeeID string, day time.Time) (shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sa.id, sa.scope, sa.scope_id, sa.shift_id, sa.start_date, sa.end_date
		FROM shift_assignments sa
		JOIN employees e ON e.id = $1
		WHERE sa.start_date <= $2
		  AND (sa.end_date IS NULL OR sa.end_date >= $2)
		  AND (
			(sa.scope = 'employee' AND sa.scope_id = e.id) OR
			(sa.scope = 'department' AND sa.scope_id = e.department_id) OR
			(sa.scope = 'position' AND sa.scope_id = e.position_id)
		  )
		ORDER BY CASE sa.scope
			WHEN 'employee' THEN 0
			WHEN 'department' THEN 1
			ELSE 2
		END
		LIMIT 1
	`

	var a shift.Assignment
	err := q.QueryRow(ctx, query, employeeID, day).Scan(
		&a.ID, &a.Scope, &a.ScopeID, &a.ShiftID, &a.StartDate, &a.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Assignment{}, shift.ErrShiftNotFound
		}
		return shift.Assignment{}, fmt.Errorf("failed to get active shift assignment: %w", err)
	}
	return a, nil
}

// GetDefinition implements shift.AssignmentRepository.
func (r *shiftRepository) GetDefinition(ctx context.Context, shiftID string) (shift.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_time, end_time, grace_in_minutes, grace_out_minutes,
		       requires_approval_for_overtime, punch_policy
		FROM shift_definitions
		WHERE id = $1
	`

	var d shift.Definition
	err := q.QueryRow(ctx, query, shiftID).Scan(
		&d.ID, &d.Name, &d.StartTime, &d.EndTime,
		&d.GraceInMinutes, &d.GraceOutMinutes,
		&d.RequiresApprovalForOvertime, &d.PunchPolicy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Definition{}, shift.ErrShiftNotFound
		}
		return shift.Definition{}, fmt.Errorf("failed to get shift definition: %w", err)
	}
	return d, nil
}

// ListCovering implements shift.HolidayRepository.
func (r *shiftRepository) ListCovering(ctx context.Context, day time.Time) ([]shift.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, type, start_date, end_date, active
		FROM holidays
		WHERE active
		  AND start_date <= $1
		  AND (end_date IS NULL OR end_date >= $1)
	`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []shift.Holiday
	for rows.Next() {
		var h shift.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Type, &h.StartDate, &h.EndDate, &h.Active); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
