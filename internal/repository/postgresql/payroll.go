package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

// CreateRun implements payroll.Repository. The run row and its
// per-employee rows are written in one transaction so the run's totals
// always match its rows. The payroll_runs table carries a unique index
// on (period_year, period_month), so a second run for the same period
// fails with ErrRunAlreadyExists.
func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM payroll_runs
				WHERE period_year = $1 AND period_month = $2
			)
		`, run.PeriodYear, run.PeriodMonth).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for existing payroll run: %w", err)
		}
		if exists {
			return payroll.ErrRunAlreadyExists
		}

		exceptionsJSON, err := json.Marshal(run.Exceptions)
		if err != nil {
			return fmt.Errorf("failed to encode exceptions: %w", err)
		}
		warningsJSON, err := json.Marshal(run.Warnings)
		if err != nil {
			return fmt.Errorf("failed to encode warnings: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO payroll_runs (
				id, period_year, period_month, status, generated_by,
				exceptions, warnings, total_net_pay, generated_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			run.ID, run.PeriodYear, run.PeriodMonth, run.Status, run.GeneratedBy,
			exceptionsJSON, warningsJSON, run.TotalNetPay(), run.GeneratedAt, run.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return payroll.ErrRunAlreadyExists
			}
			return fmt.Errorf("failed to insert payroll run: %w", err)
		}

		for _, b := range run.Breakdowns {
			_, err := tx.Exec(ctx, `
				INSERT INTO payroll_details (
					run_id, employee_id, grade_found, base_salary, grade_gross,
					allowances, signing_bonus, termination_benefit, gross_salary,
					tax_amount, insurance_amount, net_salary, penalties, refunds,
					net_pay, missing_hours, missing_hours_amount, worked_minutes,
					days_present, bank_status
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				          $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			`,
				run.ID, b.EmployeeID, b.GradeFound, b.BaseSalary, b.GradeGross,
				b.Allowances, b.SigningBonus, b.Termination, b.GrossSalary,
				b.TaxAmount, b.InsuranceAmount, b.NetSalary, b.Penalties, b.Refunds,
				b.NetPay, b.MissingHours, b.MissingHoursAmount, b.WorkedMinutes,
				b.DaysPresent, b.BankStatus,
			)
			if err != nil {
				return fmt.Errorf("failed to insert payroll detail for employee %s: %w", b.EmployeeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return payroll.Run{}, err
	}
	return run, nil
}

// GetRunByID implements payroll.Repository.
func (r *payrollRepository) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	return r.getRun(ctx, "id = $1", id)
}

// GetRunByPeriod implements payroll.Repository.
func (r *payrollRepository) GetRunByPeriod(ctx context.Context, year, month int) (payroll.Run, error) {
	return r.getRun(ctx, "period_year = $1 AND period_month = $2", year, month)
}

func (r *payrollRepository) getRun(ctx context.Context, where string, args ...any) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	var run payroll.Run
	var exceptionsJSON, warningsJSON []byte

	err := q.QueryRow(ctx, `
		SELECT id, period_year, period_month, status, generated_by,
		       exceptions, warnings, generated_at, updated_at
		FROM payroll_runs
		WHERE `+where,
		args...,
	).Scan(
		&run.ID, &run.PeriodYear, &run.PeriodMonth, &run.Status, &run.GeneratedBy,
		&exceptionsJSON, &warningsJSON, &run.GeneratedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	if err := json.Unmarshal(exceptionsJSON, &run.Exceptions); err != nil {
		return payroll.Run{}, fmt.Errorf("failed to decode exceptions: %w", err)
	}
	if err := json.Unmarshal(warningsJSON, &run.Warnings); err != nil {
		return payroll.Run{}, fmt.Errorf("failed to decode warnings: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT employee_id, grade_found, base_salary, grade_gross,
		       allowances, signing_bonus, termination_benefit, gross_salary,
		       tax_amount, insurance_amount, net_salary, penalties, refunds,
		       net_pay, missing_hours, missing_hours_amount, worked_minutes,
		       days_present, bank_status
		FROM payroll_details
		WHERE run_id = $1
		ORDER BY employee_id
	`, run.ID)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to list payroll details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b payroll.SalaryBreakdown
		err := rows.Scan(
			&b.EmployeeID, &b.GradeFound, &b.BaseSalary, &b.GradeGross,
			&b.Allowances, &b.SigningBonus, &b.Termination, &b.GrossSalary,
			&b.TaxAmount, &b.InsuranceAmount, &b.NetSalary, &b.Penalties, &b.Refunds,
			&b.NetPay, &b.MissingHours, &b.MissingHoursAmount, &b.WorkedMinutes,
			&b.DaysPresent, &b.BankStatus,
		)
		if err != nil {
			return payroll.Run{}, fmt.Errorf("failed to scan payroll detail: %w", err)
		}
		run.Breakdowns = append(run.Breakdowns, b)
	}
	return run, rows.Err()
}

// UpdateRunStatus implements payroll.Repository.
func (r *payrollRepository) UpdateRunStatus(ctx context.Context, id string, status payroll.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `
		UPDATE payroll_runs SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payroll run status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}
	return nil
}

// CreatePenalty implements payroll.Repository.
func (r *payrollRepository) CreatePenalty(ctx context.Context, penalty payroll.Penalty) (payroll.Penalty, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO penalties (
			id, employee_id, kind, amount, reason, period_year, period_month,
			approved, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		penalty.ID, penalty.EmployeeID, penalty.Kind, penalty.Amount, penalty.Reason,
		penalty.PeriodYear, penalty.PeriodMonth, penalty.Approved, penalty.CreatedAt,
	)
	if err != nil {
		return payroll.Penalty{}, fmt.Errorf("failed to create penalty: %w", err)
	}
	return penalty, nil
}

type payrollConfigRepository struct {
	db *database.DB
}

func NewPayrollConfigRepository(db *database.DB) payroll.ConfigRepository {
	return &payrollConfigRepository{db: db}
}

// GetGradeByEmployee implements payroll.ConfigRepository. The grade is
// resolved through the employee's role.
func (r *payrollConfigRepository) GetGradeByEmployee(ctx context.Context, employeeID string) (payroll.PayGrade, error) {
	q := GetQuerier(ctx, r.db)

	var grade payroll.PayGrade
	err := q.QueryRow(ctx, `
		SELECT g.id, g.role, g.base_salary, g.gross_salary, g.approved_at
		FROM pay_grades g
		JOIN employees e ON e.role = g.role
		WHERE e.id = $1
		ORDER BY g.approved_at DESC
		LIMIT 1
	`, employeeID).Scan(&grade.ID, &grade.Role, &grade.BaseSalary, &grade.GrossSalary, &grade.ApprovedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayGrade{}, payroll.ErrGradeNotFound
		}
		return payroll.PayGrade{}, fmt.Errorf("failed to resolve pay grade: %w", err)
	}
	return grade, nil
}

// GetActiveTaxRule implements payroll.ConfigRepository.
func (r *payrollConfigRepository) GetActiveTaxRule(ctx context.Context) (payroll.TaxRule, error) {
	q := GetQuerier(ctx, r.db)

	var rule payroll.TaxRule
	err := q.QueryRow(ctx, `
		SELECT id, name, rate, approved_at
		FROM tax_rules
		WHERE approved_at IS NOT NULL
		ORDER BY approved_at DESC
		LIMIT 1
	`).Scan(&rule.ID, &rule.Name, &rule.Rate, &rule.ApprovedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.TaxRule{}, payroll.ErrTaxRuleNotFound
		}
		return payroll.TaxRule{}, fmt.Errorf("failed to get tax rule: %w", err)
	}
	return rule, nil
}

// ListInsuranceBrackets implements payroll.ConfigRepository.
func (r *payrollConfigRepository) ListInsuranceBrackets(ctx context.Context) ([]payroll.InsuranceBracket, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, min_salary, max_salary, employee_rate, approved_at
		FROM insurance_brackets
		WHERE approved_at IS NOT NULL
		ORDER BY approved_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance brackets: %w", err)
	}
	defer rows.Close()

	var brackets []payroll.InsuranceBracket
	for rows.Next() {
		var b payroll.InsuranceBracket
		if err := rows.Scan(&b.ID, &b.Name, &b.MinSalary, &b.MaxSalary, &b.EmployeeRate, &b.ApprovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insurance bracket: %w", err)
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

// ListActiveAllowances implements payroll.ConfigRepository.
func (r *payrollConfigRepository) ListActiveAllowances(ctx context.Context, employeeID string) ([]payroll.Allowance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, name, amount, active
		FROM allowances
		WHERE employee_id = $1 AND active
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowances: %w", err)
	}
	defer rows.Close()

	var allowances []payroll.Allowance
	for rows.Next() {
		var a payroll.Allowance
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Amount, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan allowance: %w", err)
		}
		allowances = append(allowances, a)
	}
	return allowances, rows.Err()
}

// ListApprovedSigningBonuses implements payroll.ConfigRepository.
func (r *payrollConfigRepository) ListApprovedSigningBonuses(ctx context.Context, employeeID string, from, to time.Time) ([]payroll.SigningBonus, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, amount, approved, created_at
		FROM signing_bonuses
		WHERE employee_id = $1 AND approved AND created_at >= $2 AND created_at < $3
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list signing bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []payroll.SigningBonus
	for rows.Next() {
		var b payroll.SigningBonus
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Amount, &b.Approved, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signing bonus: %w", err)
		}
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

// ListApprovedTerminationBenefits implements payroll.ConfigRepository.
func (r *payrollConfigRepository) ListApprovedTerminationBenefits(ctx context.Context, employeeID string, from, to time.Time) ([]payroll.TerminationBenefit, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, amount, approved, created_at
		FROM termination_benefits
		WHERE employee_id = $1 AND approved AND created_at >= $2 AND created_at < $3
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list termination benefits: %w", err)
	}
	defer rows.Close()

	var benefits []payroll.TerminationBenefit
	for rows.Next() {
		var b payroll.TerminationBenefit
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Amount, &b.Approved, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan termination benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	return benefits, rows.Err()
}

// ListApprovedRefunds implements payroll.ConfigRepository. Refunds are
// not scoped by period.
func (r *payrollConfigRepository) ListApprovedRefunds(ctx context.Context, employeeID string) ([]payroll.Refund, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, amount, reason, approved, created_at
		FROM refunds
		WHERE employee_id = $1 AND approved
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	defer rows.Close()

	var refunds []payroll.Refund
	for rows.Next() {
		var refund payroll.Refund
		if err := rows.Scan(&refund.ID, &refund.EmployeeID, &refund.Amount, &refund.Reason, &refund.Approved, &refund.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan refund: %w", err)
		}
		refunds = append(refunds, refund)
	}
	return refunds, rows.Err()
}

// ListApprovedPenalties implements payroll.ConfigRepository.
func (r *payrollConfigRepository) ListApprovedPenalties(ctx context.Context, employeeID string, from, to time.Time) ([]payroll.Penalty, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, employee_id, kind, amount, reason, period_year, period_month, approved, created_at
		FROM penalties
		WHERE employee_id = $1 AND approved AND created_at >= $2 AND created_at < $3
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	defer rows.Close()

	var penalties []payroll.Penalty
	for rows.Next() {
		var p payroll.Penalty
		err := rows.Scan(&p.ID, &p.EmployeeID, &p.Kind, &p.Amount, &p.Reason, &p.PeriodYear, &p.PeriodMonth, &p.Approved, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}
