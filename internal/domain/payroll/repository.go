package payroll

import (
	"context"
	"time"
)

// ConfigRepository resolves the read-only salary structures that feed
// the calculator: grades, tax rules, insurance brackets, and the
// adjustment tables.
type ConfigRepository interface {
	// GetGradeByEmployee resolves the employee's role to a pay grade, or
	// ErrGradeNotFound when the role has none.
	GetGradeByEmployee(ctx context.Context, employeeID string) (PayGrade, error)

	// GetActiveTaxRule returns the most recently approved tax rule, or
	// ErrTaxRuleNotFound when none exists.
	GetActiveTaxRule(ctx context.Context) (TaxRule, error)

	// ListInsuranceBrackets returns approved brackets, most recently
	// approved first.
	ListInsuranceBrackets(ctx context.Context) ([]InsuranceBracket, error)

	ListActiveAllowances(ctx context.Context, employeeID string) ([]Allowance, error)
	ListApprovedSigningBonuses(ctx context.Context, employeeID string, from, to time.Time) ([]SigningBonus, error)
	ListApprovedTerminationBenefits(ctx context.Context, employeeID string, from, to time.Time) ([]TerminationBenefit, error)
	ListApprovedRefunds(ctx context.Context, employeeID string) ([]Refund, error)
	ListApprovedPenalties(ctx context.Context, employeeID string, from, to time.Time) ([]Penalty, error)
}

// Repository persists payroll runs, their per-employee rows, and
// penalties.
type Repository interface {
	CreateRun(ctx context.Context, run Run) (Run, error)
	GetRunByID(ctx context.Context, id string) (Run, error)
	GetRunByPeriod(ctx context.Context, year, month int) (Run, error)
	UpdateRunStatus(ctx context.Context, id string, status RunStatus) error

	CreatePenalty(ctx context.Context, penalty Penalty) (Penalty, error)
}

// PayslipCreator renders a payslip document for one breakdown. A
// failure here is reported as a run warning, never an abort.
type PayslipCreator interface {
	CreatePayslip(ctx context.Context, runID string, breakdown SalaryBreakdown) error
}

// Service is the payroll engine's contract.
type Service interface {
	CalculateEmployeeSalary(ctx context.Context, employeeID string, year, month int) (SalaryBreakdown, error)
	GenerateDraft(ctx context.Context, req GenerateDraftRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	AdvanceRun(ctx context.Context, req AdvanceRunRequest) (RunResponse, error)
	SavePenalty(ctx context.Context, req CreatePenaltyRequest) (Penalty, error)
}
