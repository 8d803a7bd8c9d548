package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus tracks a payroll run through its review lifecycle.
type RunStatus string

const (
	RunStatusDraft                  RunStatus = "DRAFT"
	RunStatusUnderReview            RunStatus = "UNDER_REVIEW"
	RunStatusPublished              RunStatus = "PUBLISHED"
	RunStatusPendingFinanceApproval RunStatus = "PENDING_FINANCE_APPROVAL"
	RunStatusPaid                   RunStatus = "PAID"
	RunStatusRejected               RunStatus = "REJECTED"
	RunStatusFrozen                 RunStatus = "FROZEN"
)

// runTransitions lists the allowed forward moves for a run.
var runTransitions = map[RunStatus][]RunStatus{
	RunStatusDraft:                  {RunStatusUnderReview, RunStatusPublished},
	RunStatusUnderReview:            {RunStatusPublished, RunStatusRejected},
	RunStatusPublished:              {RunStatusPendingFinanceApproval, RunStatusFrozen},
	RunStatusPendingFinanceApproval: {RunStatusPaid, RunStatusRejected},
	RunStatusPaid:                   {RunStatusFrozen},
	RunStatusRejected:               {RunStatusDraft},
	RunStatusFrozen:                 {},
}

// CanTransitionTo reports whether moving to next is a legal step.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PayGrade is the salary structure resolved from an employee's role.
type PayGrade struct {
	ID          string
	Role        string
	BaseSalary  decimal.Decimal
	GrossSalary decimal.Decimal
	ApprovedAt  time.Time
}

// DefaultGradeSalary is used for both base and gross when an employee
// has no grade on file.
var DefaultGradeSalary = decimal.NewFromInt(6000)

// TaxRule is a flat rate applied to the base salary. The most recently
// approved rule is the active one.
type TaxRule struct {
	ID         string
	Name       string
	Rate       decimal.Decimal
	ApprovedAt time.Time
}

// DefaultTaxRate applies when no tax rule exists.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// InsuranceBracket maps a gross-salary band to an employee-share rate.
type InsuranceBracket struct {
	ID           string
	Name         string
	MinSalary    decimal.Decimal
	MaxSalary    decimal.Decimal
	EmployeeRate decimal.Decimal
	ApprovedAt   time.Time
}

// Contains reports whether gross falls inside [MinSalary, MaxSalary].
func (b InsuranceBracket) Contains(gross decimal.Decimal) bool {
	return gross.GreaterThanOrEqual(b.MinSalary) && gross.LessThanOrEqual(b.MaxSalary)
}

// DefaultInsuranceRate applies when no bracket contains the gross.
var DefaultInsuranceRate = decimal.NewFromFloat(0.05)

// Allowance is an unconditional addition to gross pay while active.
type Allowance struct {
	ID         string
	EmployeeID string
	Name       string
	Amount     decimal.Decimal
	Active     bool
}

// SigningBonus counts toward the payroll month it was approved in.
type SigningBonus struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Approved   bool
	CreatedAt  time.Time
}

// TerminationBenefit is a final settlement counted in its approval month.
type TerminationBenefit struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Approved   bool
	CreatedAt  time.Time
}

// Refund is a positive adjustment applied after deductions. Refunds are
// not scoped to a period.
type Refund struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Reason     string
	Approved   bool
	CreatedAt  time.Time
}

// PenaltyKind distinguishes the sources of payroll penalties.
type PenaltyKind string

const (
	PenaltyMissingHours PenaltyKind = "MISSING_HOURS"
	PenaltyManual       PenaltyKind = "MANUAL"
)

// Penalty is a deduction applied after net salary is computed.
type Penalty struct {
	ID          string
	EmployeeID  string
	Kind        PenaltyKind
	Amount      decimal.Decimal
	Reason      string
	PeriodYear  int
	PeriodMonth int
	Approved    bool
	CreatedAt   time.Time
}

// BankStatus reflects whether the employee has transfer details on file.
type BankStatus string

const (
	BankStatusValid   BankStatus = "VALID"
	BankStatusMissing BankStatus = "MISSING"
)

// SalaryBreakdown is one employee's computation result for a period.
type SalaryBreakdown struct {
	EmployeeID string

	GradeFound bool
	BaseSalary decimal.Decimal
	// GradeGross is the resolved grade's gross, used for the hourly rate
	// in the missing-hours penalty.
	GradeGross decimal.Decimal

	Allowances   decimal.Decimal
	SigningBonus decimal.Decimal
	Termination  decimal.Decimal

	GrossSalary decimal.Decimal

	TaxAmount       decimal.Decimal
	InsuranceAmount decimal.Decimal

	// NetSalary is gross minus tax and insurance, before penalties and
	// refunds.
	NetSalary decimal.Decimal

	Penalties decimal.Decimal
	Refunds   decimal.Decimal

	// NetPay is the final amount transferred to the employee.
	NetPay decimal.Decimal

	MissingHours       decimal.Decimal
	MissingHoursAmount decimal.Decimal

	WorkedMinutes int
	DaysPresent   int

	BankStatus BankStatus
}

// ExceptionKind labels the review conditions detected on a draft run.
type ExceptionKind string

const (
	ExceptionMissingBankDetails ExceptionKind = "MISSING_BANK_DETAILS"
	ExceptionMissingGrade       ExceptionKind = "MISSING_GRADE"
	ExceptionNegativeNetPay     ExceptionKind = "NEGATIVE_NET_PAY"
	ExceptionNetExceedsGross    ExceptionKind = "NET_EXCEEDS_GROSS"
	ExceptionNetExceedsNet      ExceptionKind = "NET_EXCEEDS_NET_SALARY"
)

// Exception flags a single employee's breakdown for manual review.
type Exception struct {
	EmployeeID string
	Kind       ExceptionKind
	Message    string
}

// Run is a payroll generation for one period.
type Run struct {
	ID          string
	PeriodYear  int
	PeriodMonth int
	Status      RunStatus
	GeneratedBy string
	GeneratedAt time.Time
	UpdatedAt   time.Time

	Breakdowns []SalaryBreakdown
	Exceptions []Exception

	// Warnings records non-fatal failures, such as a payslip that could
	// not be rendered. They never abort the run.
	Warnings []string
}

// TotalNetPay sums the run's final payouts.
func (r Run) TotalNetPay() decimal.Decimal {
	total := decimal.Zero
	for _, b := range r.Breakdowns {
		total = total.Add(b.NetPay)
	}
	return total
}
