package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/workstream-hr/payroll-core-go/internal/pkg/validator"
)

type GenerateDraftRequest struct {
	PeriodYear  int    `json:"period_year"`
	PeriodMonth int    `json:"period_month"`
	GeneratedBy string `json:"generated_by"`

	// Entity scopes the run to one legal entity. Empty means the whole
	// directory.
	Entity string `json:"entity,omitempty"`

	// EmployeeIDs limits the run to a subset. Empty means all active
	// employees.
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *GenerateDraftRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "period_year",
			Message: "period_year must be between 2000 and 2100",
		})
	}
	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "period_month",
			Message: "period_month must be between 1 and 12",
		})
	}
	if validator.IsEmpty(r.GeneratedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "generated_by",
			Message: "generated_by is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceRunRequest struct {
	RunID     string    `json:"-"`
	NextState RunStatus `json:"next_state"`
	ActorID   string    `json:"actor_id"`
}

func (r *AdvanceRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.NextState)) {
		errs = append(errs, validator.ValidationError{
			Field:   "next_state",
			Message: "next_state is required",
		})
	}
	if validator.IsEmpty(r.ActorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "actor_id",
			Message: "actor_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreatePenaltyRequest struct {
	EmployeeID  string          `json:"employee_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	PeriodYear  int             `json:"period_year"`
	PeriodMonth int             `json:"period_month"`
}

func (r *CreatePenaltyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "period_month",
			Message: "period_month must be between 1 and 12",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunResponse struct {
	ID          string              `json:"id"`
	PeriodYear  int                 `json:"period_year"`
	PeriodMonth int                 `json:"period_month"`
	Status      RunStatus           `json:"status"`
	GeneratedBy string              `json:"generated_by"`
	GeneratedAt time.Time           `json:"generated_at"`
	Breakdowns  []BreakdownResponse `json:"breakdowns"`
	Exceptions  []Exception         `json:"exceptions,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	TotalNetPay decimal.Decimal     `json:"total_net_pay"`
}

type BreakdownResponse struct {
	EmployeeID         string          `json:"employee_id"`
	GradeFound         bool            `json:"grade_found"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	Allowances         decimal.Decimal `json:"allowances"`
	SigningBonus       decimal.Decimal `json:"signing_bonus"`
	Termination        decimal.Decimal `json:"termination_benefit"`
	GrossSalary        decimal.Decimal `json:"gross_salary"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	InsuranceAmount    decimal.Decimal `json:"insurance_amount"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	Penalties          decimal.Decimal `json:"penalties"`
	Refunds            decimal.Decimal `json:"refunds"`
	NetPay             decimal.Decimal `json:"net_pay"`
	MissingHours       decimal.Decimal `json:"missing_hours"`
	MissingHoursAmount decimal.Decimal `json:"missing_hours_amount"`
	BankStatus         BankStatus      `json:"bank_status"`
}

func NewRunResponse(run Run) RunResponse {
	breakdowns := make([]BreakdownResponse, 0, len(run.Breakdowns))
	for _, b := range run.Breakdowns {
		breakdowns = append(breakdowns, BreakdownResponse{
			EmployeeID:         b.EmployeeID,
			GradeFound:         b.GradeFound,
			BaseSalary:         b.BaseSalary,
			Allowances:         b.Allowances,
			SigningBonus:       b.SigningBonus,
			Termination:        b.Termination,
			GrossSalary:        b.GrossSalary,
			TaxAmount:          b.TaxAmount,
			InsuranceAmount:    b.InsuranceAmount,
			NetSalary:          b.NetSalary,
			Penalties:          b.Penalties,
			Refunds:            b.Refunds,
			NetPay:             b.NetPay,
			MissingHours:       b.MissingHours,
			MissingHoursAmount: b.MissingHoursAmount,
			BankStatus:         b.BankStatus,
		})
	}

	return RunResponse{
		ID:          run.ID,
		PeriodYear:  run.PeriodYear,
		PeriodMonth: run.PeriodMonth,
		Status:      run.Status,
		GeneratedBy: run.GeneratedBy,
		GeneratedAt: run.GeneratedAt,
		Breakdowns:  breakdowns,
		Exceptions:  run.Exceptions,
		Warnings:    run.Warnings,
		TotalNetPay: run.TotalNetPay(),
	}
}
