package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/employee"
	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
)

const (
	expectedMinutesPerDay = 8 * 60
	workingDaysPerMonth   = 30
	workingHoursPerDay    = 8
)

type PayrollServiceImpl struct {
	payroll.Repository
	configs    payroll.ConfigRepository
	employees  employee.Repository
	attendance attendance.Repository
	payslips   payroll.PayslipCreator
}

func NewPayrollService(
	repository payroll.Repository,
	configs payroll.ConfigRepository,
	employees employee.Repository,
	attendanceRepository attendance.Repository,
	payslips payroll.PayslipCreator,
) payroll.Service {
	return &PayrollServiceImpl{
		Repository: repository,
		configs:    configs,
		employees:  employees,
		attendance: attendanceRepository,
		payslips:   payslips,
	}
}

// monthBounds returns the first instant of the month and the first
// instant of the next month.
func monthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// round2 is the money rounding applied at every computation boundary.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateEmployeeSalary implements payroll.Service. The computation is
// pure with respect to its inputs except for the live attendance
// aggregate; it never persists anything.
func (s *PayrollServiceImpl) CalculateEmployeeSalary(ctx context.Context, employeeID string, year, month int) (payroll.SalaryBreakdown, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.SalaryBreakdown{}, err
	}

	monthStart, monthEnd := monthBounds(year, month)

	breakdown := payroll.SalaryBreakdown{EmployeeID: employeeID}

	grade, err := s.configs.GetGradeByEmployee(ctx, employeeID)
	switch {
	case err == nil:
		breakdown.GradeFound = true
		breakdown.BaseSalary = round2(grade.BaseSalary)
		breakdown.GradeGross = round2(grade.GrossSalary)
	case errors.Is(err, payroll.ErrGradeNotFound):
		breakdown.BaseSalary = payroll.DefaultGradeSalary
		breakdown.GradeGross = payroll.DefaultGradeSalary
	default:
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to resolve pay grade: %w", err)
	}

	allowances, err := s.configs.ListActiveAllowances(ctx, employeeID)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to list allowances: %w", err)
	}
	for _, a := range allowances {
		breakdown.Allowances = breakdown.Allowances.Add(a.Amount)
	}
	breakdown.Allowances = round2(breakdown.Allowances)

	bonuses, err := s.configs.ListApprovedSigningBonuses(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to list signing bonuses: %w", err)
	}
	for _, b := range bonuses {
		breakdown.SigningBonus = breakdown.SigningBonus.Add(b.Amount)
	}
	breakdown.SigningBonus = round2(breakdown.SigningBonus)

	benefits, err := s.configs.ListApprovedTerminationBenefits(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to list termination benefits: %w", err)
	}
	for _, b := range benefits {
		breakdown.Termination = breakdown.Termination.Add(b.Amount)
	}
	breakdown.Termination = round2(breakdown.Termination)

	breakdown.GrossSalary = round2(breakdown.BaseSalary.
		Add(breakdown.Allowances).
		Add(breakdown.SigningBonus).
		Add(breakdown.Termination))

	taxRate := payroll.DefaultTaxRate
	taxRule, err := s.configs.GetActiveTaxRule(ctx)
	switch {
	case err == nil:
		taxRate = taxRule.Rate
	case errors.Is(err, payroll.ErrTaxRuleNotFound):
	default:
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to resolve tax rule: %w", err)
	}
	breakdown.TaxAmount = round2(taxRate.Mul(breakdown.BaseSalary))

	insuranceRate := payroll.DefaultInsuranceRate
	brackets, err := s.configs.ListInsuranceBrackets(ctx)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to list insurance brackets: %w", err)
	}
	for _, bracket := range brackets {
		if bracket.Contains(breakdown.GrossSalary) {
			insuranceRate = bracket.EmployeeRate
			break
		}
	}
	breakdown.InsuranceAmount = round2(insuranceRate.Mul(breakdown.GrossSalary))

	refunds, err := s.configs.ListApprovedRefunds(ctx, employeeID)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to list refunds: %w", err)
	}
	for _, r := range refunds {
		breakdown.Refunds = breakdown.Refunds.Add(r.Amount)
	}
	breakdown.Refunds = round2(breakdown.Refunds)

	summary, err := s.attendance.MonthlySummary(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to aggregate attendance: %w", err)
	}
	breakdown.DaysPresent = summary.DaysPresent
	breakdown.WorkedMinutes = summary.TotalWorkedMinutes

	expectedMinutes := expectedMinutesPerDay * summary.DaysPresent
	missingMinutes := expectedMinutes - summary.TotalWorkedMinutes
	if missingMinutes < 0 {
		missingMinutes = 0
	}
	breakdown.MissingHours = decimal.NewFromInt(int64(missingMinutes)).
		Div(decimal.NewFromInt(60)).Round(2)
	hourlyRate := breakdown.GradeGross.
		Div(decimal.NewFromInt(workingDaysPerMonth)).
		Div(decimal.NewFromInt(workingHoursPerDay))
	breakdown.MissingHoursAmount = round2(breakdown.MissingHours.Mul(hourlyRate))

	penalties, err := s.configs.ListApprovedPenalties(ctx, employeeID, monthStart, monthEnd)
	if err != nil {
		return payroll.SalaryBreakdown{}, fmt.Errorf("failed to list penalties: %w", err)
	}
	otherPenalties := decimal.Zero
	for _, p := range penalties {
		otherPenalties = otherPenalties.Add(p.Amount)
	}
	breakdown.Penalties = round2(breakdown.MissingHoursAmount.Add(otherPenalties))

	breakdown.NetSalary = breakdown.GrossSalary.
		Sub(breakdown.TaxAmount).
		Sub(breakdown.InsuranceAmount)
	breakdown.NetPay = breakdown.NetSalary.
		Sub(breakdown.Penalties).
		Add(breakdown.Refunds)

	breakdown.BankStatus = payroll.BankStatusMissing
	if emp.HasBankDetails() {
		breakdown.BankStatus = payroll.BankStatusValid
	}

	return breakdown, nil
}
