package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
)

type PayrollRepository struct {
	mu        sync.RWMutex
	runs      map[string]payroll.Run
	penalties map[string]payroll.Penalty
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		runs:      make(map[string]payroll.Run),
		penalties: make(map[string]payroll.Penalty),
	}
}

func (r *PayrollRepository) CreateRun(_ context.Context, run payroll.Run) (payroll.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.runs {
		if existing.PeriodYear == run.PeriodYear && existing.PeriodMonth == run.PeriodMonth {
			return payroll.Run{}, payroll.ErrRunAlreadyExists
		}
	}
	r.runs[run.ID] = run
	return run, nil
}

func (r *PayrollRepository) GetRunByID(_ context.Context, id string) (payroll.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r *PayrollRepository) GetRunByPeriod(_ context.Context, year, month int) (payroll.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, run := range r.runs {
		if run.PeriodYear == year && run.PeriodMonth == month {
			return run, nil
		}
	}
	return payroll.Run{}, payroll.ErrRunNotFound
}

func (r *PayrollRepository) UpdateRunStatus(_ context.Context, id string, status payroll.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.Status = status
	run.UpdatedAt = time.Now().UTC()
	r.runs[id] = run
	return nil
}

func (r *PayrollRepository) CreatePenalty(_ context.Context, penalty payroll.Penalty) (payroll.Penalty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.penalties[penalty.ID] = penalty
	return penalty, nil
}

// PayrollConfigRepository serves the read-only salary structures.
type PayrollConfigRepository struct {
	mu sync.RWMutex

	gradesByEmployee map[string]payroll.PayGrade
	taxRules         []payroll.TaxRule
	brackets         []payroll.InsuranceBracket
	allowances       []payroll.Allowance
	bonuses          []payroll.SigningBonus
	benefits         []payroll.TerminationBenefit
	refunds          []payroll.Refund
	penalties        []payroll.Penalty
}

func NewPayrollConfigRepository() *PayrollConfigRepository {
	return &PayrollConfigRepository{gradesByEmployee: make(map[string]payroll.PayGrade)}
}

func (r *PayrollConfigRepository) SetGrade(employeeID string, grade payroll.PayGrade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gradesByEmployee[employeeID] = grade
}

func (r *PayrollConfigRepository) AddTaxRule(rule payroll.TaxRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taxRules = append(r.taxRules, rule)
}

func (r *PayrollConfigRepository) AddBracket(bracket payroll.InsuranceBracket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brackets = append(r.brackets, bracket)
}

func (r *PayrollConfigRepository) AddAllowance(a payroll.Allowance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowances = append(r.allowances, a)
}

func (r *PayrollConfigRepository) AddSigningBonus(b payroll.SigningBonus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bonuses = append(r.bonuses, b)
}

func (r *PayrollConfigRepository) AddTerminationBenefit(b payroll.TerminationBenefit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.benefits = append(r.benefits, b)
}

func (r *PayrollConfigRepository) AddRefund(refund payroll.Refund) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = append(r.refunds, refund)
}

func (r *PayrollConfigRepository) AddPenalty(penalty payroll.Penalty) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.penalties = append(r.penalties, penalty)
}

func (r *PayrollConfigRepository) GetGradeByEmployee(_ context.Context, employeeID string) (payroll.PayGrade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	grade, ok := r.gradesByEmployee[employeeID]
	if !ok {
		return payroll.PayGrade{}, payroll.ErrGradeNotFound
	}
	return grade, nil
}

func (r *PayrollConfigRepository) GetActiveTaxRule(_ context.Context) (payroll.TaxRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.taxRules) == 0 {
		return payroll.TaxRule{}, payroll.ErrTaxRuleNotFound
	}
	rules := make([]payroll.TaxRule, len(r.taxRules))
	copy(rules, r.taxRules)
	sort.Slice(rules, func(i, j int) bool { return rules[i].ApprovedAt.After(rules[j].ApprovedAt) })
	return rules[0], nil
}

func (r *PayrollConfigRepository) ListInsuranceBrackets(_ context.Context) ([]payroll.InsuranceBracket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	brackets := make([]payroll.InsuranceBracket, len(r.brackets))
	copy(brackets, r.brackets)
	sort.Slice(brackets, func(i, j int) bool { return brackets[i].ApprovedAt.After(brackets[j].ApprovedAt) })
	return brackets, nil
}

func (r *PayrollConfigRepository) ListActiveAllowances(_ context.Context, employeeID string) ([]payroll.Allowance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.Allowance
	for _, a := range r.allowances {
		if a.EmployeeID == employeeID && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *PayrollConfigRepository) ListApprovedSigningBonuses(_ context.Context, employeeID string, from, to time.Time) ([]payroll.SigningBonus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.SigningBonus
	for _, b := range r.bonuses {
		if b.EmployeeID == employeeID && b.Approved && inWindow(b.CreatedAt, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *PayrollConfigRepository) ListApprovedTerminationBenefits(_ context.Context, employeeID string, from, to time.Time) ([]payroll.TerminationBenefit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.TerminationBenefit
	for _, b := range r.benefits {
		if b.EmployeeID == employeeID && b.Approved && inWindow(b.CreatedAt, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *PayrollConfigRepository) ListApprovedRefunds(_ context.Context, employeeID string) ([]payroll.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.Refund
	for _, refund := range r.refunds {
		if refund.EmployeeID == employeeID && refund.Approved {
			out = append(out, refund)
		}
	}
	return out, nil
}

func (r *PayrollConfigRepository) ListApprovedPenalties(_ context.Context, employeeID string, from, to time.Time) ([]payroll.Penalty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payroll.Penalty
	for _, p := range r.penalties {
		if p.EmployeeID == employeeID && p.Approved && inWindow(p.CreatedAt, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
