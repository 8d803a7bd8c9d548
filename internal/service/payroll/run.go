package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workstream-hr/payroll-core-go/internal/domain/employee"
	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
)

// GenerateDraft implements payroll.Service. Employees are processed
// sequentially; a failure computing one employee aborts the draft, but a
// payslip failure is collected as a warning and the run continues.
func (s *PayrollServiceImpl) GenerateDraft(ctx context.Context, req payroll.GenerateDraftRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	employees, err := s.eligibleEmployees(ctx, req.Entity, req.EmployeeIDs)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if len(employees) == 0 {
		return payroll.RunResponse{}, payroll.ErrNoEmployees
	}

	now := time.Now().UTC()
	run := payroll.Run{
		ID:          fmt.Sprintf("PR-%d-%d", req.PeriodYear, now.UnixMilli()%1_000_000),
		PeriodYear:  req.PeriodYear,
		PeriodMonth: req.PeriodMonth,
		Status:      payroll.RunStatusDraft,
		GeneratedBy: req.GeneratedBy,
		GeneratedAt: now,
		UpdatedAt:   now,
	}

	for _, emp := range employees {
		breakdown, err := s.CalculateEmployeeSalary(ctx, emp.ID, req.PeriodYear, req.PeriodMonth)
		if err != nil {
			return payroll.RunResponse{}, fmt.Errorf("failed to calculate salary for employee %s: %w", emp.ID, err)
		}

		run.Breakdowns = append(run.Breakdowns, breakdown)
		run.Exceptions = append(run.Exceptions, DetectExceptions(breakdown)...)

		if err := s.payslips.CreatePayslip(ctx, run.ID, breakdown); err != nil {
			warning := fmt.Sprintf("payslip creation failed for employee %s: %v", emp.ID, err)
			run.Warnings = append(run.Warnings, warning)
			slog.Warn("payslip creation failed",
				"run_id", run.ID,
				"employee_id", emp.ID,
				"error", err,
			)
		}
	}

	if len(run.Exceptions) > 0 {
		run.Status = payroll.RunStatusUnderReview
	}

	created, err := s.Repository.CreateRun(ctx, run)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to persist payroll run: %w", err)
	}

	slog.Info("payroll draft generated",
		"run_id", created.ID,
		"employees", len(created.Breakdowns),
		"exceptions", len(created.Exceptions),
		"status", created.Status,
	)

	return payroll.NewRunResponse(created), nil
}

func (s *PayrollServiceImpl) eligibleEmployees(ctx context.Context, entityID string, ids []string) ([]employee.Employee, error) {
	if len(ids) > 0 {
		employees, err := s.employees.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to list employees by ids: %w", err)
		}
		active := employees[:0]
		for _, emp := range employees {
			if emp.Active() && emp.BelongsTo(entityID) {
				active = append(active, emp)
			}
		}
		return active, nil
	}

	employees, err := s.employees.ListActive(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return employees, nil
}

// DetectExceptions checks one breakdown against the review conditions.
func DetectExceptions(b payroll.SalaryBreakdown) []payroll.Exception {
	var exceptions []payroll.Exception
	add := func(kind payroll.ExceptionKind, message string) {
		exceptions = append(exceptions, payroll.Exception{
			EmployeeID: b.EmployeeID,
			Kind:       kind,
			Message:    message,
		})
	}

	if b.BankStatus == payroll.BankStatusMissing {
		add(payroll.ExceptionMissingBankDetails, "Missing bank details")
	}
	if !b.GradeFound {
		add(payroll.ExceptionMissingGrade, "Missing pay grade")
	}
	if b.NetPay.IsNegative() {
		add(payroll.ExceptionNegativeNetPay, "Net pay is negative")
	}
	if b.NetPay.GreaterThan(b.GrossSalary) {
		add(payroll.ExceptionNetExceedsGross, "Net pay exceeds gross salary")
	}
	if b.NetPay.GreaterThan(b.NetSalary) {
		add(payroll.ExceptionNetExceedsNet, "Net pay exceeds net salary")
	}

	return exceptions
}

// GetRun implements payroll.Service.
func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	run, err := s.Repository.GetRunByID(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.NewRunResponse(run), nil
}

// AdvanceRun implements payroll.Service. It validates the status
// transition only; the review phases themselves are driven externally.
func (s *PayrollServiceImpl) AdvanceRun(ctx context.Context, req payroll.AdvanceRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.Repository.GetRunByID(ctx, req.RunID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	if run.Status == payroll.RunStatusFrozen {
		return payroll.RunResponse{}, payroll.ErrRunFrozen
	}
	if !run.Status.CanTransitionTo(req.NextState) {
		return payroll.RunResponse{}, payroll.ErrInvalidTransition
	}

	if err := s.Repository.UpdateRunStatus(ctx, run.ID, req.NextState); err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to update run status: %w", err)
	}
	run.Status = req.NextState

	slog.Info("payroll run advanced",
		"run_id", run.ID,
		"status", run.Status,
		"actor", req.ActorID,
	)

	return payroll.NewRunResponse(run), nil
}

// SavePenalty implements payroll.Service. Draft computation never writes
// penalties; this is the explicit persistence step.
func (s *PayrollServiceImpl) SavePenalty(ctx context.Context, req payroll.CreatePenaltyRequest) (payroll.Penalty, error) {
	if err := req.Validate(); err != nil {
		return payroll.Penalty{}, err
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.Penalty{}, err
	}

	penalty := payroll.Penalty{
		ID:          uuid.NewString(),
		EmployeeID:  req.EmployeeID,
		Kind:        payroll.PenaltyManual,
		Amount:      req.Amount.Round(2),
		Reason:      req.Reason,
		PeriodYear:  req.PeriodYear,
		PeriodMonth: req.PeriodMonth,
		Approved:    true,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.Repository.CreatePenalty(ctx, penalty)
	if err != nil {
		return payroll.Penalty{}, fmt.Errorf("failed to persist penalty: %w", err)
	}
	return created, nil
}
