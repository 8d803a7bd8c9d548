package payroll

import (
	"context"
	"log/slog"

	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
)

// NoopPayslips satisfies payroll.PayslipCreator when no document
// pipeline is attached. Rendering happens in a separate service that
// consumes finished runs.
type NoopPayslips struct{}

// CreatePayslip implements payroll.PayslipCreator.
func (NoopPayslips) CreatePayslip(_ context.Context, runID string, breakdown payroll.SalaryBreakdown) error {
	slog.Debug("payslip rendering skipped",
		"run_id", runID,
		"employee_id", breakdown.EmployeeID,
	)
	return nil
}
