package payroll

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/payroll-core-go/internal/domain/employee"
	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
)

func employeeWithStatus(id string, status employee.Status) employee.Employee {
	return employee.Employee{
		ID:       id,
		FullName: "Employee " + id,
		Status:   status,
		JoinedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func draftReq(employeeIDs ...string) payroll.GenerateDraftRequest {
	return payroll.GenerateDraftRequest{
		PeriodYear:  2026,
		PeriodMonth: 3,
		GeneratedBy: "admin-1",
		EmployeeIDs: employeeIDs,
	}
}

func TestGenerateDraft_CleanRunStaysDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)
	f.configs.SetGrade("emp-1", payroll.PayGrade{
		BaseSalary:  dec("9000"),
		GrossSalary: dec("9000"),
	})
	f.addFullWorkDays(t, "emp-1", 5)

	resp, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)

	assert.Equal(t, payroll.RunStatusDraft, resp.Status)
	assert.True(t, strings.HasPrefix(resp.ID, "PR-2026-"), "run id %s", resp.ID)
	assert.Empty(t, resp.Exceptions)
	assert.Empty(t, resp.Warnings)
	require.Len(t, resp.Breakdowns, 1)
	assert.Equal(t, []string{"emp-1"}, f.payslips.created)
}

func TestGenerateDraft_ExceptionsForceUnderReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	// No bank details and no grade on file.
	f.addEmployee("emp-1", false)

	resp, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)

	assert.Equal(t, payroll.RunStatusUnderReview, resp.Status)
	require.Len(t, resp.Exceptions, 2)

	messages := []string{resp.Exceptions[0].Message, resp.Exceptions[1].Message}
	assert.Contains(t, messages, "Missing bank details")
	assert.Contains(t, messages, "Missing pay grade")
}

func TestGenerateDraft_NoEmployees(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)

	_, err := f.service.GenerateDraft(ctx, draftReq())
	assert.ErrorIs(t, err, payroll.ErrNoEmployees)
}

func TestGenerateDraft_InactiveEmployeesExcluded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)
	f.employees.Add(employeeWithStatus("emp-2", employee.StatusTerminated))

	resp, err := f.service.GenerateDraft(ctx, draftReq("emp-1", "emp-2"))
	require.NoError(t, err)
	require.Len(t, resp.Breakdowns, 1)
	assert.Equal(t, "emp-1", resp.Breakdowns[0].EmployeeID)
}

func employeeInEntity(id, entityID string) employee.Employee {
	emp := employeeWithStatus(id, employee.StatusActive)
	emp.EntityID = strPtr(entityID)
	emp.BankName = strPtr("First National")
	emp.BankAccount = strPtr("000123")
	return emp
}

func TestGenerateDraft_EntityScope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.employees.Add(employeeInEntity("emp-1", "entity-a"))
	f.employees.Add(employeeInEntity("emp-2", "entity-b"))

	req := draftReq()
	req.Entity = "entity-a"

	resp, err := f.service.GenerateDraft(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Breakdowns, 1)
	assert.Equal(t, "emp-1", resp.Breakdowns[0].EmployeeID)
}

func TestGenerateDraft_EntityScopeFiltersExplicitIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.employees.Add(employeeInEntity("emp-1", "entity-a"))
	f.employees.Add(employeeInEntity("emp-2", "entity-b"))

	req := draftReq("emp-1", "emp-2")
	req.Entity = "entity-b"

	resp, err := f.service.GenerateDraft(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Breakdowns, 1)
	assert.Equal(t, "emp-2", resp.Breakdowns[0].EmployeeID)
}

func TestGenerateDraft_EmptyEntityMatchesAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.employees.Add(employeeInEntity("emp-1", "entity-a"))
	f.employees.Add(employeeInEntity("emp-2", "entity-b"))

	resp, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)
	assert.Len(t, resp.Breakdowns, 2)
}

func TestGenerateDraft_PayslipFailureIsWarning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)
	f.addEmployee("emp-2", true)
	f.payslips.failFor["emp-1"] = errors.New("renderer unavailable")

	resp, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)

	require.Len(t, resp.Breakdowns, 2)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "emp-1")
	assert.Equal(t, []string{"emp-2"}, f.payslips.created)
}

func TestGenerateDraft_DuplicatePeriod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)

	_, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)

	_, err = f.service.GenerateDraft(ctx, draftReq())
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyExists)
}

func TestDetectExceptions_NegativeNetPay(t *testing.T) {
	t.Parallel()

	b := payroll.SalaryBreakdown{
		EmployeeID:  "emp-1",
		GradeFound:  true,
		GrossSalary: dec("1000"),
		NetSalary:   dec("850"),
		NetPay:      dec("-25"),
		BankStatus:  payroll.BankStatusValid,
	}
	exceptions := DetectExceptions(b)
	require.Len(t, exceptions, 1)
	assert.Equal(t, payroll.ExceptionNegativeNetPay, exceptions[0].Kind)
	assert.Equal(t, "Net pay is negative", exceptions[0].Message)
}

func TestDetectExceptions_RefundsInflateNetPay(t *testing.T) {
	t.Parallel()

	// A large refund pushes net pay above both net and gross salary.
	b := payroll.SalaryBreakdown{
		EmployeeID:  "emp-1",
		GradeFound:  true,
		GrossSalary: dec("1000"),
		NetSalary:   dec("850"),
		NetPay:      dec("1200"),
		BankStatus:  payroll.BankStatusValid,
	}
	exceptions := DetectExceptions(b)
	require.Len(t, exceptions, 2)

	kinds := []payroll.ExceptionKind{exceptions[0].Kind, exceptions[1].Kind}
	assert.Contains(t, kinds, payroll.ExceptionNetExceedsGross)
	assert.Contains(t, kinds, payroll.ExceptionNetExceedsNet)
}

func TestAdvanceRun_ValidTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)
	f.configs.SetGrade("emp-1", payroll.PayGrade{
		BaseSalary:  dec("9000"),
		GrossSalary: dec("9000"),
	})
	f.addFullWorkDays(t, "emp-1", 5)

	created, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)
	require.Equal(t, payroll.RunStatusDraft, created.Status)

	advanced, err := f.service.AdvanceRun(ctx, payroll.AdvanceRunRequest{
		RunID:     created.ID,
		NextState: payroll.RunStatusPublished,
		ActorID:   "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPublished, advanced.Status)

	stored, err := f.runs.GetRunByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusPublished, stored.Status)
}

func TestAdvanceRun_InvalidTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)
	f.configs.SetGrade("emp-1", payroll.PayGrade{
		BaseSalary:  dec("9000"),
		GrossSalary: dec("9000"),
	})
	f.addFullWorkDays(t, "emp-1", 5)

	created, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)

	_, err = f.service.AdvanceRun(ctx, payroll.AdvanceRunRequest{
		RunID:     created.ID,
		NextState: payroll.RunStatusPaid,
		ActorID:   "admin-1",
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestAdvanceRun_FrozenRunLocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)
	f.configs.SetGrade("emp-1", payroll.PayGrade{
		BaseSalary:  dec("9000"),
		GrossSalary: dec("9000"),
	})
	f.addFullWorkDays(t, "emp-1", 5)

	created, err := f.service.GenerateDraft(ctx, draftReq())
	require.NoError(t, err)
	require.NoError(t, f.runs.UpdateRunStatus(ctx, created.ID, payroll.RunStatusFrozen))

	_, err = f.service.AdvanceRun(ctx, payroll.AdvanceRunRequest{
		RunID:     created.ID,
		NextState: payroll.RunStatusDraft,
		ActorID:   "admin-1",
	})
	assert.ErrorIs(t, err, payroll.ErrRunFrozen)
}

func TestAdvanceRun_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)

	_, err := f.service.AdvanceRun(ctx, payroll.AdvanceRunRequest{
		RunID:     "missing",
		NextState: payroll.RunStatusPublished,
		ActorID:   "admin-1",
	})
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestSavePenalty_PersistedApproved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)
	f.addEmployee("emp-1", true)

	penalty, err := f.service.SavePenalty(ctx, payroll.CreatePenaltyRequest{
		EmployeeID:  "emp-1",
		Amount:      dec("120.505"),
		Reason:      "equipment damage",
		PeriodYear:  2026,
		PeriodMonth: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, payroll.PenaltyManual, penalty.Kind)
	assert.True(t, penalty.Approved)
	assert.True(t, penalty.Amount.Equal(dec("120.51")), "amount %s", penalty.Amount)
	assert.NotEmpty(t, penalty.ID)
}

func TestSavePenalty_UnknownEmployee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newPayrollFixture(t)

	_, err := f.service.SavePenalty(ctx, payroll.CreatePenaltyRequest{
		EmployeeID:  "ghost",
		Amount:      dec("10"),
		Reason:      "x",
		PeriodYear:  2026,
		PeriodMonth: 3,
	})
	assert.Error(t, err)
}
