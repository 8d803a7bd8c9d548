package shift

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/shift"
	"github.com/workstream-hr/payroll-core-go/internal/repository/memory"
)

// 2026-03-10 is a Tuesday.
func tuesday(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func strictShiftRepo(t *testing.T) *memory.ShiftRepository {
	t.Helper()
	repo := memory.NewShiftRepository()
	repo.AddDefinition(shift.Definition{
		ID:                          "shift-day",
		Name:                        "Day Shift",
		StartTime:                   "09:00",
		EndTime:                     "17:00",
		GraceInMinutes:              15,
		GraceOutMinutes:             30,
		RequiresApprovalForOvertime: true,
		PunchPolicy:                 attendance.PolicyMultiple,
	})
	repo.AddAssignment(shift.Assignment{
		ID:        "assign-1",
		Scope:     shift.ScopeEmployee,
		ScopeID:   "emp-1",
		ShiftID:   "shift-day",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return repo
}

func TestValidator_ResolveShift_NoAssignment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	v := NewValidator(memory.NewShiftRepository(), memory.NewShiftRepository())

	resolved, err := v.ResolveShift(ctx, "emp-unknown", tuesday(9, 0))
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestValidator_ResolveShift_EmployeeScope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	v := NewValidator(repo, repo)

	resolved, err := v.ResolveShift(ctx, "emp-1", tuesday(9, 0))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "shift-day", resolved.Definition.ID)
}

func TestValidator_ResolveShift_ScopePrecedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := memory.NewShiftRepository()
	repo.AddDefinition(shift.Definition{ID: "shift-emp", StartTime: "09:00", EndTime: "17:00"})
	repo.AddDefinition(shift.Definition{ID: "shift-dept", StartTime: "08:00", EndTime: "16:00"})
	repo.SetDepartment("emp-1", "dept-1")
	repo.AddAssignment(shift.Assignment{
		Scope:     shift.ScopeDepartment,
		ScopeID:   "dept-1",
		ShiftID:   "shift-dept",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.AddAssignment(shift.Assignment{
		Scope:     shift.ScopeEmployee,
		ScopeID:   "emp-1",
		ShiftID:   "shift-emp",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	v := NewValidator(repo, repo)
	resolved, err := v.ResolveShift(ctx, "emp-1", tuesday(9, 0))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "shift-emp", resolved.Definition.ID)
}

func TestValidator_ValidatePunch_EarlyClockIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	v := NewValidator(repo, repo)

	// 08:30 is before the 15-minute grace in front of a 09:00 start.
	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(8, 30))
	assert.ErrorIs(t, err, shift.ErrEarlyClockIn)

	// 08:45 is exactly on the grace boundary.
	err = v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(8, 45))
	assert.NoError(t, err)
}

func TestValidator_ValidatePunch_EarlyClockOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	v := NewValidator(repo, repo)

	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchOut, tuesday(16, 0))
	assert.ErrorIs(t, err, shift.ErrEarlyClockOut)
}

func TestValidator_ValidatePunch_OvertimeNotApproved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	v := NewValidator(repo, repo)

	// 17:30 is the last accepted instant with 30 minutes of grace out.
	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchOut, tuesday(17, 30))
	assert.NoError(t, err)

	err = v.ValidatePunch(ctx, "emp-1", attendance.PunchOut, tuesday(17, 31))
	assert.ErrorIs(t, err, shift.ErrOvertimeNotApproved)
}

func TestValidator_ValidatePunch_LenientShiftAcceptsAnything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := memory.NewShiftRepository()
	repo.AddDefinition(shift.Definition{
		ID:        "shift-flex",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	repo.AddAssignment(shift.Assignment{
		Scope:     shift.ScopeEmployee,
		ScopeID:   "emp-1",
		ShiftID:   "shift-flex",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	v := NewValidator(repo, repo)

	assert.NoError(t, v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(5, 0)))
	assert.NoError(t, v.ValidatePunch(ctx, "emp-1", attendance.PunchOut, tuesday(23, 0)))
}

func TestValidator_ValidatePunch_NoAssignmentAccepted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := memory.NewShiftRepository()
	v := NewValidator(repo, repo)

	assert.NoError(t, v.ValidatePunch(ctx, "emp-unknown", attendance.PunchIn, tuesday(3, 0)))
}

func TestValidator_ValidatePunch_NationalHolidayBlocks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	repo.AddHoliday(shift.Holiday{
		Name:      "Independence Day",
		Type:      shift.HolidayNational,
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   timePtr(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)),
		Active:    true,
	})
	v := NewValidator(repo, repo)

	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(9, 0))
	assert.ErrorIs(t, err, shift.ErrHolidayBlocked)
}

func TestValidator_ValidatePunch_WeeklyRestMatchesWeekdayName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	repo.AddHoliday(shift.Holiday{
		Name:      "Tuesday Rest",
		Type:      shift.HolidayWeeklyRest,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:    true,
	})
	v := NewValidator(repo, repo)

	// 2026-03-10 is a Tuesday, so the rest entry applies.
	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(9, 0))
	assert.ErrorIs(t, err, shift.ErrHolidayBlocked)
}

func TestValidator_ValidatePunch_WeeklyRestOtherWeekdayIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	repo.AddHoliday(shift.Holiday{
		Name:      "Sunday Rest",
		Type:      shift.HolidayWeeklyRest,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:    true,
	})
	v := NewValidator(repo, repo)

	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(9, 0))
	assert.NoError(t, err)
}

func TestValidator_ValidatePunch_InactiveHolidayIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := strictShiftRepo(t)
	repo.AddHoliday(shift.Holiday{
		Name:      "Old Holiday",
		Type:      shift.HolidayNational,
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Active:    false,
	})
	v := NewValidator(repo, repo)

	err := v.ValidatePunch(ctx, "emp-1", attendance.PunchIn, tuesday(9, 0))
	assert.NoError(t, err)
}

func TestDefinition_Window_Overnight(t *testing.T) {
	t.Parallel()

	def := shift.Definition{StartTime: "22:00", EndTime: "06:00"}
	start, end, err := def.Window(tuesday(23, 0))
	require.NoError(t, err)

	assert.Equal(t, tuesday(22, 0), start)
	assert.Equal(t, start.Add(8*time.Hour), end)
}

func timePtr(t time.Time) *time.Time { return &t }
