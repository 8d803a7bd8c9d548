package shift

import (
	"context"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
)

// AssignmentRepository resolves which shift applies to an employee on a
// given day. Implementations handle the employee > department > position
// scope precedence.
type AssignmentRepository interface {
	// GetActiveAssignment returns the assignment covering the employee on
	// the given day, or ErrShiftNotFound when none applies.
	GetActiveAssignment(ctx context.Context, employeeID string, day time.Time) (Assignment, error)

	GetDefinition(ctx context.Context, shiftID string) (Definition, error)
}

// HolidayRepository lists active holidays covering a day.
type HolidayRepository interface {
	ListCovering(ctx context.Context, day time.Time) ([]Holiday, error)
}

// ResolvedShift is an assignment joined with its definition.
type ResolvedShift struct {
	Assignment Assignment
	Definition Definition
}

// Validator decides whether a punch is permitted. It is a pure decision:
// callers must not persist a punch the validator rejects.
type Validator interface {
	// ResolveShift returns the active shift for the employee on the day,
	// or nil when the employee has no assignment.
	ResolveShift(ctx context.Context, employeeID string, day time.Time) (*ResolvedShift, error)

	// ValidatePunch returns nil when the punch is permitted, or one of
	// the shift errors describing why it is not.
	ValidatePunch(ctx context.Context, employeeID string, punchType attendance.PunchType, at time.Time) error
}
