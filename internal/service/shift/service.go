package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/shift"
)

type ValidatorImpl struct {
	shift.AssignmentRepository
	shift.HolidayRepository
}

func NewValidator(assignments shift.AssignmentRepository, holidays shift.HolidayRepository) shift.Validator {
	return &ValidatorImpl{
		AssignmentRepository: assignments,
		HolidayRepository:    holidays,
	}
}

// ResolveShift implements shift.Validator.
func (v *ValidatorImpl) ResolveShift(ctx context.Context, employeeID string, day time.Time) (*shift.ResolvedShift, error) {
	assignment, err := v.AssignmentRepository.GetActiveAssignment(ctx, employeeID, day)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve shift assignment: %w", err)
	}

	definition, err := v.AssignmentRepository.GetDefinition(ctx, assignment.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift definition: %w", err)
	}

	return &shift.ResolvedShift{Assignment: assignment, Definition: definition}, nil
}

// ValidatePunch implements shift.Validator. An employee with no active
// assignment is never rejected here.
func (v *ValidatorImpl) ValidatePunch(ctx context.Context, employeeID string, punchType attendance.PunchType, at time.Time) error {
	resolved, err := v.ResolveShift(ctx, employeeID, at)
	if err != nil {
		return err
	}
	if resolved == nil {
		return nil
	}

	def := resolved.Definition
	start, end, err := def.Window(at)
	if err != nil {
		return fmt.Errorf("failed to compute shift window: %w", err)
	}

	// All rejections are gated on the shift requiring approval; a shift
	// without that flag accepts any punch time.
	if !def.RequiresApprovalForOvertime {
		return nil
	}

	switch punchType {
	case attendance.PunchIn:
		earliest := start.Add(-time.Duration(def.GraceInMinutes) * time.Minute)
		if at.Before(earliest) {
			return shift.ErrEarlyClockIn
		}

		blocked, err := v.holidayBlocks(ctx, at)
		if err != nil {
			return err
		}
		if blocked {
			return shift.ErrHolidayBlocked
		}

	case attendance.PunchOut:
		if at.Before(end) {
			return shift.ErrEarlyClockOut
		}
		latest := end.Add(time.Duration(def.GraceOutMinutes) * time.Minute)
		if at.After(latest) {
			return shift.ErrOvertimeNotApproved
		}
	}

	return nil
}

func (v *ValidatorImpl) holidayBlocks(ctx context.Context, day time.Time) (bool, error) {
	holidays, err := v.HolidayRepository.ListCovering(ctx, day)
	if err != nil {
		return false, fmt.Errorf("failed to list holidays: %w", err)
	}
	for _, h := range holidays {
		if h.Blocks(day) {
			return true, nil
		}
	}
	return false, nil
}
