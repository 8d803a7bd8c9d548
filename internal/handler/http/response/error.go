package response

import (
	"errors"
	"net/http"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
	"github.com/workstream-hr/payroll-core-go/internal/domain/employee"
	"github.com/workstream-hr/payroll-core-go/internal/domain/payroll"
	"github.com/workstream-hr/payroll-core-go/internal/domain/shift"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrRecordFinalised):
		Conflict(w, "Attendance record is finalised for payroll")
	case errors.Is(err, attendance.ErrImportHeaderMismatch):
		BadRequest(w, "Import file header does not match the expected format", nil)

	// Shift validation errors
	case errors.Is(err, shift.ErrEarlyClockIn):
		BadRequest(w, "Clock-in is earlier than the shift allows", nil)
	case errors.Is(err, shift.ErrEarlyClockOut):
		BadRequest(w, "Clock-out is earlier than the shift end", nil)
	case errors.Is(err, shift.ErrOvertimeNotApproved):
		BadRequest(w, "Overtime requires prior approval", nil)
	case errors.Is(err, shift.ErrHolidayBlocked):
		BadRequest(w, "Punches are blocked on this holiday", nil)

	// Correction domain errors
	case errors.Is(err, correction.ErrRequestNotFound):
		NotFound(w, "Correction request not found")
	case errors.Is(err, correction.ErrAlreadyDecided):
		Conflict(w, "Correction request has already been decided")
	case errors.Is(err, correction.ErrDurationExceedsLimit):
		BadRequest(w, "Requested duration exceeds the configured maximum", nil)
	case errors.Is(err, correction.ErrRecordMismatch):
		BadRequest(w, "Attendance record does not belong to this employee", nil)
	case errors.Is(err, correction.ErrRejectionReasonRequired):
		BadRequest(w, "A rejection reason is required", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, "Invalid payroll run status transition")
	case errors.Is(err, payroll.ErrRunFrozen):
		Conflict(w, "Payroll run is frozen")
	case errors.Is(err, payroll.ErrNoEmployees):
		BadRequest(w, "No eligible employees for this payroll run", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
