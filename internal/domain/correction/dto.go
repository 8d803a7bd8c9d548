package correction

import (
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/pkg/validator"
)

type SubmitRequest struct {
	EmployeeID         string `json:"employee_id"`
	AttendanceRecordID string `json:"attendance_record_id"`
	DurationMinutes    int    `json:"duration_minutes"`
	CorrectionType     Type   `json:"correction_type,omitempty"`
	Reason             string `json:"reason"`
	LineManagerID      string `json:"line_manager_id"`

	// AppliesFromDate records the first day the adjustment covers. It is
	// stored for the approver's context; the correction still references
	// a single attendance record.
	AppliesFromDate *time.Time `json:"applies_from_date,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.AttendanceRecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_record_id",
			Message: "attendance_record_id is required",
		})
	}
	if r.DurationMinutes <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "duration_minutes",
			Message: "duration_minutes must be positive",
		})
	}
	if r.CorrectionType != "" && r.CorrectionType != TypeAdd && r.CorrectionType != TypeDeduct {
		errs = append(errs, validator.ValidationError{
			Field:   "correction_type",
			Message: "correction_type must be ADD or DEDUCT",
		})
	}
	if validator.IsEmpty(r.LineManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "line_manager_id",
			Message: "line_manager_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideRequest struct {
	CorrectionID    string   `json:"-"`
	ApproverID      string   `json:"approver_id"`
	Decision        Status   `json:"decision"`
	ApproverRole    FlowRole `json:"approver_role,omitempty"`
	RejectionReason *string  `json:"rejection_reason,omitempty"`
	ApplyToPayroll  *bool    `json:"apply_to_payroll,omitempty"`
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}
	if r.Decision != StatusApproved && r.Decision != StatusRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be APPROVED or REJECTED",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	ID                 string      `json:"id"`
	EmployeeID         string      `json:"employee_id"`
	AttendanceRecordID string      `json:"attendance_record_id"`
	DurationMinutes    int         `json:"duration_minutes"`
	CorrectionType     Type        `json:"correction_type"`
	Reason             string      `json:"reason"`
	LineManagerID      string      `json:"line_manager_id"`
	AppliesFromDate    *string     `json:"applies_from_date,omitempty"`
	Status             Status      `json:"status"`
	ApprovalFlow       []FlowEntry `json:"approval_flow"`
	AppliedToPayroll   bool        `json:"applied_to_payroll"`
	RejectionReason    *string     `json:"rejection_reason,omitempty"`
	EscalatedAt        *string     `json:"escalated_at,omitempty"`
	EscalationReason   *string     `json:"escalation_reason,omitempty"`
	PayrollCutoffAt    *string     `json:"payroll_cutoff_at,omitempty"`
	CreatedAt          string      `json:"created_at"`
}

// Filter narrows correction queries.
type Filter struct {
	EmployeeID    *string
	LineManagerID *string
	Status        *Status
	From          *time.Time
	To            *time.Time
}
