package attendance

import (
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/pkg/validator"
)

// RecordPunchRequest carries one punch event into the reconciliation
// engine. Everything beyond EmployeeID and Type is optional; zero values
// fall back to the active shift's configuration.
type RecordPunchRequest struct {
	EmployeeID string     `json:"employee_id"`
	Type       PunchType  `json:"type"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`

	RoundingMode    RoundingMode `json:"rounding_mode,omitempty"`
	IntervalMinutes int          `json:"interval_minutes,omitempty"`

	ExpectedCheckIn           *time.Time `json:"expected_check_in,omitempty"`
	GracePeriodMinutes        *int       `json:"grace_period_minutes,omitempty"`
	LatenessThresholdMinutes  int        `json:"lateness_threshold_minutes,omitempty"`
	AutomaticDeductionMinutes int        `json:"automatic_deduction_minutes,omitempty"`

	Policy PunchPolicy `json:"policy,omitempty"`

	Location   *string `json:"location,omitempty"`
	TerminalID *string `json:"terminal_id,omitempty"`
	DeviceID   *string `json:"device_id,omitempty"`
}

func (r *RecordPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Type != PunchIn && r.Type != PunchOut {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be IN or OUT",
		})
	}

	if r.RoundingMode != "" && !r.RoundingMode.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "rounding_mode",
			Message: "rounding_mode must be one of: nearest, ceil, floor",
		})
	}

	if r.IntervalMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "interval_minutes",
			Message: "interval_minutes must not be negative",
		})
	}

	if r.Policy != "" && !r.Policy.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "policy",
			Message: "policy must be one of: MULTIPLE, FIRST_LAST, ONLY_FIRST",
		})
	}

	if r.GracePeriodMinutes != nil && *r.GracePeriodMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_period_minutes",
			Message: "grace_period_minutes must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	Date                string          `json:"date"`
	Punches             []PunchResponse `json:"punches"`
	TotalWorkMinutes    int             `json:"total_work_minutes"`
	HasMissedPunch      bool            `json:"has_missed_punch"`
	LateMinutes         int             `json:"late_minutes"`
	DeductedMinutes     int             `json:"deducted_minutes"`
	FinalisedForPayroll bool            `json:"finalised_for_payroll"`
}

type PunchResponse struct {
	Type     PunchType `json:"type"`
	At       string    `json:"at"`
	Location *string   `json:"location,omitempty"`
}

// ImportSummary is the aggregate result of a bulk punch import. Rows that
// fail to parse or are rejected by validation are skipped, not fatal.
type ImportSummary struct {
	BatchID  string `json:"batch_id"`
	Source   string `json:"source"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Replayed bool   `json:"replayed"`
}

// ImportBatch is the durable marker that makes bulk import idempotent by
// content rather than by process memory.
type ImportBatch struct {
	ID        string
	Source    string
	Checksum  string
	Imported  int
	Skipped   int
	CreatedAt time.Time
}
