package shift

import "errors"

// Shift validation errors. Each one carries the specific reason a punch
// was rejected so callers can surface it verbatim.
var (
	ErrShiftNotFound        = errors.New("shift definition not found")
	ErrEarlyClockIn         = errors.New("clock-in is earlier than the shift allows without approval")
	ErrHolidayBlocked       = errors.New("punches on this holiday require approval")
	ErrEarlyClockOut        = errors.New("clock-out before shift end requires approval")
	ErrOvertimeNotApproved  = errors.New("clock-out beyond the grace period requires overtime approval")
	ErrInvalidShiftTemplate = errors.New("shift template has an invalid time window")
)
