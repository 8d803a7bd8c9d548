package correction

import "errors"

// Correction domain errors
var (
	ErrRequestNotFound         = errors.New("correction request not found")
	ErrAlreadyDecided          = errors.New("correction request has already been approved or rejected")
	ErrDurationExceedsLimit    = errors.New("requested duration exceeds the configured maximum")
	ErrRecordMismatch          = errors.New("attendance record does not belong to this employee")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
	ErrNoDurationConfig        = errors.New("no active duration config")
)
