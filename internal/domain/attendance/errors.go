package attendance

import "errors"

// Attendance domain errors
var (
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrRecordFinalised  = errors.New("attendance record is finalised for payroll")
	ErrInvalidPunchType = errors.New("punch type must be IN or OUT")
	ErrPunchRejected    = errors.New("punch rejected by shift validation")

	// Bulk import errors
	ErrImportAlreadyProcessed = errors.New("import batch has already been processed")
	ErrImportHeaderMismatch   = errors.New("import file header does not match the expected format")
	ErrImportBatchNotFound    = errors.New("import batch not found")
)
