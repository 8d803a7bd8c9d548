package attendance

import (
	"context"
	"io"
	"time"
)

// Repository defines data access for daily attendance records. The
// read-modify-write of a single day's record is serialized by the service
// layer; Upsert replaces the record (punch list included) atomically.
type Repository interface {
	// GetByEmployeeAndDate returns the record for one employee on one
	// calendar day, or ErrRecordNotFound.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)

	// GetByID returns a record by its identifier, or ErrRecordNotFound.
	GetByID(ctx context.Context, id string) (Record, error)

	// Upsert creates or fully replaces a record in a single transaction.
	Upsert(ctx context.Context, record Record) (Record, error)

	// ListByEmployee returns records for an employee in [from, to],
	// ordered by date.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)

	// ListWithMissedPunches returns records flagged hasMissedPunch in
	// [from, to].
	ListWithMissedPunches(ctx context.Context, from, to time.Time) ([]Record, error)

	// SetFinalised marks a record as finalised for payroll.
	SetFinalised(ctx context.Context, recordID string, finalised bool) error

	// MonthlySummary aggregates days present and worked minutes for one
	// employee over [from, to].
	MonthlySummary(ctx context.Context, employeeID string, from, to time.Time) (MonthlySummary, error)
}

// ImportRepository persists bulk-import markers keyed by content checksum.
type ImportRepository interface {
	GetByChecksum(ctx context.Context, checksum string) (ImportBatch, error)
	Create(ctx context.Context, batch ImportBatch) (ImportBatch, error)
}

// Service is the punch reconciliation engine's contract.
type Service interface {
	RecordPunch(ctx context.Context, req RecordPunchRequest) (RecordResponse, error)
	GetRecord(ctx context.Context, employeeID string, date time.Time) (RecordResponse, error)
	ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]RecordResponse, error)

	// ImportCSV replays a bulk punch file through RecordPunch, row by
	// row. Re-importing identical content is a counted no-op.
	ImportCSV(ctx context.Context, r io.Reader, source string) (ImportSummary, error)
}
