package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, punches, total_work_minutes, has_missed_punch,
		       late_minutes, deducted_minutes, finalised_for_payroll, created_at, updated_at
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2
	`

	return scanRecord(q.QueryRow(ctx, query, employeeID, date))
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, punches, total_work_minutes, has_missed_punch,
		       late_minutes, deducted_minutes, finalised_for_payroll, created_at, updated_at
		FROM attendance_records
		WHERE id = $1
	`

	return scanRecord(q.QueryRow(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (attendance.Record, error) {
	var record attendance.Record
	var punchesJSON []byte

	err := row.Scan(
		&record.ID, &record.EmployeeID, &record.Date, &punchesJSON,
		&record.TotalWorkMinutes, &record.HasMissedPunch,
		&record.LateMinutes, &record.DeductedMinutes,
		&record.FinalisedForPayroll, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if err := json.Unmarshal(punchesJSON, &record.Punches); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to decode punches: %w", err)
	}
	return record, nil
}

// Upsert implements attendance.Repository. The punch list is replaced
// wholesale so the write is atomic per record.
func (a *attendanceRepository) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	punchesJSON, err := json.Marshal(record.Punches)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to encode punches: %w", err)
	}

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, punches, total_work_minutes, has_missed_punch,
			late_minutes, deducted_minutes, finalised_for_payroll, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			punches = EXCLUDED.punches,
			total_work_minutes = EXCLUDED.total_work_minutes,
			has_missed_punch = EXCLUDED.has_missed_punch,
			late_minutes = EXCLUDED.late_minutes,
			deducted_minutes = EXCLUDED.deducted_minutes,
			finalised_for_payroll = EXCLUDED.finalised_for_payroll,
			updated_at = EXCLUDED.updated_at
	`

	_, err = q.Exec(ctx, query,
		record.ID, record.EmployeeID, record.Date, punchesJSON,
		record.TotalWorkMinutes, record.HasMissedPunch,
		record.LateMinutes, record.DeductedMinutes,
		record.FinalisedForPayroll, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	return record, nil
}

// ListByEmployee implements attendance.Repository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, punches, total_work_minutes, has_missed_punch,
		       late_minutes, deducted_minutes, finalised_for_payroll, created_at, updated_at
		FROM attendance_records
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListWithMissedPunches implements attendance.Repository.
func (a *attendanceRepository) ListWithMissedPunches(ctx context.Context, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, date, punches, total_work_minutes, has_missed_punch,
		       late_minutes, deducted_minutes, finalised_for_payroll, created_at, updated_at
		FROM attendance_records
		WHERE has_missed_punch AND date BETWEEN $1 AND $2
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list records with missed punches: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]attendance.Record, error) {
	var records []attendance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetFinalised implements attendance.Repository.
func (a *attendanceRepository) SetFinalised(ctx context.Context, recordID string, finalised bool) error {
	q := GetQuerier(ctx, a.db)

	result, err := q.Exec(ctx, `
		UPDATE attendance_records SET finalised_for_payroll = $2, updated_at = NOW()
		WHERE id = $1
	`, recordID, finalised)
	if err != nil {
		return fmt.Errorf("failed to finalise attendance record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// MonthlySummary implements attendance.Repository.
func (a *attendanceRepository) MonthlySummary(ctx context.Context, employeeID string, from, to time.Time) (attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, a.db)

	summary := attendance.MonthlySummary{EmployeeID: employeeID}
	err := q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_work_minutes), 0)
		FROM attendance_records
		WHERE employee_id = $1 AND date >= $2 AND date < $3
	`, employeeID, from, to).Scan(&summary.DaysPresent, &summary.TotalWorkedMinutes)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to aggregate attendance: %w", err)
	}
	return summary, nil
}

type importRepository struct {
	db *database.DB
}

func NewImportRepository(db *database.DB) attendance.ImportRepository {
	return &importRepository{db: db}
}

// GetByChecksum implements attendance.ImportRepository.
func (r *importRepository) GetByChecksum(ctx context.Context, checksum string) (attendance.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	var batch attendance.ImportBatch
	err := q.QueryRow(ctx, `
		SELECT id, source, checksum, imported, skipped, created_at
		FROM import_batches
		WHERE checksum = $1
	`, checksum).Scan(&batch.ID, &batch.Source, &batch.Checksum, &batch.Imported, &batch.Skipped, &batch.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ImportBatch{}, attendance.ErrImportBatchNotFound
		}
		return attendance.ImportBatch{}, fmt.Errorf("failed to get import batch: %w", err)
	}
	return batch, nil
}

// Create implements attendance.ImportRepository.
func (r *importRepository) Create(ctx context.Context, batch attendance.ImportBatch) (attendance.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO import_batches (id, source, checksum, imported, skipped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, batch.ID, batch.Source, batch.Checksum, batch.Imported, batch.Skipped, batch.CreatedAt)
	if err != nil {
		return attendance.ImportBatch{}, fmt.Errorf("failed to create import batch: %w", err)
	}
	return batch, nil
}
