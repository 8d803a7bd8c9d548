package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
)

// AttendanceRepository is a mutex-guarded in-memory implementation used
// by tests and local runs.
type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]attendance.Record
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{records: make(map[string]attendance.Record)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.UTC().Format("2006-01-02")
}

func (r *AttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[dayKey(employeeID, date)]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return cloneRecord(record), nil
}

func (r *AttendanceRepository) GetByID(_ context.Context, id string) (attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.ID == id {
			return cloneRecord(record), nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (r *AttendanceRepository) Upsert(_ context.Context, record attendance.Record) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[dayKey(record.EmployeeID, record.Date)] = cloneRecord(record)
	return record, nil
}

func (r *AttendanceRepository) ListByEmployee(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []attendance.Record
	for _, record := range r.records {
		if record.EmployeeID != employeeID {
			continue
		}
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		out = append(out, cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *AttendanceRepository) ListWithMissedPunches(_ context.Context, from, to time.Time) ([]attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []attendance.Record
	for _, record := range r.records {
		if !record.HasMissedPunch {
			continue
		}
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		out = append(out, cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *AttendanceRepository) SetFinalised(_ context.Context, recordID string, finalised bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, record := range r.records {
		if record.ID == recordID {
			record.FinalisedForPayroll = finalised
			r.records[key] = record
			return nil
		}
	}
	return attendance.ErrRecordNotFound
}

func (r *AttendanceRepository) MonthlySummary(_ context.Context, employeeID string, from, to time.Time) (attendance.MonthlySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary := attendance.MonthlySummary{EmployeeID: employeeID}
	for _, record := range r.records {
		if record.EmployeeID != employeeID {
			continue
		}
		if record.Date.Before(from) || !record.Date.Before(to) {
			continue
		}
		summary.DaysPresent++
		summary.TotalWorkedMinutes += record.TotalWorkMinutes
	}
	return summary, nil
}

func cloneRecord(record attendance.Record) attendance.Record {
	punches := make([]attendance.Punch, len(record.Punches))
	copy(punches, record.Punches)
	record.Punches = punches
	return record
}

// ImportRepository stores bulk-import markers keyed by checksum.
type ImportRepository struct {
	mu      sync.RWMutex
	batches map[string]attendance.ImportBatch
}

func NewImportRepository() *ImportRepository {
	return &ImportRepository{batches: make(map[string]attendance.ImportBatch)}
}

func (r *ImportRepository) GetByChecksum(_ context.Context, checksum string) (attendance.ImportBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.batches[checksum]
	if !ok {
		return attendance.ImportBatch{}, attendance.ErrImportBatchNotFound
	}
	return batch, nil
}

func (r *ImportRepository) Create(_ context.Context, batch attendance.ImportBatch) (attendance.ImportBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[batch.Checksum]; ok {
		return attendance.ImportBatch{}, attendance.ErrImportAlreadyProcessed
	}
	r.batches[batch.Checksum] = batch
	return batch, nil
}
