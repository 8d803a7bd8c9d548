package attendance

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/shift"
)

// dayLocks serializes the read-modify-write of a single employee's daily
// record. Concurrent punches for the same (employee, date) take the same
// lock; everything else proceeds in parallel. Locks are striped over a
// fixed table so memory stays bounded no matter how many distinct
// (employee, day) pairs pass through the process.
type dayLocks struct {
	stripes [64]sync.Mutex
}

func newDayLocks() *dayLocks {
	return &dayLocks{}
}

func (d *dayLocks) get(employeeID string, day time.Time) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(employeeID))
	h.Write([]byte("|"))
	h.Write([]byte(day.Format("2006-01-02")))
	return &d.stripes[h.Sum32()%uint32(len(d.stripes))]
}

type AttendanceServiceImpl struct {
	attendance.Repository
	imports   attendance.ImportRepository
	validator shift.Validator
	locks     *dayLocks
}

func NewAttendanceService(
	repository attendance.Repository,
	imports attendance.ImportRepository,
	validator shift.Validator,
) attendance.Service {
	return &AttendanceServiceImpl{
		Repository: repository,
		imports:    imports,
		validator:  validator,
		locks:      newDayLocks(),
	}
}

// RecordPunch implements attendance.Service.
func (s *AttendanceServiceImpl) RecordPunch(ctx context.Context, req attendance.RecordPunchRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}
	if req.RoundingMode != "" && req.IntervalMinutes > 0 {
		ts = attendance.RoundTimestamp(ts, req.RoundingMode, req.IntervalMinutes)
	}

	day := attendance.DayKey(ts)

	lock := s.locks.get(req.EmployeeID, day)
	lock.Lock()
	defer lock.Unlock()

	if err := s.validator.ValidatePunch(ctx, req.EmployeeID, req.Type, ts); err != nil {
		return attendance.RecordResponse{}, err
	}

	record, err := s.loadOrCreate(ctx, req.EmployeeID, day)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if record.FinalisedForPayroll {
		return attendance.RecordResponse{}, attendance.ErrRecordFinalised
	}

	if req.Type == attendance.PunchIn && req.ExpectedCheckIn != nil && req.GracePeriodMinutes != nil {
		lateness := attendance.ComputeLateness(
			ts,
			req.ExpectedCheckIn.UTC(),
			*req.GracePeriodMinutes,
			req.LatenessThresholdMinutes,
			req.AutomaticDeductionMinutes,
		)
		record.LateMinutes = lateness.MinutesLate
		record.DeductedMinutes = lateness.DeductedMinutes
	}

	record.Punches = append(record.Punches, attendance.Punch{
		ID:         uuid.NewString(),
		Type:       req.Type,
		At:         ts,
		Location:   req.Location,
		TerminalID: req.TerminalID,
		DeviceID:   req.DeviceID,
	})
	record.SortPunches()

	policy, err := s.resolvePolicy(ctx, req, day)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	record.Recompute(policy)
	record.UpdatedAt = time.Now().UTC()

	saved, err := s.Repository.Upsert(ctx, record)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to persist attendance record: %w", err)
	}

	return toRecordResponse(saved), nil
}

func (s *AttendanceServiceImpl) loadOrCreate(ctx context.Context, employeeID string, day time.Time) (attendance.Record, error) {
	record, err := s.Repository.GetByEmployeeAndDate(ctx, employeeID, day)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.Record{}, fmt.Errorf("failed to load attendance record: %w", err)
	}
	return attendance.Record{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Date:       day,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// resolvePolicy falls back to the active shift's punch policy when the
// request does not carry one, then to MULTIPLE.
func (s *AttendanceServiceImpl) resolvePolicy(ctx context.Context, req attendance.RecordPunchRequest, day time.Time) (attendance.PunchPolicy, error) {
	if req.Policy != "" {
		return req.Policy, nil
	}
	resolved, err := s.validator.ResolveShift(ctx, req.EmployeeID, day)
	if err != nil {
		return "", err
	}
	if resolved != nil && resolved.Definition.PunchPolicy.Valid() {
		return resolved.Definition.PunchPolicy, nil
	}
	return attendance.PolicyMultiple, nil
}

// GetRecord implements attendance.Service.
func (s *AttendanceServiceImpl) GetRecord(ctx context.Context, employeeID string, date time.Time) (attendance.RecordResponse, error) {
	record, err := s.Repository.GetByEmployeeAndDate(ctx, employeeID, attendance.DayKey(date))
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return toRecordResponse(record), nil
}

// ListRecords implements attendance.Service.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.RecordResponse, error) {
	records, err := s.Repository.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toRecordResponse(record))
	}
	return responses, nil
}

func toRecordResponse(record attendance.Record) attendance.RecordResponse {
	punches := make([]attendance.PunchResponse, 0, len(record.Punches))
	for _, p := range record.Punches {
		punches = append(punches, attendance.PunchResponse{
			Type:     p.Type,
			At:       p.At.Format(time.RFC3339),
			Location: p.Location,
		})
	}
	return attendance.RecordResponse{
		ID:                  record.ID,
		EmployeeID:          record.EmployeeID,
		Date:                record.Date.Format("2006-01-02"),
		Punches:             punches,
		TotalWorkMinutes:    record.TotalWorkMinutes,
		HasMissedPunch:      record.HasMissedPunch,
		LateMinutes:         record.LateMinutes,
		DeductedMinutes:     record.DeductedMinutes,
		FinalisedForPayroll: record.FinalisedForPayroll,
	}
}
