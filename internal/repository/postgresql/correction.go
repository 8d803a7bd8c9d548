package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/database"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.Repository {
	return &correctionRepository{db: db}
}

const correctionColumns = `
	id, employee_id, attendance_record_id, duration_minutes, correction_type,
	reason, line_manager_id, applies_from_date, status, approval_flow,
	applied_to_payroll, rejection_reason, escalated_at, escalation_reason,
	payroll_cutoff_at, created_at, updated_at
`

// Create implements correction.Repository.
func (r *correctionRepository) Create(ctx context.Context, req correction.Request) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	flowJSON, err := json.Marshal(req.ApprovalFlow)
	if err != nil {
		return correction.Request{}, fmt.Errorf("failed to encode approval flow: %w", err)
	}

	query := `
		INSERT INTO correction_requests (` + correctionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = q.Exec(ctx, query,
		req.ID, req.EmployeeID, req.AttendanceRecordID, req.DurationMinutes, req.CorrectionType,
		req.Reason, req.LineManagerID, req.AppliesFromDate, req.Status, flowJSON,
		req.AppliedToPayroll, req.RejectionReason, req.EscalatedAt, req.EscalationReason,
		req.PayrollCutoffAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return correction.Request{}, fmt.Errorf("failed to create correction request: %w", err)
	}
	return req, nil
}

// GetByID implements correction.Repository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	row := q.QueryRow(ctx, `
		SELECT `+correctionColumns+`
		FROM correction_requests
		WHERE id = $1
	`, id)

	return scanCorrection(row)
}

func scanCorrection(row rowScanner) (correction.Request, error) {
	var req correction.Request
	var flowJSON []byte

	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.AttendanceRecordID, &req.DurationMinutes, &req.CorrectionType,
		&req.Reason, &req.LineManagerID, &req.AppliesFromDate, &req.Status, &flowJSON,
		&req.AppliedToPayroll, &req.RejectionReason, &req.EscalatedAt, &req.EscalationReason,
		&req.PayrollCutoffAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.Request{}, correction.ErrRequestNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to get correction request: %w", err)
	}

	if err := json.Unmarshal(flowJSON, &req.ApprovalFlow); err != nil {
		return correction.Request{}, fmt.Errorf("failed to decode approval flow: %w", err)
	}
	return req, nil
}

// Update implements correction.Repository.
func (r *correctionRepository) Update(ctx context.Context, req correction.Request) error {
	q := GetQuerier(ctx, r.db)

	flowJSON, err := json.Marshal(req.ApprovalFlow)
	if err != nil {
		return fmt.Errorf("failed to encode approval flow: %w", err)
	}

	result, err := q.Exec(ctx, `
		UPDATE correction_requests SET
			status = $2, approval_flow = $3, applied_to_payroll = $4,
			rejection_reason = $5, escalated_at = $6, escalation_reason = $7,
			payroll_cutoff_at = $8, updated_at = $9
		WHERE id = $1
	`,
		req.ID, req.Status, flowJSON, req.AppliedToPayroll,
		req.RejectionReason, req.EscalatedAt, req.EscalationReason,
		req.PayrollCutoffAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update correction request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return correction.ErrRequestNotFound
	}
	return nil
}

// List implements correction.Repository.
func (r *correctionRepository) List(ctx context.Context, filter correction.Filter) ([]correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != nil {
		conditions = append(conditions, "employee_id = "+arg(*filter.EmployeeID))
	}
	if filter.LineManagerID != nil {
		conditions = append(conditions, "line_manager_id = "+arg(*filter.LineManagerID))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(*filter.Status))
	}
	if filter.From != nil {
		conditions = append(conditions, "created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "created_at <= "+arg(*filter.To))
	}

	query := "SELECT " + correctionColumns + " FROM correction_requests"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	defer rows.Close()

	return collectCorrections(rows)
}

// ListSubmittedInPeriod implements correction.Repository.
func (r *correctionRepository) ListSubmittedInPeriod(ctx context.Context, from, to time.Time) ([]correction.Request, error) {
	status := correction.StatusSubmitted
	return r.List(ctx, correction.Filter{Status: &status, From: &from, To: &to})
}

// ListApprovedUnapplied implements correction.Repository.
func (r *correctionRepository) ListApprovedUnapplied(ctx context.Context) ([]correction.Request, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+correctionColumns+`
		FROM correction_requests
		WHERE status = 'APPROVED' AND applied_to_payroll AND NOT payroll_picked_up
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unapplied correction requests: %w", err)
	}
	defer rows.Close()

	return collectCorrections(rows)
}

// MarkApplied implements correction.Repository.
func (r *correctionRepository) MarkApplied(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `
		UPDATE correction_requests SET payroll_picked_up = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark correction request applied: %w", err)
	}
	if result.RowsAffected() == 0 {
		return correction.ErrRequestNotFound
	}
	return nil
}

func collectCorrections(rows pgx.Rows) ([]correction.Request, error) {
	var requests []correction.Request
	for rows.Next() {
		req, err := scanCorrection(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// AppendEvent implements correction.Repository. The event log is
// append-only.
func (r *correctionRepository) AppendEvent(ctx context.Context, event correction.Event) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO correction_events (id, correction_id, kind, actor, detail, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.CorrectionID, event.Kind, event.Actor, event.Detail, event.At)
	if err != nil {
		return fmt.Errorf("failed to append correction event: %w", err)
	}
	return nil
}

// ListEvents implements correction.Repository.
func (r *correctionRepository) ListEvents(ctx context.Context, correctionID string) ([]correction.Event, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, correction_id, kind, actor, detail, at
		FROM correction_events
		WHERE correction_id = $1
		ORDER BY at
	`, correctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction events: %w", err)
	}
	defer rows.Close()

	var events []correction.Event
	for rows.Next() {
		var e correction.Event
		if err := rows.Scan(&e.ID, &e.CorrectionID, &e.Kind, &e.Actor, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan correction event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type correctionConfigRepository struct {
	db *database.DB
}

func NewCorrectionConfigRepository(db *database.DB) correction.ConfigRepository {
	return &correctionConfigRepository{db: db}
}

// GetActive implements correction.ConfigRepository.
func (r *correctionConfigRepository) GetActive(ctx context.Context) (correction.DurationConfig, error) {
	q := GetQuerier(ctx, r.db)

	var cfg correction.DurationConfig
	err := q.QueryRow(ctx, `
		SELECT id, leave_type_id, max_consecutive_days, min_notice_days,
		       requires_manager_approval, affects_payroll, max_requests_per_month
		FROM permission_duration_configs
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(
		&cfg.ID, &cfg.LeaveTypeID, &cfg.MaxConsecutiveDays, &cfg.MinNoticeDays,
		&cfg.RequiresManagerApproval, &cfg.AffectsPayroll, &cfg.MaxRequestsPerMonth,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.DurationConfig{}, correction.ErrNoDurationConfig
		}
		return correction.DurationConfig{}, fmt.Errorf("failed to get duration config: %w", err)
	}
	return cfg, nil
}
