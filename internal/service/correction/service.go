package correction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
	"github.com/workstream-hr/payroll-core-go/internal/pkg/validator"
)

type CorrectionServiceImpl struct {
	correction.Repository
	configs    correction.ConfigRepository
	attendance attendance.Repository
	notifier   notification.Service
}

func NewCorrectionService(
	repository correction.Repository,
	configs correction.ConfigRepository,
	attendanceRepository attendance.Repository,
	notifier notification.Service,
) correction.Service {
	return &CorrectionServiceImpl{
		Repository: repository,
		configs:    configs,
		attendance: attendanceRepository,
		notifier:   notifier,
	}
}

// Submit implements correction.Service.
func (s *CorrectionServiceImpl) Submit(ctx context.Context, req correction.SubmitRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	record, err := s.attendance.GetByID(ctx, req.AttendanceRecordID)
	if err != nil {
		return correction.Response{}, err
	}
	if record.EmployeeID != req.EmployeeID {
		return correction.Response{}, correction.ErrRecordMismatch
	}

	maxMinutes, _, err := s.activeLimits(ctx)
	if err != nil {
		return correction.Response{}, err
	}
	if req.DurationMinutes > maxMinutes {
		return correction.Response{}, correction.ErrDurationExceedsLimit
	}

	correctionType := req.CorrectionType
	if correctionType == "" {
		correctionType = correction.TypeAdd
	}

	now := time.Now().UTC()
	request := correction.Request{
		ID:                 uuid.NewString(),
		EmployeeID:         req.EmployeeID,
		AttendanceRecordID: req.AttendanceRecordID,
		DurationMinutes:    req.DurationMinutes,
		CorrectionType:     correctionType,
		Reason:             req.Reason,
		LineManagerID:      req.LineManagerID,
		AppliesFromDate:    req.AppliesFromDate,
		Status:             correction.StatusSubmitted,
		ApprovalFlow: []correction.FlowEntry{{
			Role:   correction.RoleInitiator,
			Status: correction.StatusSubmitted,
			By:     req.EmployeeID,
			At:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.Repository.Create(ctx, request)
	if err != nil {
		return correction.Response{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	s.appendEvent(ctx, created.ID, correction.EventSubmitted, req.EmployeeID,
		fmt.Sprintf("correction of %d minutes submitted", req.DurationMinutes))

	s.notifier.Send(notification.Message{
		Recipients:        []string{req.LineManagerID},
		Severity:          notification.SeverityInfo,
		Title:             "Correction request submitted",
		Body:              fmt.Sprintf("Employee %s requested a %d-minute %s correction.", req.EmployeeID, req.DurationMinutes, correctionType),
		RelatedEntityKind: "correction_request",
		RelatedEntityID:   created.ID,
	})

	return toResponse(created), nil
}

// Decide implements correction.Service. A request accepts exactly one
// decision; anything after that fails with a conflict.
func (s *CorrectionServiceImpl) Decide(ctx context.Context, req correction.DecideRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	request, err := s.Repository.GetByID(ctx, req.CorrectionID)
	if err != nil {
		return correction.Response{}, err
	}
	if request.Status.Terminal() {
		return correction.Response{}, correction.ErrAlreadyDecided
	}

	role := req.ApproverRole
	if role == "" {
		role = correction.RoleLineManager
	}

	now := time.Now().UTC()
	var note *string

	switch req.Decision {
	case correction.StatusRejected:
		if req.RejectionReason == nil || validator.IsEmpty(*req.RejectionReason) {
			return correction.Response{}, correction.ErrRejectionReasonRequired
		}
		request.Status = correction.StatusRejected
		request.RejectionReason = req.RejectionReason
		request.AppliedToPayroll = false
		note = req.RejectionReason

	case correction.StatusApproved:
		_, affects, err := s.activeLimits(ctx)
		if err != nil {
			return correction.Response{}, err
		}
		request.Status = correction.StatusApproved
		request.AppliedToPayroll = (req.ApplyToPayroll == nil || *req.ApplyToPayroll) && affects

		if request.AppliedToPayroll {
			if err := s.attendance.SetFinalised(ctx, request.AttendanceRecordID, true); err != nil {
				return correction.Response{}, fmt.Errorf("failed to finalise attendance record: %w", err)
			}
		}
	}

	request.ApprovalFlow = append(request.ApprovalFlow, correction.FlowEntry{
		Role:   role,
		Status: req.Decision,
		By:     req.ApproverID,
		At:     now,
		Note:   note,
	})
	request.UpdatedAt = now

	if err := s.Repository.Update(ctx, request); err != nil {
		return correction.Response{}, fmt.Errorf("failed to update correction request: %w", err)
	}

	eventKind := correction.EventApproved
	if req.Decision == correction.StatusRejected {
		eventKind = correction.EventRejected
	}
	s.appendEvent(ctx, request.ID, eventKind, req.ApproverID, string(req.Decision))

	s.notifier.Send(notification.Message{
		Recipients:        []string{request.EmployeeID},
		Severity:          notification.SeverityInfo,
		Title:             "Correction request decided",
		Body:              fmt.Sprintf("Your correction request was %s.", request.Status),
		RelatedEntityKind: "correction_request",
		RelatedEntityID:   request.ID,
	})

	return toResponse(request), nil
}

// Get implements correction.Service.
func (s *CorrectionServiceImpl) Get(ctx context.Context, id string) (correction.Response, error) {
	request, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return correction.Response{}, err
	}
	return toResponse(request), nil
}

// List implements correction.Service.
func (s *CorrectionServiceImpl) List(ctx context.Context, filter correction.Filter) ([]correction.Response, error) {
	requests, err := s.Repository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}
	return toResponses(requests), nil
}

// PendingForManager implements correction.Service.
func (s *CorrectionServiceImpl) PendingForManager(ctx context.Context, managerID string) ([]correction.Response, error) {
	status := correction.StatusSubmitted
	requests, err := s.Repository.List(ctx, correction.Filter{
		LineManagerID: &managerID,
		Status:        &status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending correction requests: %w", err)
	}
	return toResponses(requests), nil
}

// ApprovedUnapplied implements correction.Service.
func (s *CorrectionServiceImpl) ApprovedUnapplied(ctx context.Context) ([]correction.Response, error) {
	requests, err := s.Repository.ListApprovedUnapplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unapplied correction requests: %w", err)
	}
	return toResponses(requests), nil
}

// activeLimits resolves the configured duration ceiling and payroll
// applicability, falling back to the defaults when nothing is
// configured.
func (s *CorrectionServiceImpl) activeLimits(ctx context.Context) (maxMinutes int, affectsPayroll bool, err error) {
	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		if errors.Is(err, correction.ErrNoDurationConfig) {
			return correction.DefaultMaxDurationMinutes, true, nil
		}
		return 0, false, fmt.Errorf("failed to load duration config: %w", err)
	}
	return cfg.MaxDurationMinutes(), cfg.AffectsPayroll, nil
}

// appendEvent writes to the audit log. Audit failures are logged by the
// repository layer; they never fail the primary operation.
func (s *CorrectionServiceImpl) appendEvent(ctx context.Context, correctionID string, kind correction.EventKind, actor, detail string) {
	_ = s.Repository.AppendEvent(ctx, correction.Event{
		ID:           uuid.NewString(),
		CorrectionID: correctionID,
		Kind:         kind,
		Actor:        actor,
		Detail:       detail,
		At:           time.Now().UTC(),
	})
}

func toResponse(request correction.Request) correction.Response {
	return correction.Response{
		ID:                 request.ID,
		EmployeeID:         request.EmployeeID,
		AttendanceRecordID: request.AttendanceRecordID,
		DurationMinutes:    request.DurationMinutes,
		CorrectionType:     request.CorrectionType,
		Reason:             request.Reason,
		LineManagerID:      request.LineManagerID,
		AppliesFromDate:    timePtrToString(request.AppliesFromDate),
		Status:             request.Status,
		ApprovalFlow:       request.ApprovalFlow,
		AppliedToPayroll:   request.AppliedToPayroll,
		RejectionReason:    request.RejectionReason,
		EscalatedAt:        timePtrToString(request.EscalatedAt),
		EscalationReason:   request.EscalationReason,
		PayrollCutoffAt:    timePtrToString(request.PayrollCutoffAt),
		CreatedAt:          request.CreatedAt.Format(time.RFC3339),
	}
}

func toResponses(requests []correction.Request) []correction.Response {
	responses := make([]correction.Response, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toResponse(request))
	}
	return responses
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
