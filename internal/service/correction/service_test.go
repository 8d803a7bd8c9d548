package correction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
	"github.com/workstream-hr/payroll-core-go/internal/repository/memory"
)

// captureNotifier records messages synchronously so tests can assert on
// them without the async delivery pipeline.
type captureNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *captureNotifier) Send(msg notification.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *captureNotifier) Close() {}

func (n *captureNotifier) sent() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Message, len(n.messages))
	copy(out, n.messages)
	return out
}

type correctionFixture struct {
	service     correction.Service
	corrections *memory.CorrectionRepository
	configs     *memory.CorrectionConfigRepository
	records     *memory.AttendanceRepository
	notifier    *captureNotifier
}

func newCorrectionFixture(t *testing.T) correctionFixture {
	t.Helper()
	corrections := memory.NewCorrectionRepository()
	configs := memory.NewCorrectionConfigRepository()
	records := memory.NewAttendanceRepository()
	notifier := &captureNotifier{}
	return correctionFixture{
		service:     NewCorrectionService(corrections, configs, records, notifier),
		corrections: corrections,
		configs:     configs,
		records:     records,
		notifier:    notifier,
	}
}

func (f correctionFixture) seedRecord(t *testing.T, employeeID string) attendance.Record {
	t.Helper()
	record := attendance.Record{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	saved, err := f.records.Upsert(context.Background(), record)
	require.NoError(t, err)
	return saved
}

func submitReq(employeeID, recordID string, minutes int) correction.SubmitRequest {
	return correction.SubmitRequest{
		EmployeeID:         employeeID,
		AttendanceRecordID: recordID,
		DurationMinutes:    minutes,
		Reason:             "forgot to clock out",
		LineManagerID:      "mgr-1",
	}
}

func TestCorrectionService_Submit_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	resp, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 120))
	require.NoError(t, err)

	assert.Equal(t, correction.StatusSubmitted, resp.Status)
	assert.Equal(t, correction.TypeAdd, resp.CorrectionType)
	require.Len(t, resp.ApprovalFlow, 1)
	assert.Equal(t, correction.RoleInitiator, resp.ApprovalFlow[0].Role)
	assert.Equal(t, "emp-1", resp.ApprovalFlow[0].By)

	events, err := f.corrections.ListEvents(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, correction.EventSubmitted, events[0].Kind)

	sent := f.notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"mgr-1"}, sent[0].Recipients)
}

func TestCorrectionService_Submit_StoresAppliesFromDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	appliesFrom := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	req := submitReq("emp-1", record.ID, 120)
	req.AppliesFromDate = &appliesFrom

	resp, err := f.service.Submit(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resp.AppliesFromDate)
	assert.Equal(t, "2026-03-08T00:00:00Z", *resp.AppliesFromDate)

	stored, err := f.corrections.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AppliesFromDate)
	assert.True(t, stored.AppliesFromDate.Equal(appliesFrom))
}

func TestCorrectionService_Submit_RecordMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-other")

	_, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 120))
	assert.ErrorIs(t, err, correction.ErrRecordMismatch)
}

func TestCorrectionService_Submit_RecordNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)

	_, err := f.service.Submit(ctx, submitReq("emp-1", "missing", 120))
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestCorrectionService_Submit_DefaultDurationLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	// 480 minutes is the ceiling when no duration config is active.
	_, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 480))
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, submitReq("emp-1", record.ID, 481))
	assert.ErrorIs(t, err, correction.ErrDurationExceedsLimit)
}

func TestCorrectionService_Submit_ConfiguredDurationLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	// Two consecutive days allow up to 2880 minutes.
	f.configs.SetActive(correction.DurationConfig{
		MaxConsecutiveDays: 2,
		AffectsPayroll:     true,
	})

	_, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 2880))
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, submitReq("emp-1", record.ID, 2881))
	assert.ErrorIs(t, err, correction.ErrDurationExceedsLimit)
}

func TestCorrectionService_Decide_ApproveFinalisesRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)

	resp, err := f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-1",
		Decision:     correction.StatusApproved,
	})
	require.NoError(t, err)

	assert.Equal(t, correction.StatusApproved, resp.Status)
	assert.True(t, resp.AppliedToPayroll)
	require.Len(t, resp.ApprovalFlow, 2)
	assert.Equal(t, correction.RoleLineManager, resp.ApprovalFlow[1].Role)

	stored, err := f.records.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, stored.FinalisedForPayroll)
}

func TestCorrectionService_Decide_ApplyToPayrollFalse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)

	apply := false
	resp, err := f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID:   submitted.ID,
		ApproverID:     "mgr-1",
		Decision:       correction.StatusApproved,
		ApplyToPayroll: &apply,
	})
	require.NoError(t, err)

	assert.False(t, resp.AppliedToPayroll)
	stored, err := f.records.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, stored.FinalisedForPayroll)
}

func TestCorrectionService_Decide_ConfigDisablesPayroll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	f.configs.SetActive(correction.DurationConfig{
		MaxConsecutiveDays: 1,
		AffectsPayroll:     false,
	})

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)

	resp, err := f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-1",
		Decision:     correction.StatusApproved,
	})
	require.NoError(t, err)
	assert.False(t, resp.AppliedToPayroll)
}

func TestCorrectionService_Decide_RejectRequiresReason(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-1",
		Decision:     correction.StatusRejected,
	})
	assert.ErrorIs(t, err, correction.ErrRejectionReasonRequired)

	reason := "timestamps do not match the terminal log"
	resp, err := f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID:    submitted.ID,
		ApproverID:      "mgr-1",
		Decision:        correction.StatusRejected,
		RejectionReason: &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, correction.StatusRejected, resp.Status)
	assert.Equal(t, &reason, resp.RejectionReason)
	assert.False(t, resp.AppliedToPayroll)
}

func TestCorrectionService_Decide_SecondDecisionRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-1",
		Decision:     correction.StatusApproved,
	})
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-2",
		Decision:     correction.StatusRejected,
	})
	assert.ErrorIs(t, err, correction.ErrAlreadyDecided)
}

func TestCorrectionService_Decide_AppendsAuditEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-1",
		Decision:     correction.StatusApproved,
	})
	require.NoError(t, err)

	events, err := f.corrections.ListEvents(ctx, submitted.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, correction.EventSubmitted, events[0].Kind)
	assert.Equal(t, correction.EventApproved, events[1].Kind)
	assert.Equal(t, "mgr-1", events[1].Actor)
}

func TestCorrectionService_PendingForManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, correction.SubmitRequest{
		EmployeeID:         "emp-1",
		AttendanceRecordID: record.ID,
		DurationMinutes:    30,
		Reason:             "late sync",
		LineManagerID:      "mgr-other",
	})
	require.NoError(t, err)

	pending, err := f.service.PendingForManager(ctx, "mgr-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)
}

func TestCorrectionService_ApprovedUnapplied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newCorrectionFixture(t)
	record := f.seedRecord(t, "emp-1")

	submitted, err := f.service.Submit(ctx, submitReq("emp-1", record.ID, 60))
	require.NoError(t, err)
	_, err = f.service.Decide(ctx, correction.DecideRequest{
		CorrectionID: submitted.ID,
		ApproverID:   "mgr-1",
		Decision:     correction.StatusApproved,
	})
	require.NoError(t, err)

	unapplied, err := f.service.ApprovedUnapplied(ctx)
	require.NoError(t, err)
	require.Len(t, unapplied, 1)
	assert.Equal(t, submitted.ID, unapplied[0].ID)

	require.NoError(t, f.corrections.MarkApplied(ctx, submitted.ID))

	unapplied, err = f.service.ApprovedUnapplied(ctx)
	require.NoError(t, err)
	assert.Empty(t, unapplied)
}
