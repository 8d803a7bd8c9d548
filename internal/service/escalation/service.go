package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workstream-hr/payroll-core-go/internal/domain/correction"
	"github.com/workstream-hr/payroll-core-go/internal/domain/notification"
)

const (
	// DefaultAgeThreshold escalates requests that have sat undecided for
	// a full day.
	DefaultAgeThreshold = 24 * time.Hour

	// DefaultCutoffWindow escalates requests whose payroll cutoff is
	// this close.
	DefaultCutoffWindow = 48 * time.Hour
)

// Report summarizes one escalation pass.
type Report struct {
	Scanned   int `json:"scanned"`
	Escalated int `json:"escalated"`
}

// Monitor scans undecided correction requests and escalates the stale
// ones. Safe to re-run: already-escalated requests are skipped.
type Monitor interface {
	Run(ctx context.Context, now time.Time) (Report, error)

	// SetCutoff stamps all SUBMITTED requests created in [from, to] with
	// the payroll cutoff, then immediately runs an escalation pass.
	SetCutoff(ctx context.Context, from, to, cutoffAt time.Time) (Report, error)
}

type MonitorImpl struct {
	corrections  correction.Repository
	notifier     notification.Service
	ageThreshold time.Duration
	cutoffWindow time.Duration
}

func NewMonitor(
	corrections correction.Repository,
	notifier notification.Service,
	ageThreshold, cutoffWindow time.Duration,
) Monitor {
	if ageThreshold <= 0 {
		ageThreshold = DefaultAgeThreshold
	}
	if cutoffWindow <= 0 {
		cutoffWindow = DefaultCutoffWindow
	}
	return &MonitorImpl{
		corrections:  corrections,
		notifier:     notifier,
		ageThreshold: ageThreshold,
		cutoffWindow: cutoffWindow,
	}
}

// Run implements Monitor. Partial completion is acceptable; a failed
// update is logged and the scan continues, so a re-run picks up what was
// missed.
func (m *MonitorImpl) Run(ctx context.Context, now time.Time) (Report, error) {
	status := correction.StatusSubmitted
	requests, err := m.corrections.List(ctx, correction.Filter{Status: &status})
	if err != nil {
		return Report{}, fmt.Errorf("failed to list submitted correction requests: %w", err)
	}

	report := Report{Scanned: len(requests)}
	for _, request := range requests {
		if request.Escalated() {
			continue
		}
		reason, ok := m.escalationReason(request, now)
		if !ok {
			continue
		}
		if err := m.escalate(ctx, request, reason, now); err != nil {
			slog.Error("failed to escalate correction request",
				"correction_id", request.ID,
				"error", err,
			)
			continue
		}
		report.Escalated++
	}
	return report, nil
}

// escalationReason decides whether a request needs escalation and
// returns the human-readable reason.
func (m *MonitorImpl) escalationReason(request correction.Request, now time.Time) (string, bool) {
	if age := now.Sub(request.CreatedAt); age >= m.ageThreshold {
		return fmt.Sprintf("pending for %d hours without a decision", int(age.Hours())), true
	}
	if request.PayrollCutoffAt != nil {
		cutoff := *request.PayrollCutoffAt
		if now.Before(cutoff) && cutoff.Sub(now) <= m.cutoffWindow {
			return fmt.Sprintf("payroll cutoff at %s is approaching", cutoff.Format(time.RFC3339)), true
		}
	}
	return "", false
}

func (m *MonitorImpl) escalate(ctx context.Context, request correction.Request, reason string, now time.Time) error {
	request.EscalatedAt = &now
	request.EscalationReason = &reason
	request.UpdatedAt = now

	if err := m.corrections.Update(ctx, request); err != nil {
		return fmt.Errorf("failed to update correction request: %w", err)
	}

	if err := m.corrections.AppendEvent(ctx, correction.Event{
		ID:           uuid.NewString(),
		CorrectionID: request.ID,
		Kind:         correction.EventEscalated,
		Actor:        "escalation-monitor",
		Detail:       reason,
		At:           now,
	}); err != nil {
		slog.Warn("failed to append escalation audit event",
			"correction_id", request.ID,
			"error", err,
		)
	}

	recipient := request.LineManagerID
	if recipient == "" {
		recipient = request.EmployeeID
	}
	m.notifier.Send(notification.Message{
		Recipients:        []string{recipient},
		Severity:          notification.SeverityWarning,
		Title:             "Correction request needs attention",
		Body:              fmt.Sprintf("Correction request from employee %s: %s.", request.EmployeeID, reason),
		RelatedEntityKind: "correction_request",
		RelatedEntityID:   request.ID,
	})

	return nil
}

// SetCutoff implements Monitor.
func (m *MonitorImpl) SetCutoff(ctx context.Context, from, to, cutoffAt time.Time) (Report, error) {
	requests, err := m.corrections.ListSubmittedInPeriod(ctx, from, to)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list correction requests in period: %w", err)
	}

	now := time.Now().UTC()
	for _, request := range requests {
		request.PayrollCutoffAt = &cutoffAt
		request.UpdatedAt = now
		if err := m.corrections.Update(ctx, request); err != nil {
			slog.Error("failed to stamp payroll cutoff",
				"correction_id", request.ID,
				"error", err,
			)
			continue
		}
		if err := m.corrections.AppendEvent(ctx, correction.Event{
			ID:           uuid.NewString(),
			CorrectionID: request.ID,
			Kind:         correction.EventCutoffSet,
			Actor:        "escalation-monitor",
			Detail:       fmt.Sprintf("payroll cutoff set to %s", cutoffAt.Format(time.RFC3339)),
			At:           now,
		}); err != nil {
			slog.Warn("failed to append cutoff audit event",
				"correction_id", request.ID,
				"error", err,
			)
		}
	}

	return m.Run(ctx, now)
}
