package correction

import "time"

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Terminal reports whether the status admits no further decisions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Type string

const (
	TypeAdd    Type = "ADD"
	TypeDeduct Type = "DEDUCT"
)

type FlowRole string

const (
	RoleInitiator   FlowRole = "INITIATOR"
	RoleLineManager FlowRole = "LINE_MANAGER"
)

// FlowEntry is one step in a request's ordered decision log.
type FlowEntry struct {
	Role   FlowRole  `json:"role"`
	Status Status    `json:"status"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
	Note   *string   `json:"note,omitempty"`
}

// Request is an employee's claim that a day's attendance record needs
// adjustment. Lifecycle: SUBMITTED, then a single terminal decision.
// Escalation annotates but never changes status.
type Request struct {
	ID                 string
	EmployeeID         string
	AttendanceRecordID string
	DurationMinutes    int
	CorrectionType     Type
	Reason             string
	LineManagerID      string
	AppliesFromDate    *time.Time
	Status             Status
	ApprovalFlow       []FlowEntry
	AppliedToPayroll   bool
	RejectionReason    *string

	EscalatedAt      *time.Time
	EscalationReason *string
	PayrollCutoffAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Escalated reports whether the request has already been flagged.
func (r Request) Escalated() bool {
	return r.EscalatedAt != nil
}

// DurationConfig governs correction validation limits. Consumed read-only;
// CRUD lives outside this core.
type DurationConfig struct {
	ID                      string
	LeaveTypeID             string
	MaxConsecutiveDays      int
	MinNoticeDays           int
	RequiresManagerApproval bool
	AffectsPayroll          bool
	MaxRequestsPerMonth     int
}

// MaxDurationMinutes derives the per-request ceiling from the configured
// consecutive-day limit.
func (c DurationConfig) MaxDurationMinutes() int {
	return c.MaxConsecutiveDays * 24 * 60
}

// DefaultMaxDurationMinutes applies when no duration config exists.
const DefaultMaxDurationMinutes = 480

// EventKind tags entries in the append-only correction audit log.
type EventKind string

const (
	EventSubmitted EventKind = "SUBMITTED"
	EventApproved  EventKind = "APPROVED"
	EventRejected  EventKind = "REJECTED"
	EventEscalated EventKind = "ESCALATED"
	EventCutoffSet EventKind = "CUTOFF_SET"
)

// Event is one durable audit entry for a correction request. The log is
// append-only; escalation and cutoff metadata live here and in the
// request's structured fields, never folded into the reason text.
type Event struct {
	ID           string
	CorrectionID string
	Kind         EventKind
	Actor        string
	Detail       string
	At           time.Time
}
