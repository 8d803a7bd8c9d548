package employee

import "time"

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusTerminated Status = "TERMINATED"
)

type Employee struct {
	ID            string
	FullName      string
	Email         string
	EntityID      *string
	DepartmentID  *string
	PositionID    *string
	LineManagerID *string
	GradeID       *string
	BankName      *string
	BankAccount   *string
	Status        Status
	JoinedAt      time.Time
	TerminatedAt  *time.Time
}

// Active reports whether the employee should be included in payroll.
func (e Employee) Active() bool {
	return e.Status == StatusActive
}

// BelongsTo reports whether the employee sits under the given legal
// entity. An empty entity matches everyone.
func (e Employee) BelongsTo(entityID string) bool {
	if entityID == "" {
		return true
	}
	return e.EntityID != nil && *e.EntityID == entityID
}

// HasBankDetails reports whether a transfer destination is on file.
func (e Employee) HasBankDetails() bool {
	return e.BankName != nil && *e.BankName != "" &&
		e.BankAccount != nil && *e.BankAccount != ""
}
