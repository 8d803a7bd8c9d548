package shift

import (
	"strings"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
)

// Definition is a static shift template referenced by assignments.
// StartTime/EndTime are "HH:MM" wall-clock strings; EndTime earlier than
// StartTime means the shift wraps past midnight.
type Definition struct {
	ID                          string
	Name                        string
	StartTime                   string
	EndTime                     string
	GraceInMinutes              int
	GraceOutMinutes             int
	RequiresApprovalForOvertime bool
	PunchPolicy                 attendance.PunchPolicy
}

// Window computes the shift's absolute start and end instants on the
// punch's calendar day. An end before the start rolls to the next day.
func (d Definition) Window(day time.Time) (start, end time.Time, err error) {
	start, err = atClock(day, d.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = atClock(day, d.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

type AssignmentScope string

const (
	ScopeEmployee   AssignmentScope = "employee"
	ScopeDepartment AssignmentScope = "department"
	ScopePosition   AssignmentScope = "position"
)

// Assignment binds a shift definition to an employee, department, or
// position for a date range. A nil EndDate means open-ended.
type Assignment struct {
	ID        string
	Scope     AssignmentScope
	ScopeID   string
	ShiftID   string
	StartDate time.Time
	EndDate   *time.Time
}

// CoversDate reports whether the assignment is active on the given day.
func (a Assignment) CoversDate(day time.Time) bool {
	if day.Before(a.StartDate) {
		return false
	}
	if a.EndDate != nil && day.After(*a.EndDate) {
		return false
	}
	return true
}

type HolidayType string

const (
	HolidayNational       HolidayType = "NATIONAL"
	HolidayOrganizational HolidayType = "ORGANIZATIONAL"
	HolidayWeeklyRest     HolidayType = "WEEKLY_REST"
)

type Holiday struct {
	ID        string
	Name      string
	Type      HolidayType
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
}

// CoversDate reports whether the holiday spans the given day. A nil
// EndDate means open-ended, which is how recurring weekly-rest entries
// are configured.
func (h Holiday) CoversDate(day time.Time) bool {
	if !h.Active || day.Before(h.StartDate) {
		return false
	}
	if h.EndDate != nil && day.After(*h.EndDate) {
		return false
	}
	return true
}

// Blocks reports whether the holiday blocks a punch on the given day.
// NATIONAL and ORGANIZATIONAL holidays always block while active.
// WEEKLY_REST blocks only when the holiday's name textually references the
// day's weekday name. That heuristic is inherited behavior, kept as-is
// pending product clarification.
func (h Holiday) Blocks(day time.Time) bool {
	if !h.CoversDate(day) {
		return false
	}
	if h.Type != HolidayWeeklyRest {
		return true
	}
	return strings.Contains(strings.ToLower(h.Name), strings.ToLower(day.Weekday().String()))
}
