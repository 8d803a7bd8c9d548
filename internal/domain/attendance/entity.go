package attendance

import (
	"math"
	"sort"
	"time"
)

type PunchType string

const (
	PunchIn  PunchType = "IN"
	PunchOut PunchType = "OUT"
)

// PunchPolicy selects how a day's punches are reduced to worked minutes.
type PunchPolicy string

const (
	PolicyMultiple  PunchPolicy = "MULTIPLE"
	PolicyFirstLast PunchPolicy = "FIRST_LAST"
	PolicyOnlyFirst PunchPolicy = "ONLY_FIRST"
)

func (p PunchPolicy) Valid() bool {
	switch p {
	case PolicyMultiple, PolicyFirstLast, PolicyOnlyFirst:
		return true
	}
	return false
}

type RoundingMode string

const (
	RoundNearest RoundingMode = "nearest"
	RoundCeil    RoundingMode = "ceil"
	RoundFloor   RoundingMode = "floor"
)

func (m RoundingMode) Valid() bool {
	switch m {
	case RoundNearest, RoundCeil, RoundFloor:
		return true
	}
	return false
}

// Punch is a single clock event. Immutable once recorded.
type Punch struct {
	ID         string
	Type       PunchType
	At         time.Time
	Location   *string
	TerminalID *string
	DeviceID   *string
}

// Record is one employee's attendance for one calendar day. It is created
// on the first punch of the day and mutated on each subsequent punch until
// finalised for payroll.
type Record struct {
	ID                  string
	EmployeeID          string
	Date                time.Time
	Punches             []Punch
	TotalWorkMinutes    int
	HasMissedPunch      bool
	LateMinutes         int
	DeductedMinutes     int
	FinalisedForPayroll bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SortPunches orders the record's punches by timestamp, earliest first.
func (r *Record) SortPunches() {
	sort.SliceStable(r.Punches, func(i, j int) bool {
		return r.Punches[i].At.Before(r.Punches[j].At)
	})
}

// Recompute derives TotalWorkMinutes and HasMissedPunch from the punch
// list under the given policy, then applies the record's lateness
// deduction. FIRST_LAST and ONLY_FIRST also prune the punch list.
// Punches must already be sorted.
func (r *Record) Recompute(policy PunchPolicy) {
	switch policy {
	case PolicyFirstLast:
		r.recomputeFirstLast()
	case PolicyOnlyFirst:
		r.recomputeOnlyFirst()
	default:
		r.recomputeMultiple()
	}

	r.TotalWorkMinutes -= r.DeductedMinutes
	if r.TotalWorkMinutes < 0 {
		r.TotalWorkMinutes = 0
	}
}

// recomputeMultiple walks punches pairwise: each IN immediately followed
// by an OUT contributes its span; any unpaired punch flags a missed punch
// and contributes nothing.
func (r *Record) recomputeMultiple() {
	total := 0
	missed := false

	i := 0
	for i < len(r.Punches) {
		if r.Punches[i].Type == PunchIn && i+1 < len(r.Punches) && r.Punches[i+1].Type == PunchOut {
			total += minutesBetween(r.Punches[i].At, r.Punches[i+1].At)
			i += 2
			continue
		}
		// IN with no following OUT, or OUT with no preceding IN
		missed = true
		i++
	}

	r.TotalWorkMinutes = total
	r.HasMissedPunch = missed
}

// recomputeFirstLast reduces the record to the earliest IN and latest OUT.
func (r *Record) recomputeFirstLast() {
	var firstIn, lastOut *Punch
	for i := range r.Punches {
		p := &r.Punches[i]
		switch p.Type {
		case PunchIn:
			if firstIn == nil || p.At.Before(firstIn.At) {
				firstIn = p
			}
		case PunchOut:
			if lastOut == nil || p.At.After(lastOut.At) {
				lastOut = p
			}
		}
	}

	if firstIn == nil || lastOut == nil {
		r.TotalWorkMinutes = 0
		r.HasMissedPunch = true
		return
	}

	r.TotalWorkMinutes = minutesBetween(firstIn.At, lastOut.At)
	r.HasMissedPunch = false
	r.Punches = []Punch{*firstIn, *lastOut}
}

// recomputeOnlyFirst keeps only the earliest punch of the day.
func (r *Record) recomputeOnlyFirst() {
	if len(r.Punches) > 1 {
		r.Punches = r.Punches[:1]
	}
	r.TotalWorkMinutes = 0
	r.HasMissedPunch = true
}

func minutesBetween(from, to time.Time) int {
	mins := int(math.Round(to.Sub(from).Minutes()))
	if mins < 0 {
		return 0
	}
	return mins
}

// RoundTimestamp snaps t to the given minute interval. Rounding an
// already-rounded timestamp is a no-op.
func RoundTimestamp(t time.Time, mode RoundingMode, intervalMinutes int) time.Time {
	if intervalMinutes <= 0 {
		return t
	}

	interval := time.Duration(intervalMinutes) * time.Minute
	truncated := t.Truncate(interval)
	if truncated.Equal(t) {
		return t
	}

	switch mode {
	case RoundCeil:
		return truncated.Add(interval)
	case RoundFloor:
		return truncated
	default: // nearest
		if t.Sub(truncated) >= interval/2 {
			return truncated.Add(interval)
		}
		return truncated
	}
}

// Lateness captures the outcome of a check-in measured against an
// expected time under a grace period.
type Lateness struct {
	MinutesLate     int
	IsLate          bool
	DeductedMinutes int
}

// ComputeLateness measures actual against expected. The automatic
// deduction only applies once lateness exceeds both the grace period and
// the deduction threshold.
func ComputeLateness(actual, expected time.Time, graceMinutes, thresholdMinutes, deductionMinutes int) Lateness {
	minutesLate := int(math.Round(actual.Sub(expected).Minutes()))
	if minutesLate < 0 {
		minutesLate = 0
	}

	l := Lateness{MinutesLate: minutesLate}
	l.IsLate = minutesLate > graceMinutes
	if l.IsLate && minutesLate > thresholdMinutes {
		l.DeductedMinutes = deductionMinutes
	}
	return l
}

// DayKey normalizes a timestamp to its calendar day in UTC, the key under
// which attendance records are stored.
func DayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthlySummary is the aggregate the payroll pipeline reads: how many
// days the employee showed up and how many minutes they worked.
type MonthlySummary struct {
	EmployeeID         string
	DaysPresent        int
	TotalWorkedMinutes int
}
