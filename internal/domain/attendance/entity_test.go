package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func punch(pt PunchType, hour, min int) Punch {
	return Punch{Type: pt, At: day(hour, min)}
}

func TestRecord_Recompute_MultiplePairs(t *testing.T) {
	t.Parallel()

	r := Record{Punches: []Punch{
		punch(PunchIn, 8, 0),
		punch(PunchOut, 12, 0),
		punch(PunchIn, 13, 0),
		punch(PunchOut, 17, 0),
	}}
	r.Recompute(PolicyMultiple)

	assert.Equal(t, 480, r.TotalWorkMinutes)
	assert.False(t, r.HasMissedPunch)
}

func TestRecord_Recompute_MultipleSinglePair(t *testing.T) {
	t.Parallel()

	r := Record{Punches: []Punch{
		punch(PunchIn, 8, 0),
		punch(PunchOut, 12, 0),
	}}
	r.Recompute(PolicyMultiple)

	assert.Equal(t, 240, r.TotalWorkMinutes)
	assert.False(t, r.HasMissedPunch)
}

func TestRecord_Recompute_MultipleUnpairedIn(t *testing.T) {
	t.Parallel()

	// Two consecutive INs never pair, so the day yields nothing.
	r := Record{Punches: []Punch{
		punch(PunchIn, 8, 0),
		punch(PunchIn, 9, 0),
	}}
	r.Recompute(PolicyMultiple)

	assert.Equal(t, 0, r.TotalWorkMinutes)
	assert.True(t, r.HasMissedPunch)
}

func TestRecord_Recompute_MultipleDanglingOut(t *testing.T) {
	t.Parallel()

	r := Record{Punches: []Punch{
		punch(PunchOut, 8, 0),
		punch(PunchIn, 9, 0),
		punch(PunchOut, 10, 30),
	}}
	r.Recompute(PolicyMultiple)

	assert.Equal(t, 90, r.TotalWorkMinutes)
	assert.True(t, r.HasMissedPunch)
}

func TestRecord_Recompute_FirstLast(t *testing.T) {
	t.Parallel()

	// Breaks in the middle are ignored; only the span between the
	// earliest IN and the latest OUT counts.
	r := Record{Punches: []Punch{
		punch(PunchIn, 8, 1),
		punch(PunchOut, 12, 0),
		punch(PunchIn, 13, 0),
		punch(PunchOut, 17, 30),
	}}
	r.Recompute(PolicyFirstLast)

	assert.Equal(t, 569, r.TotalWorkMinutes)
	assert.False(t, r.HasMissedPunch)
	assert.Len(t, r.Punches, 2)
	assert.Equal(t, day(8, 1), r.Punches[0].At)
	assert.Equal(t, day(17, 30), r.Punches[1].At)
}

func TestRecord_Recompute_FirstLastMissingOut(t *testing.T) {
	t.Parallel()

	r := Record{Punches: []Punch{punch(PunchIn, 8, 0)}}
	r.Recompute(PolicyFirstLast)

	assert.Equal(t, 0, r.TotalWorkMinutes)
	assert.True(t, r.HasMissedPunch)
}

func TestRecord_Recompute_OnlyFirst(t *testing.T) {
	t.Parallel()

	r := Record{Punches: []Punch{
		punch(PunchIn, 8, 0),
		punch(PunchOut, 17, 0),
	}}
	r.Recompute(PolicyOnlyFirst)

	assert.Equal(t, 0, r.TotalWorkMinutes)
	assert.True(t, r.HasMissedPunch)
	assert.Len(t, r.Punches, 1)
	assert.Equal(t, day(8, 0), r.Punches[0].At)
}

func TestRecord_Recompute_AppliesDeduction(t *testing.T) {
	t.Parallel()

	r := Record{
		DeductedMinutes: 30,
		Punches: []Punch{
			punch(PunchIn, 8, 0),
			punch(PunchOut, 12, 0),
		},
	}
	r.Recompute(PolicyMultiple)

	assert.Equal(t, 210, r.TotalWorkMinutes)
}

func TestRecord_Recompute_DeductionNeverNegative(t *testing.T) {
	t.Parallel()

	r := Record{
		DeductedMinutes: 600,
		Punches: []Punch{
			punch(PunchIn, 8, 0),
			punch(PunchOut, 9, 0),
		},
	}
	r.Recompute(PolicyMultiple)

	assert.Equal(t, 0, r.TotalWorkMinutes)
}

func TestRoundTimestamp_Modes(t *testing.T) {
	t.Parallel()

	at := day(8, 7)

	assert.Equal(t, day(8, 0), RoundTimestamp(at, RoundNearest, 15))
	assert.Equal(t, day(8, 15), RoundTimestamp(at, RoundCeil, 15))
	assert.Equal(t, day(8, 0), RoundTimestamp(at, RoundFloor, 15))

	assert.Equal(t, day(8, 15), RoundTimestamp(day(8, 8), RoundNearest, 15))
}

func TestRoundTimestamp_Idempotent(t *testing.T) {
	t.Parallel()

	for _, mode := range []RoundingMode{RoundNearest, RoundCeil, RoundFloor} {
		once := RoundTimestamp(day(8, 7), mode, 15)
		twice := RoundTimestamp(once, mode, 15)
		assert.Equal(t, once, twice, "mode %s", mode)
	}
}

func TestRoundTimestamp_ZeroInterval(t *testing.T) {
	t.Parallel()

	at := day(8, 7)
	assert.Equal(t, at, RoundTimestamp(at, RoundNearest, 0))
}

func TestComputeLateness(t *testing.T) {
	t.Parallel()

	expected := day(9, 0)

	tests := []struct {
		name      string
		actual    time.Time
		grace     int
		threshold int
		deduction int
		want      Lateness
	}{
		{
			name:   "on time",
			actual: day(9, 0),
			grace:  5, threshold: 15, deduction: 30,
			want: Lateness{MinutesLate: 0, IsLate: false, DeductedMinutes: 0},
		},
		{
			name:   "within grace",
			actual: day(9, 5),
			grace:  5, threshold: 15, deduction: 30,
			want: Lateness{MinutesLate: 5, IsLate: false, DeductedMinutes: 0},
		},
		{
			name:   "late under threshold",
			actual: day(9, 10),
			grace:  5, threshold: 15, deduction: 30,
			want: Lateness{MinutesLate: 10, IsLate: true, DeductedMinutes: 0},
		},
		{
			name:   "late over threshold",
			actual: day(9, 20),
			grace:  5, threshold: 15, deduction: 30,
			want: Lateness{MinutesLate: 20, IsLate: true, DeductedMinutes: 30},
		},
		{
			name:   "early arrival",
			actual: day(8, 40),
			grace:  5, threshold: 15, deduction: 30,
			want: Lateness{MinutesLate: 0, IsLate: false, DeductedMinutes: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLateness(tt.actual, expected, tt.grace, tt.threshold, tt.deduction)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortPunches(t *testing.T) {
	t.Parallel()

	r := Record{Punches: []Punch{
		punch(PunchOut, 17, 0),
		punch(PunchIn, 8, 0),
		punch(PunchOut, 12, 0),
	}}
	r.SortPunches()

	assert.Equal(t, day(8, 0), r.Punches[0].At)
	assert.Equal(t, day(12, 0), r.Punches[1].At)
	assert.Equal(t, day(17, 0), r.Punches[2].At)
}

func TestDayKey(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), DayKey(at))
}
