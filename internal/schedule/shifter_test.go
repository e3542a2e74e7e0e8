package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeShiftMovesSuffixByOffset(t *testing.T) {
	// Week 3 currently starts 2025-10-20; moving it to 2025-11-03 is a
	// 14-day shift of weeks 3 and 4, leaving weeks 1 and 2 untouched.
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC) // Monday
	plan := calendarPlan(4, base)
	require.Equal(t, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), *plan.Weeks[2].ScheduledAt)

	res, err := ComputeShift(plan, "week-3", "2025-11-03", "UTC")
	require.NoError(t, err)
	assert.Equal(t, 14, res.OffsetDays)
	require.Len(t, res.Weeks, 2)

	shifted := res.Plan
	assert.Equal(t, *plan.Weeks[0].ScheduledAt, *shifted.Weeks[0].ScheduledAt)
	assert.Equal(t, *plan.Weeks[1].ScheduledAt, *shifted.Weeks[1].ScheduledAt)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), *shifted.Weeks[2].ScheduledAt)
	assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), *shifted.Weeks[3].ScheduledAt)
}

func TestComputeShiftRealignsDaysFromWeekStart(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := calendarPlan(4, base)
	// Poison one day anchor: day 5 of week 3 drifted away from its slot.
	drifted := base.AddDate(0, 0, 40)
	plan.Weeks[2].Days[5].ScheduledAt = &drifted

	res, err := ComputeShift(plan, "week-3", "2025-11-03", "UTC")
	require.NoError(t, err)

	// Post-shift alignment invariant: every touched day sits at week start
	// plus its fixed dayOfWeek, drift or not.
	for _, w := range res.Weeks {
		require.NotNil(t, w.ScheduledAt)
		for _, d := range w.Days {
			require.NotNil(t, d.ScheduledAt)
			assert.Equal(t, w.ScheduledAt.AddDate(0, 0, d.DayOfWeek), *d.ScheduledAt,
				"week %d day %d", w.WeekNumber, d.DayOfWeek)
		}
	}
}

func TestComputeShiftZeroOffsetIsNoOp(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := calendarPlan(2, base)

	res, err := ComputeShift(plan, "week-2", "2025-10-13", "UTC")
	require.NoError(t, err)
	assert.Zero(t, res.OffsetDays)
	assert.Empty(t, res.Weeks, "no weeks touched, no mutation to issue")
	assert.Equal(t, *plan.Weeks[1].ScheduledAt, *res.Plan.Weeks[1].ScheduledAt)
}

func TestComputeShiftBackwards(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := calendarPlan(2, base)

	res, err := ComputeShift(plan, "week-2", "2025-10-06", "UTC")
	require.NoError(t, err)
	assert.Equal(t, -7, res.OffsetDays)
	assert.Equal(t, base, *res.Plan.Weeks[1].ScheduledAt)
}

func TestComputeShiftDoesNotMutateSnapshot(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := calendarPlan(3, base)
	wantWeek2 := *plan.Weeks[1].ScheduledAt
	wantDay := *plan.Weeks[1].Days[3].ScheduledAt

	_, err := ComputeShift(plan, "week-2", "2025-12-01", "UTC")
	require.NoError(t, err)

	assert.Equal(t, wantWeek2, *plan.Weeks[1].ScheduledAt, "input snapshot unchanged")
	assert.Equal(t, wantDay, *plan.Weeks[1].Days[3].ScheduledAt)
}

func TestComputeShiftErrors(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)

	t.Run("unknown week id", func(t *testing.T) {
		plan := calendarPlan(2, base)
		_, err := ComputeShift(plan, "nope", "2025-11-03", "UTC")
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})

	t.Run("week without anchor", func(t *testing.T) {
		plan := calendarPlan(2, base)
		plan.Weeks[1].ScheduledAt = nil
		_, err := ComputeShift(plan, "week-2", "2025-11-03", "UTC")
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})

	t.Run("bad timezone", func(t *testing.T) {
		plan := calendarPlan(2, base)
		_, err := ComputeShift(plan, "week-2", "2025-11-03", "Not/Real")
		assert.ErrorIs(t, err, ErrInvalidTimezone)
	})

	t.Run("bad date key", func(t *testing.T) {
		plan := calendarPlan(2, base)
		_, err := ComputeShift(plan, "week-2", "03-11-2025", "UTC")
		assert.ErrorIs(t, err, ErrInvalidDateKey)
	})
}

func TestComputeShiftSkipsUnanchoredLaterWeeks(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := calendarPlan(3, base)
	plan.Weeks[2].ScheduledAt = nil

	res, err := ComputeShift(plan, "week-2", "2025-11-03", "UTC")
	require.NoError(t, err)
	require.Len(t, res.Weeks, 1)
	assert.Nil(t, res.Plan.Weeks[2].ScheduledAt, "unanchored week stays unanchored")
}

func TestComputeMinStartDate(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC) // Monday
	plan := calendarPlan(4, base)

	t.Run("bounded by last untouched week end", func(t *testing.T) {
		now := base.Add(10 * time.Hour) // inside week 1
		min, err := ComputeMinStartDate(plan, "week-3", time.Monday, now)
		require.NoError(t, err)
		// Week 2 ends at base+14d, already on a Monday boundary.
		assert.Equal(t, base.AddDate(0, 0, 14), min)
	})

	t.Run("bounded by current week start when later", func(t *testing.T) {
		now := base.AddDate(0, 0, 30) // well past week 2's end
		min, err := ComputeMinStartDate(plan, "week-3", time.Monday, now)
		require.NoError(t, err)
		assert.Equal(t, StartOfWeek(now, time.Monday), min)
	})

	t.Run("rounds up to week start boundary", func(t *testing.T) {
		// Shift anchors off the Monday grid: weeks start on Wednesday.
		wedPlan := calendarPlan(3, base.AddDate(0, 0, 2))
		now := base.Add(10 * time.Hour)
		min, err := ComputeMinStartDate(wedPlan, "week-2", time.Monday, now)
		require.NoError(t, err)
		// Week 1 ends Wednesday base+9d; the next Monday boundary is base+14d.
		assert.Equal(t, base.AddDate(0, 0, 14), min)
	})

	t.Run("unknown week", func(t *testing.T) {
		_, err := ComputeMinStartDate(plan, "nope", time.Monday, base)
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})
}

// Any date at or after ComputeMinStartDate keeps the untouched range strictly
// before the shifted range.
func TestMinStartDatePreservesNonOverlap(t *testing.T) {
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := calendarPlan(4, base)
	now := base.Add(time.Hour)

	min, err := ComputeMinStartDate(plan, "week-3", time.Monday, now)
	require.NoError(t, err)

	for extra := 0; extra <= 21; extra += 7 {
		startKey := min.AddDate(0, 0, extra).Format(KeyLayout)
		res, err := ComputeShift(plan, "week-3", startKey, "UTC")
		require.NoError(t, err)

		lastUntouchedEnd := plan.Weeks[1].ScheduledAt.AddDate(0, 0, 7)
		newStart := res.Plan.Weeks[2].ScheduledAt
		assert.False(t, newStart.Before(lastUntouchedEnd),
			"shifted start %s must not precede untouched end %s", newStart, lastUntouchedEnd)
	}
}
