package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachly/fitness-backend/internal/domain"
)

func TestResolveEmptyPlan(t *testing.T) {
	assert.Equal(t, Selection{}, Resolve(&domain.TrainingPlan{Mode: domain.PlanModeCalendar}, mondayBase))
	assert.Equal(t, Selection{}, Resolve(nil, mondayBase))
}

func TestResolveCalendarPlanCurrentWeek(t *testing.T) {
	// Eight anchored weeks; now is Wednesday inside week index 5.
	plan := calendarPlan(8, mondayBase)
	now := mondayBase.AddDate(0, 0, 5*7+2).Add(10 * time.Hour)

	sel := Resolve(plan, now)
	assert.Equal(t, "week-6", sel.WeekID)
	assert.Equal(t, "week-6-day-2", sel.DayID, "Wednesday maps to training day 2")
}

func TestResolveCalendarPlanFallsBackToClosestWeek(t *testing.T) {
	plan := calendarPlan(3, mondayBase)
	// Now is long after the last anchored range; no week contains it.
	sel := Resolve(plan, mondayBase.AddDate(0, 0, 60))
	assert.Equal(t, "week-3", sel.WeekID)
}

func TestResolveCalendarPlanNoAnchors(t *testing.T) {
	plan := calendarPlan(2, mondayBase)
	for i := range plan.Weeks {
		plan.Weeks[i].ScheduledAt = nil
	}
	assert.Equal(t, Selection{}, Resolve(plan, mondayBase))
}

func TestResolveOffsetPlanWeekIndex(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		wantWeek string
	}{
		{"inside first week", start.AddDate(0, 0, 3), "week-1"},
		{"exactly seven days in", start.AddDate(0, 0, 7), "week-2"},
		{"before start clamps to zero", start.AddDate(0, 0, -6), "week-1"},
		{"past the end clamps to last", start.AddDate(0, 0, 100), "week-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := offsetPlan(4, start)
			sel := Resolve(plan, tt.now)
			assert.Equal(t, tt.wantWeek, sel.WeekID)
		})
	}
}

func TestResolveOffsetPlanIndexMonotonicity(t *testing.T) {
	start := mondayBase
	plan := offsetPlan(6, start)

	prev := 0
	for d := -7; d <= 70; d += 7 {
		sel := Resolve(plan, start.AddDate(0, 0, d))
		require.NotEmpty(t, sel.WeekID)
		week := findWeekByID(plan.Weeks, sel.WeekID)
		require.NotNil(t, week)
		assert.GreaterOrEqual(t, week.WeekNumber, prev, "week index never moves backwards as now advances")
		prev = week.WeekNumber
	}
}

func TestResolveOffsetPlanNoStartDateUsesNow(t *testing.T) {
	plan := offsetPlan(3, mondayBase)
	plan.StartDate = nil
	sel := Resolve(plan, mondayBase.AddDate(0, 0, 30))
	assert.Equal(t, "week-1", sel.WeekID, "epoch defaults to now, so index is zero")
}

func TestResolvePastPlanEndPicksLastWorkoutDay(t *testing.T) {
	// Two-week trainer plan, everything completed, now far in the future.
	plan := offsetPlan(2, mondayBase)
	done := mondayBase.AddDate(0, 0, 13)
	for i := range plan.Weeks {
		for j := range plan.Weeks[i].Days {
			plan.Weeks[i].Days[j].CompletedAt = tp(done)
		}
	}

	sel := Resolve(plan, mondayBase.AddDate(0, 0, 90))
	assert.Equal(t, "week-2", sel.WeekID)
	// Highest dayOfWeek among non-rest days with exercises; the Sunday slot
	// is a rest day in the fixture.
	assert.Equal(t, "week-2-day-5", sel.DayID)
}

func TestResolvePastPlanEndAllRestFallsBackToLastSlot(t *testing.T) {
	plan := offsetPlan(1, mondayBase)
	for j := range plan.Weeks[0].Days {
		plan.Weeks[0].Days[j].IsRestDay = true
		plan.Weeks[0].Days[j].ExercisesCount = 0
	}
	sel := Resolve(plan, mondayBase.AddDate(0, 0, 90))
	assert.Equal(t, "week-1-day-6", sel.DayID)
}

func TestResolveHybridPrefersCalendarLookup(t *testing.T) {
	// All weeks anchored from mondayBase, but the plan's StartDate is two
	// weeks earlier, so index arithmetic alone would land on week 3.
	plan := hybridPlan(4, mondayBase)
	plan.StartDate = tp(mondayBase.AddDate(0, 0, -14))

	sel := Resolve(plan, mondayBase.AddDate(0, 0, 1))
	assert.Equal(t, "week-1", sel.WeekID)
}

func TestResolveHybridIgnoredWhenAnyWeekUnanchored(t *testing.T) {
	plan := hybridPlan(4, mondayBase)
	plan.StartDate = tp(mondayBase.AddDate(0, 0, -14))
	plan.Weeks[3].ScheduledAt = nil

	sel := Resolve(plan, mondayBase.AddDate(0, 0, 1))
	assert.Equal(t, "week-3", sel.WeekID, "index arithmetic applies when not all weeks are anchored")
}

func TestResolveDayFallbacks(t *testing.T) {
	monday := mondayBase.AddDate(0, 0, 7*52) // another Monday

	t.Run("no slot for today falls back to first uncompleted", func(t *testing.T) {
		plan := calendarPlan(1, monday)
		// Strip the Monday slot and complete the first remaining day.
		plan.Weeks[0].Days = plan.Weeks[0].Days[1:]
		plan.Weeks[0].Days[0].CompletedAt = tp(monday)

		sel := Resolve(plan, monday.Add(8*time.Hour))
		assert.Equal(t, "week-1-day-2", sel.DayID)
	})

	t.Run("all completed falls back to first day", func(t *testing.T) {
		plan := calendarPlan(1, monday)
		plan.Weeks[0].Days = plan.Weeks[0].Days[1:]
		for j := range plan.Weeks[0].Days {
			plan.Weeks[0].Days[j].CompletedAt = tp(monday)
		}
		sel := Resolve(plan, monday.Add(8*time.Hour))
		assert.Equal(t, "week-1-day-1", sel.DayID)
	})

	t.Run("week without days yields week only", func(t *testing.T) {
		plan := calendarPlan(1, monday)
		plan.Weeks[0].Days = nil
		sel := Resolve(plan, monday)
		assert.Equal(t, "week-1", sel.WeekID)
		assert.Empty(t, sel.DayID)
	})
}

func TestTrainingDayIndex(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		{mondayBase, 0},                    // Monday
		{mondayBase.AddDate(0, 0, 2), 2},   // Wednesday
		{mondayBase.AddDate(0, 0, 5), 5},   // Saturday
		{mondayBase.AddDate(0, 0, 6), 6},   // Sunday maps to 6, not -1
		{mondayBase.AddDate(0, 0, 7), 0},   // next Monday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrainingDayIndex(tt.day), "weekday of %s", tt.day)
	}
}
