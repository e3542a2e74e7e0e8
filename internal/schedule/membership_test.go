package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachly/fitness-backend/internal/domain"
)

func TestIsInWeekHalfOpenInterval(t *testing.T) {
	weekStart := mondayBase

	assert.True(t, IsInWeek(weekStart, weekStart), "start is inclusive")
	assert.True(t, IsInWeek(weekStart.Add(time.Nanosecond), weekStart))
	assert.True(t, IsInWeek(weekStart.AddDate(0, 0, 6).Add(23*time.Hour), weekStart))
	assert.False(t, IsInWeek(weekStart.AddDate(0, 0, 7), weekStart), "end is exclusive")
	assert.False(t, IsInWeek(weekStart.Add(-time.Nanosecond), weekStart))
}

func TestFindWeekContaining(t *testing.T) {
	plan := calendarPlan(4, mondayBase)
	// An unanchored week in the middle is skipped, not matched.
	plan.Weeks[1].ScheduledAt = nil

	w := FindWeekContaining(plan.Weeks, mondayBase.AddDate(0, 0, 16))
	require.NotNil(t, w)
	assert.Equal(t, 3, w.WeekNumber)

	assert.Nil(t, FindWeekContaining(plan.Weeks, mondayBase.AddDate(0, 0, 10)),
		"instant inside the unanchored week matches nothing")
	assert.Nil(t, FindWeekContaining(plan.Weeks, mondayBase.AddDate(0, 0, -1)))
}

func TestFindClosestWeek(t *testing.T) {
	plan := calendarPlan(3, mondayBase)

	w := FindClosestWeek(plan.Weeks, mondayBase.AddDate(0, 0, 20))
	require.NotNil(t, w)
	assert.Equal(t, 3, w.WeekNumber)

	w = FindClosestWeek(plan.Weeks, mondayBase.AddDate(0, 0, -30))
	require.NotNil(t, w)
	assert.Equal(t, 1, w.WeekNumber)
}

func TestFindClosestWeekTieBreaksByOrder(t *testing.T) {
	// Two weeks equidistant from the probe instant: the first in slice order
	// wins, regardless of week number.
	weeks := []domain.Week{
		{ID: "b", WeekNumber: 2, ScheduledAt: tp(mondayBase.AddDate(0, 0, 14))},
		{ID: "a", WeekNumber: 1, ScheduledAt: tp(mondayBase)},
	}
	w := FindClosestWeek(weeks, mondayBase.AddDate(0, 0, 7))
	require.NotNil(t, w)
	assert.Equal(t, "b", w.ID)
}

func TestFindClosestWeekNoAnchors(t *testing.T) {
	plan := offsetPlan(3, mondayBase)
	assert.Nil(t, FindClosestWeek(plan.Weeks, mondayBase))
}
