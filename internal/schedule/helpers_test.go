package schedule

import (
	"fmt"
	"time"

	"coachly/fitness-backend/internal/domain"
)

// Test fixtures. Monday 2025-09-01T00:00:00Z is the base anchor for most
// cases so DayOfWeek arithmetic lines up with real weekdays.
var mondayBase = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

// fullWeek builds a week with all seven day slots. Anchored days derive their
// ScheduledAt from the week anchor.
func fullWeek(number int, anchor *time.Time) domain.Week {
	w := domain.Week{
		ID:          fmt.Sprintf("week-%d", number),
		WeekNumber:  number,
		ScheduledAt: anchor,
	}
	for dow := 0; dow < 7; dow++ {
		d := domain.Day{
			ID:             fmt.Sprintf("week-%d-day-%d", number, dow),
			DayOfWeek:      dow,
			IsRestDay:      dow == 6, // Sunday slot rests
			ExercisesCount: 4,
		}
		if dow == 6 {
			d.ExercisesCount = 0
		}
		if anchor != nil {
			d.ScheduledAt = tp(anchor.AddDate(0, 0, dow))
		}
		w.Days = append(w.Days, d)
	}
	return w
}

// calendarPlan builds a quick-workout plan: n weeks, each anchored a week
// apart starting at base.
func calendarPlan(n int, base time.Time) *domain.TrainingPlan {
	plan := &domain.TrainingPlan{Mode: domain.PlanModeCalendar}
	for i := 0; i < n; i++ {
		plan.Weeks = append(plan.Weeks, fullWeek(i+1, tp(base.AddDate(0, 0, 7*i))))
	}
	return plan
}

// offsetPlan builds a trainer plan with n unanchored weeks.
func offsetPlan(n int, start time.Time) *domain.TrainingPlan {
	plan := &domain.TrainingPlan{Mode: domain.PlanModeOffset, StartDate: tp(start)}
	for i := 0; i < n; i++ {
		plan.Weeks = append(plan.Weeks, fullWeek(i+1, nil))
	}
	return plan
}

// hybridPlan builds a trainer plan whose weeks were all calendar-anchored
// after assignment.
func hybridPlan(n int, start time.Time) *domain.TrainingPlan {
	plan := offsetPlan(n, start)
	for i := range plan.Weeks {
		anchor := start.AddDate(0, 0, 7*i)
		plan.Weeks[i].ScheduledAt = tp(anchor)
		for j := range plan.Weeks[i].Days {
			plan.Weeks[i].Days[j].ScheduledAt = tp(anchor.AddDate(0, 0, plan.Weeks[i].Days[j].DayOfWeek))
		}
	}
	return plan
}
