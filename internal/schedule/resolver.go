package schedule

import (
	"math"
	"time"

	"coachly/fitness-backend/internal/domain"
)

// Selection is the default navigation target for a plan: which week and which
// day the UI should open on. Empty ids mean no sensible default exists (empty
// plan, or no anchored weeks in a calendar-mode plan).
type Selection struct {
	WeekID string
	DayID  string
}

// Resolve computes the default week and day to display for a plan at the
// given instant. now must already be expressed in the plan's operating
// timezone; its weekday drives the day selection. Resolve never fails:
// absence of schedule data degrades to an empty Selection, since this feeds
// default UI state rather than a hard requirement.
func Resolve(plan *domain.TrainingPlan, now time.Time) Selection {
	if plan == nil || len(plan.Weeks) == 0 {
		return Selection{}
	}

	var week *domain.Week
	pastPlanEnd := false

	switch plan.Mode {
	case domain.PlanModeCalendar:
		// A calendar-anchored plan always shows some week; it has no end
		// concept independent of its week list.
		week = FindWeekContaining(plan.Weeks, now)
		if week == nil {
			week = FindClosestWeek(plan.Weeks, now)
		}
	default:
		week, pastPlanEnd = resolveOffsetWeek(plan, now)
	}

	if week == nil {
		return Selection{}
	}

	sel := Selection{WeekID: week.ID}
	if day := resolveDay(week, now, pastPlanEnd); day != nil {
		sel.DayID = day.ID
	}
	return sel
}

// resolveOffsetWeek picks the current week of an offset-based plan and
// reports whether now is past the plan's end. Shared with the overdue
// detector so the two surfaces never disagree.
func resolveOffsetWeek(plan *domain.TrainingPlan, now time.Time) (*domain.Week, bool) {
	epoch := now
	if plan.StartDate != nil {
		epoch = *plan.StartDate
	}
	weekIndex := daysBetween(epoch, now) / daysPerWeek
	if weekIndex < 0 {
		weekIndex = 0
	}
	pastPlanEnd := weekIndex >= len(plan.Weeks)

	safeIndex := weekIndex
	if safeIndex > len(plan.Weeks)-1 {
		safeIndex = len(plan.Weeks) - 1
	}
	week := &plan.Weeks[safeIndex]

	// Hybrid override: a trainer plan whose weeks were all calendar-anchored
	// after assignment prefers calendar lookup over index arithmetic.
	if allWeeksAnchored(plan.Weeks) {
		if w := FindWeekContaining(plan.Weeks, now); w != nil {
			week = w
		} else if w := FindClosestWeek(plan.Weeks, now); w != nil {
			week = w
		}
		// Past-end flips exactly at the last week's end instant (inclusive
		// boundary, unlike IsInWeek). Intentional: the overdue dialog should
		// trigger promptly at the week-end moment, not one instant later.
		latest := latestAnchoredWeek(plan.Weeks)
		pastPlanEnd = !now.Before(latest.ScheduledAt.AddDate(0, 0, daysPerWeek))
	}
	return week, pastPlanEnd
}

// resolveDay picks the day to open within the resolved week.
func resolveDay(week *domain.Week, now time.Time, pastPlanEnd bool) *domain.Day {
	if len(week.Days) == 0 {
		return nil
	}

	if pastPlanEnd {
		// Land on the last real workout of the final week, falling back to
		// the week's last slot when no day qualifies.
		if d := lastSlot(week.Days, func(d *domain.Day) bool { return d.IsWorkoutDay() }); d != nil {
			return d
		}
		return lastSlot(week.Days, nil)
	}

	trainingDay := TrainingDayIndex(now)
	for i := range week.Days {
		if week.Days[i].DayOfWeek == trainingDay {
			return &week.Days[i]
		}
	}
	// No slot for today: first uncompleted day, then first day overall.
	for i := range week.Days {
		if week.Days[i].CompletedAt == nil {
			return &week.Days[i]
		}
	}
	return &week.Days[0]
}

// TrainingDayIndex converts an instant's weekday to the plan's Monday=0..
// Sunday=6 day encoding.
func TrainingDayIndex(now time.Time) int {
	wd := now.Weekday()
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// lastSlot returns the day with the largest DayOfWeek among days matching the
// predicate (nil predicate matches all).
func lastSlot(days []domain.Day, match func(*domain.Day) bool) *domain.Day {
	var last *domain.Day
	for i := range days {
		d := &days[i]
		if match != nil && !match(d) {
			continue
		}
		if last == nil || d.DayOfWeek > last.DayOfWeek {
			last = d
		}
	}
	return last
}

// daysBetween is the floored whole-day distance from one instant to another.
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func allWeeksAnchored(weeks []domain.Week) bool {
	for i := range weeks {
		if weeks[i].ScheduledAt == nil {
			return false
		}
	}
	return len(weeks) > 0
}

// latestAnchoredWeek returns the anchored week with the maximum ScheduledAt.
// Callers must ensure at least one week is anchored.
func latestAnchoredWeek(weeks []domain.Week) *domain.Week {
	var latest *domain.Week
	for i := range weeks {
		w := &weeks[i]
		if w.ScheduledAt == nil {
			continue
		}
		if latest == nil || w.ScheduledAt.After(*latest.ScheduledAt) {
			latest = w
		}
	}
	return latest
}
