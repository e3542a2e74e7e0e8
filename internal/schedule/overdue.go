package schedule

import (
	"time"

	"coachly/fitness-backend/internal/domain"
)

// IsPlanOverdue reports whether an offset-based plan has run past the end of
// its last scheduled week without being completed. It gates the "plan ended"
// dialog. Calendar-anchored plans are never plan-overdue, and a completed
// plan is inert. The past-end computation is the resolver's; the detector
// must never disagree with default navigation.
func IsPlanOverdue(plan *domain.TrainingPlan, now time.Time) bool {
	if plan == nil || len(plan.Weeks) == 0 {
		return false
	}
	if plan.IsQuickWorkout() || plan.CompletedAt != nil {
		return false
	}
	_, pastPlanEnd := resolveOffsetWeek(plan, now)
	return pastPlanEnd
}

// CountMissedDays counts individual missed sessions: days that are not rest
// days, not completed, carry an anchor, and whose local calendar date is
// strictly before today's. Calendar-day granularity, not instant granularity:
// a day scheduled for today is never overdue regardless of time of day.
// Drives the dismissible banner; dismissal itself is a presentation concern.
func CountMissedDays(plan *domain.TrainingPlan, now time.Time, timezone string) (int, error) {
	if plan == nil {
		return 0, nil
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return 0, err
	}
	todayKey := dayKey(now, loc)

	count := 0
	for i := range plan.Weeks {
		days := plan.Weeks[i].Days
		for j := range days {
			d := &days[j]
			if d.IsRestDay || d.CompletedAt != nil || d.ScheduledAt == nil {
				continue
			}
			if dayKey(*d.ScheduledAt, loc) < todayKey {
				count++
			}
		}
	}
	return count, nil
}
