package schedule

import (
	"time"

	"coachly/fitness-backend/internal/domain"
)

const daysPerWeek = 7

// IsInWeek reports whether instant falls inside the half-open 7-day interval
// [weekStart, weekStart+7d). The instant exactly at weekStart+7d belongs to
// the next week, never both.
func IsInWeek(instant, weekStart time.Time) bool {
	if instant.Before(weekStart) {
		return false
	}
	return instant.Before(weekStart.AddDate(0, 0, daysPerWeek))
}

// FindWeekContaining returns the first week (in slice order) whose anchor
// contains instant. Weeks without an anchor are skipped. Returns nil when no
// week matches.
func FindWeekContaining(weeks []domain.Week, instant time.Time) *domain.Week {
	for i := range weeks {
		w := &weeks[i]
		if w.ScheduledAt != nil && IsInWeek(instant, *w.ScheduledAt) {
			return w
		}
	}
	return nil
}

// FindClosestWeek returns the anchored week minimizing the absolute distance
// between instant and the week's anchor. Ties resolve to the first occurrence
// in slice order. Returns nil when no week has an anchor.
func FindClosestWeek(weeks []domain.Week, instant time.Time) *domain.Week {
	var closest *domain.Week
	var closestDist time.Duration
	for i := range weeks {
		w := &weeks[i]
		if w.ScheduledAt == nil {
			continue
		}
		dist := instant.Sub(*w.ScheduledAt)
		if dist < 0 {
			dist = -dist
		}
		if closest == nil || dist < closestDist {
			closest = w
			closestDist = dist
		}
	}
	return closest
}

// findWeekByID returns the week with the given id, or nil.
func findWeekByID(weeks []domain.Week, weekID string) *domain.Week {
	for i := range weeks {
		if weeks[i].ID == weekID {
			return &weeks[i]
		}
	}
	return nil
}
