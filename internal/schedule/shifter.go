package schedule

import (
	"errors"
	"math"
	"time"

	"coachly/fitness-backend/internal/domain"
)

// ErrWeekNotFound reports a shift against a week id that is absent from the
// plan or that has no calendar anchor to compute an offset from.
var ErrWeekNotFound = errors.New("week not found or has no calendar anchor")

// ShiftResult is the outcome of a schedule-shift computation. Plan is a deep
// copy of the input with the suffix of weeks moved; the caller's snapshot is
// never mutated. Weeks holds just the touched suffix for persistence and
// optimistic display. OffsetDays == 0 means the shift is a no-op and no
// mutation should be issued.
type ShiftResult struct {
	OffsetDays int
	Plan       *domain.TrainingPlan
	Weeks      []domain.Week
}

// ComputeShift moves fromWeek and every later week (by WeekNumber) so that
// fromWeek's day-0 slot lands on newStartKey, interpreted as local midnight
// in the given timezone. Day anchors are always recomputed as the new week
// start plus the day's fixed DayOfWeek, never by offsetting the day's old
// anchor, so week/day alignment is re-established even if the source data
// had drifted. Weeks before fromWeek are untouched; callers gate the new
// start date with ComputeMinStartDate so touched and untouched ranges cannot
// overlap.
func ComputeShift(plan *domain.TrainingPlan, fromWeekID, newStartKey, timezone string) (*ShiftResult, error) {
	fromWeek := findWeekByID(plan.Weeks, fromWeekID)
	if fromWeek == nil || fromWeek.ScheduledAt == nil {
		return nil, ErrWeekNotFound
	}

	target, err := KeyToInstant(newStartKey, timezone)
	if err != nil {
		return nil, err
	}
	offsetDays := int(math.Round(target.Sub(*fromWeek.ScheduledAt).Hours() / 24))

	shifted := clonePlan(plan)
	result := &ShiftResult{OffsetDays: offsetDays, Plan: shifted}
	if offsetDays == 0 {
		return result, nil
	}

	for i := range shifted.Weeks {
		w := &shifted.Weeks[i]
		if w.WeekNumber < fromWeek.WeekNumber || w.ScheduledAt == nil {
			continue
		}
		newStart := w.ScheduledAt.AddDate(0, 0, offsetDays)
		w.ScheduledAt = &newStart
		for j := range w.Days {
			d := &w.Days[j]
			dayStart := newStart.AddDate(0, 0, d.DayOfWeek)
			d.ScheduledAt = &dayStart
		}
		result.Weeks = append(result.Weeks, *w)
	}
	return result, nil
}

// ComputeMinStartDate returns the earliest calendar date a shift of fromWeek
// may target: the later of today's week start and the first week-start
// boundary at or after the last untouched anchored week's end. weekStartsOn
// is the locale week-start preference; now must be in the operating
// timezone.
func ComputeMinStartDate(plan *domain.TrainingPlan, fromWeekID string, weekStartsOn time.Weekday, now time.Time) (time.Time, error) {
	fromWeek := findWeekByID(plan.Weeks, fromWeekID)
	if fromWeek == nil {
		return time.Time{}, ErrWeekNotFound
	}

	min := StartOfWeek(now, weekStartsOn)

	var lastUntouched *domain.Week
	for i := range plan.Weeks {
		w := &plan.Weeks[i]
		if w.WeekNumber >= fromWeek.WeekNumber || w.ScheduledAt == nil {
			continue
		}
		if lastUntouched == nil || w.ScheduledAt.After(*lastUntouched.ScheduledAt) {
			lastUntouched = w
		}
	}
	if lastUntouched != nil {
		end := lastUntouched.ScheduledAt.AddDate(0, 0, daysPerWeek)
		if end.After(min) {
			min = end
		}
	}
	return nextWeekStartBoundary(min, weekStartsOn), nil
}

// StartOfWeek truncates an instant to local midnight of the week containing
// it, for the given week-start weekday.
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	delta := (int(t.Weekday()) - int(weekStartsOn) + daysPerWeek) % daysPerWeek
	d := t.AddDate(0, 0, -delta)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// nextWeekStartBoundary rounds t up to the nearest week-start local midnight;
// an instant already exactly on the boundary is returned unchanged.
func nextWeekStartBoundary(t time.Time, weekStartsOn time.Weekday) time.Time {
	start := StartOfWeek(t, weekStartsOn)
	if start.Before(t) {
		return start.AddDate(0, 0, daysPerWeek)
	}
	return start
}

// clonePlan deep-copies a plan's week/day structure so shift results never
// alias the caller's snapshot.
func clonePlan(plan *domain.TrainingPlan) *domain.TrainingPlan {
	out := *plan
	out.Weeks = make([]domain.Week, len(plan.Weeks))
	for i := range plan.Weeks {
		w := plan.Weeks[i]
		if w.ScheduledAt != nil {
			v := *w.ScheduledAt
			w.ScheduledAt = &v
		}
		if w.CompletedAt != nil {
			v := *w.CompletedAt
			w.CompletedAt = &v
		}
		w.Days = make([]domain.Day, len(plan.Weeks[i].Days))
		copy(w.Days, plan.Weeks[i].Days)
		for j := range w.Days {
			d := &w.Days[j]
			if d.ScheduledAt != nil {
				v := *d.ScheduledAt
				d.ScheduledAt = &v
			}
			if d.CompletedAt != nil {
				v := *d.CompletedAt
				d.CompletedAt = &v
			}
		}
		out.Weeks[i] = w
	}
	return &out
}
