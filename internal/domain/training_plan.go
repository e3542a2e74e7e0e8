// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanMode selects how a plan's current week is resolved.
type PlanMode string

const (
	// PlanModeCalendar: every week carries its own calendar anchor ("quick workout").
	// The plan has no end concept independent of its week list.
	PlanModeCalendar PlanMode = "calendar"
	// PlanModeOffset: weeks are derived from the plan's StartDate by index
	// ("trainer plan"). Weeks may additionally carry anchors after assignment.
	PlanModeOffset PlanMode = "offset"
)

// TrainingPlan is a structured week/day plan assigned to a client by a trainer.
// Weeks are embedded and kept ordered by WeekNumber ascending.
type TrainingPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Mode        PlanMode           `bson:"mode" json:"mode"`
	StartDate   *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"` // Epoch for offset-based week indexing
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Weeks       []Week             `bson:"weeks" json:"weeks"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsQuickWorkout reports whether the plan is calendar-anchored.
func (p *TrainingPlan) IsQuickWorkout() bool {
	return p.Mode == PlanModeCalendar
}

// Week is one week of a training plan. WeekNumber is 1-indexed identity and
// never changes; ScheduledAt, when set, is the instant of the week's
// dayOfWeek=0 slot (local midnight in the plan's operating timezone).
type Week struct {
	ID          string     `bson:"id" json:"id"` // uuid, minted at plan creation
	WeekNumber  int        `bson:"weekNumber" json:"weekNumber"`
	ScheduledAt *time.Time `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Days        []Day      `bson:"days" json:"days"`
}

// Day is one slot within a week. DayOfWeek is 0..6 with 0 = Monday, a fixed
// encoding independent of any locale week-start preference (that preference
// affects display ordering only). When the parent week is anchored,
// ScheduledAt must equal week start + DayOfWeek days.
type Day struct {
	ID             string     `bson:"id" json:"id"` // uuid, minted at plan creation
	DayOfWeek      int        `bson:"dayOfWeek" json:"dayOfWeek"`
	IsRestDay      bool       `bson:"isRestDay" json:"isRestDay"`
	ScheduledAt    *time.Time `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	CompletedAt    *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	ExercisesCount int        `bson:"exercisesCount" json:"exercisesCount"`
}

// IsWorkoutDay reports whether the day holds an actual workout (not a rest
// slot and not an empty template day).
func (d *Day) IsWorkoutDay() bool {
	return !d.IsRestDay && d.ExercisesCount > 0
}
