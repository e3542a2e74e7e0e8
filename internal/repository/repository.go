package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// TrainingPlanRepository defines the interface for interacting with training
// plan data, including the schedule-mutation collaborator used by the shift
// flow: ShiftSchedule durably rewrites the week/day anchors of the plan's
// suffix starting at fromWeekID so that week lands on startDateKey.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingPlan, error)
	GetByClientAndTrainerID(ctx context.Context, clientID, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error)
	SetDayCompletion(ctx context.Context, planID primitive.ObjectID, dayID string, completedAt *time.Time) error
	SetPlanCompletion(ctx context.Context, planID primitive.ObjectID, completedAt *time.Time) error
	ShiftSchedule(ctx context.Context, planID primitive.ObjectID, fromWeekID, startDateKey, timezone string) error
	Delete(ctx context.Context, planID, trainerID primitive.ObjectID) error
}

// ProgressPhotoRepository defines the interface for progress photo metadata.
type ProgressPhotoRepository interface {
	Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error)
}
