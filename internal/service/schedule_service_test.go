package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/repository"
)

// planRepoStub implements repository.TrainingPlanRepository with pluggable
// behavior for the methods a test cares about.
type planRepoStub struct {
	getByID       func(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	shiftSchedule func(ctx context.Context, planID primitive.ObjectID, fromWeekID, startDateKey, timezone string) error
	shiftCalls    int
}

func (s *planRepoStub) Create(context.Context, *domain.TrainingPlan) (primitive.ObjectID, error) {
	return primitive.NilObjectID, nil
}

func (s *planRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	return s.getByID(ctx, id)
}

func (s *planRepoStub) GetByClientID(context.Context, primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return nil, nil
}

func (s *planRepoStub) GetByClientAndTrainerID(context.Context, primitive.ObjectID, primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return nil, nil
}

func (s *planRepoStub) SetDayCompletion(context.Context, primitive.ObjectID, string, *time.Time) error {
	return nil
}

func (s *planRepoStub) SetPlanCompletion(context.Context, primitive.ObjectID, *time.Time) error {
	return nil
}

func (s *planRepoStub) ShiftSchedule(ctx context.Context, planID primitive.ObjectID, fromWeekID, startDateKey, timezone string) error {
	s.shiftCalls++
	if s.shiftSchedule != nil {
		return s.shiftSchedule(ctx, planID, fromWeekID, startDateKey, timezone)
	}
	return nil
}

func (s *planRepoStub) Delete(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func anchoredPlan(clientID, trainerID primitive.ObjectID, weekCount int, firstStart time.Time) *domain.TrainingPlan {
	plan := &domain.TrainingPlan{
		ID:        primitive.NewObjectID(),
		ClientID:  clientID,
		TrainerID: trainerID,
		Mode:      domain.PlanModeOffset,
		IsActive:  true,
	}
	for i := 0; i < weekCount; i++ {
		start := firstStart.AddDate(0, 0, 7*i)
		week := domain.Week{
			ID:          uuid.NewString(),
			WeekNumber:  i + 1,
			ScheduledAt: &start,
		}
		for d := 0; d < 3; d++ {
			at := start.AddDate(0, 0, d)
			week.Days = append(week.Days, domain.Day{
				ID:             uuid.NewString(),
				DayOfWeek:      d,
				ScheduledAt:    &at,
				ExercisesCount: 4,
			})
		}
		plan.Weeks = append(plan.Weeks, week)
	}
	return plan
}

func TestShiftSchedulePersistsAndReturnsShiftedPlan(t *testing.T) {
	clientID := primitive.NewObjectID()
	trainerID := primitive.NewObjectID()
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC) // a Monday
	plan := anchoredPlan(clientID, trainerID, 3, base)
	fromWeekID := plan.Weeks[1].ID

	repo := &planRepoStub{
		getByID: func(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
			require.Equal(t, plan.ID, id)
			return plan, nil
		},
		shiftSchedule: func(_ context.Context, planID primitive.ObjectID, weekID, startDateKey, timezone string) error {
			assert.Equal(t, plan.ID, planID)
			assert.Equal(t, fromWeekID, weekID)
			assert.Equal(t, "2025-10-27", startDateKey)
			assert.Equal(t, "UTC", timezone)
			return nil
		},
	}
	svc := NewScheduleService(repo)

	shifted, err := svc.ShiftSchedule(context.Background(), clientID, plan.ID, fromWeekID, "2025-10-27", "UTC")
	require.NoError(t, err)
	require.Equal(t, 1, repo.shiftCalls)

	// Week 1 untouched, weeks 2 and 3 moved forward two weeks.
	assert.Equal(t, base, *shifted.Weeks[0].ScheduledAt)
	assert.Equal(t, base.AddDate(0, 0, 21), *shifted.Weeks[1].ScheduledAt)
	assert.Equal(t, base.AddDate(0, 0, 28), *shifted.Weeks[2].ScheduledAt)
	// The snapshot handed back by the repository is never mutated in place.
	assert.Equal(t, base.AddDate(0, 0, 7), *plan.Weeks[1].ScheduledAt)
}

func TestShiftScheduleZeroOffsetSkipsMutation(t *testing.T) {
	clientID := primitive.NewObjectID()
	base := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	plan := anchoredPlan(clientID, primitive.NewObjectID(), 2, base)

	repo := &planRepoStub{
		getByID: func(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
			return plan, nil
		},
	}
	svc := NewScheduleService(repo)

	shifted, err := svc.ShiftSchedule(context.Background(), clientID, plan.ID, plan.Weeks[1].ID, "2025-10-13", "UTC")
	require.NoError(t, err)
	assert.Equal(t, 0, repo.shiftCalls)
	assert.Equal(t, base.AddDate(0, 0, 7), *shifted.Weeks[1].ScheduledAt)
}

func TestShiftScheduleSerializedPerPlan(t *testing.T) {
	clientID := primitive.NewObjectID()
	plan := anchoredPlan(clientID, primitive.NewObjectID(), 2, time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC))

	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	repo := &planRepoStub{
		getByID: func(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
			return plan, nil
		},
		shiftSchedule: func(context.Context, primitive.ObjectID, string, string, string) error {
			enteredOnce.Do(func() { close(entered) })
			<-release
			return nil
		},
	}
	svc := NewScheduleService(repo)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.ShiftSchedule(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, "2025-10-20", "UTC")
		firstDone <- err
	}()
	<-entered

	_, err := svc.ShiftSchedule(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, "2025-10-20", "UTC")
	assert.ErrorIs(t, err, ErrShiftInFlight)

	close(release)
	require.NoError(t, <-firstDone)

	// The guard clears once the first shift finishes.
	_, err = svc.ShiftSchedule(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, "2025-10-20", "UTC")
	require.NoError(t, err)
}

func TestShiftScheduleAccessAndLookupErrors(t *testing.T) {
	clientID := primitive.NewObjectID()
	plan := anchoredPlan(clientID, primitive.NewObjectID(), 2, time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC))

	t.Run("plan missing", func(t *testing.T) {
		repo := &planRepoStub{
			getByID: func(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
				return nil, repository.ErrNotFound
			},
		}
		svc := NewScheduleService(repo)
		_, err := svc.ShiftSchedule(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, "2025-10-20", "UTC")
		assert.ErrorIs(t, err, ErrTrainingPlanNotFound)
	})

	t.Run("caller is neither client nor trainer", func(t *testing.T) {
		repo := &planRepoStub{
			getByID: func(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
				return plan, nil
			},
		}
		svc := NewScheduleService(repo)
		_, err := svc.ShiftSchedule(context.Background(), primitive.NewObjectID(), plan.ID, plan.Weeks[0].ID, "2025-10-20", "UTC")
		assert.ErrorIs(t, err, ErrPlanNotAssignedToClient)
		assert.Equal(t, 0, repo.shiftCalls)
	})

	t.Run("persistence failure propagates without retry", func(t *testing.T) {
		repo := &planRepoStub{
			getByID: func(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
				return plan, nil
			},
			shiftSchedule: func(context.Context, primitive.ObjectID, string, string, string) error {
				return repository.ErrUpdateFailed
			},
		}
		svc := NewScheduleService(repo)
		_, err := svc.ShiftSchedule(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, "2025-10-20", "UTC")
		assert.ErrorIs(t, err, repository.ErrUpdateFailed)
		assert.Equal(t, 1, repo.shiftCalls)
	})
}

func TestGetMinStartDateReturnsDateKey(t *testing.T) {
	clientID := primitive.NewObjectID()
	plan := anchoredPlan(clientID, primitive.NewObjectID(), 3, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))

	repo := &planRepoStub{
		getByID: func(context.Context, primitive.ObjectID) (*domain.TrainingPlan, error) {
			return plan, nil
		},
	}
	svc := NewScheduleService(repo)

	key, err := svc.GetMinStartDate(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, time.Monday, "UTC")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, key)

	_, err = svc.GetMinStartDate(context.Background(), clientID, plan.ID, plan.Weeks[0].ID, time.Monday, "not/a/zone")
	assert.Error(t, err)
}
