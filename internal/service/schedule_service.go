package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/repository"
	"coachly/fitness-backend/internal/schedule"
)

// ErrShiftInFlight reports a second shift attempt on a plan whose previous
// shift has not finished yet. Shifts are serialized per plan because they
// rewrite the whole week suffix.
var ErrShiftInFlight = errors.New("a schedule shift for this plan is already in progress")

// OverdueStatus is the overdue surface for one plan at one instant.
type OverdueStatus struct {
	Overdue    bool
	MissedDays int
}

type ScheduleService interface {
	// GetDefaultSelection resolves the week and day the client's app should
	// open on, evaluated at the current instant in the given timezone.
	GetDefaultSelection(ctx context.Context, userID, planID primitive.ObjectID, timezone string) (schedule.Selection, error)

	// GetOverdueStatus reports whether the plan has run past its end and how
	// many scheduled workout days lie on past calendar dates uncompleted.
	GetOverdueStatus(ctx context.Context, userID, planID primitive.ObjectID, timezone string) (OverdueStatus, error)

	// GetMinStartDate returns the earliest date key a shift of fromWeekID may
	// target, for the given week-start preference.
	GetMinStartDate(ctx context.Context, userID, planID primitive.ObjectID, fromWeekID string, weekStartsOn time.Weekday, timezone string) (string, error)

	// ShiftSchedule moves fromWeekID and all later weeks so the from week
	// starts on startDateKey, persists the result, and returns the shifted
	// plan. A zero-offset shift is a no-op and issues no mutation.
	ShiftSchedule(ctx context.Context, userID, planID primitive.ObjectID, fromWeekID, startDateKey, timezone string) (*domain.TrainingPlan, error)
}

type scheduleService struct {
	planRepo repository.TrainingPlanRepository

	mu       sync.Mutex
	inFlight map[primitive.ObjectID]struct{}
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(planRepo repository.TrainingPlanRepository) ScheduleService {
	return &scheduleService{
		planRepo: planRepo,
		inFlight: make(map[primitive.ObjectID]struct{}),
	}
}

func (s *scheduleService) GetDefaultSelection(ctx context.Context, userID, planID primitive.ObjectID, timezone string) (schedule.Selection, error) {
	plan, err := s.getPlanForUser(ctx, userID, planID)
	if err != nil {
		return schedule.Selection{}, err
	}
	loc, err := schedule.LoadLocation(timezone)
	if err != nil {
		return schedule.Selection{}, err
	}
	return schedule.Resolve(plan, time.Now().In(loc)), nil
}

func (s *scheduleService) GetOverdueStatus(ctx context.Context, userID, planID primitive.ObjectID, timezone string) (OverdueStatus, error) {
	plan, err := s.getPlanForUser(ctx, userID, planID)
	if err != nil {
		return OverdueStatus{}, err
	}
	loc, err := schedule.LoadLocation(timezone)
	if err != nil {
		return OverdueStatus{}, err
	}
	now := time.Now().In(loc)

	missed, err := schedule.CountMissedDays(plan, now, timezone)
	if err != nil {
		return OverdueStatus{}, err
	}
	return OverdueStatus{
		Overdue:    schedule.IsPlanOverdue(plan, now),
		MissedDays: missed,
	}, nil
}

func (s *scheduleService) GetMinStartDate(ctx context.Context, userID, planID primitive.ObjectID, fromWeekID string, weekStartsOn time.Weekday, timezone string) (string, error) {
	plan, err := s.getPlanForUser(ctx, userID, planID)
	if err != nil {
		return "", err
	}
	loc, err := schedule.LoadLocation(timezone)
	if err != nil {
		return "", err
	}
	min, err := schedule.ComputeMinStartDate(plan, fromWeekID, weekStartsOn, time.Now().In(loc))
	if err != nil {
		return "", err
	}
	return schedule.DateToKey(min, timezone)
}

func (s *scheduleService) ShiftSchedule(ctx context.Context, userID, planID primitive.ObjectID, fromWeekID, startDateKey, timezone string) (*domain.TrainingPlan, error) {
	if err := s.acquireShift(planID); err != nil {
		return nil, err
	}
	defer s.releaseShift(planID)

	// Always compute against a fresh snapshot; a stale plan in the caller's
	// hands must not decide the offset.
	plan, err := s.getPlanForUser(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	result, err := schedule.ComputeShift(plan, fromWeekID, startDateKey, timezone)
	if err != nil {
		return nil, err
	}
	if result.OffsetDays == 0 {
		return result.Plan, nil
	}

	if err := s.planRepo.ShiftSchedule(ctx, planID, fromWeekID, startDateKey, timezone); err != nil {
		return nil, err
	}
	return result.Plan, nil
}

func (s *scheduleService) acquireShift(planID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[planID]; busy {
		return ErrShiftInFlight
	}
	s.inFlight[planID] = struct{}{}
	return nil
}

func (s *scheduleService) releaseShift(planID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, planID)
}

// getPlanForUser loads a plan and checks the caller is either the client it
// is assigned to or the trainer who authored it.
func (s *scheduleService) getPlanForUser(ctx context.Context, userID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingPlanNotFound
		}
		return nil, err
	}
	if plan.ClientID != userID && plan.TrainerID != userID {
		return nil, ErrPlanNotAssignedToClient
	}
	return plan, nil
}
