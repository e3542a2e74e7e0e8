package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/repository"
	"coachly/fitness-backend/internal/schedule"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
	ErrInvalidPlanStructure  = errors.New("invalid plan structure")
)

// PlanInput is the authoring shape for a new training plan. Week numbers are
// assigned from position; week and day ids are minted here.
type PlanInput struct {
	Name        string
	Description string
	Mode        domain.PlanMode
	StartDate   string // date key, required for offset mode
	Timezone    string // interprets the date keys below
	Weeks       []WeekInput
}

type WeekInput struct {
	ScheduledAt string // date key of the week's day-0 slot; required for calendar mode
	Days        []DayInput
}

type DayInput struct {
	DayOfWeek      int
	IsRestDay      bool
	ExercisesCount int
}

type TrainerService interface {
	// Client Management
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	// Training Plan Management
	CreateTrainingPlan(ctx context.Context, trainerID, clientID primitive.ObjectID, input PlanInput) (*domain.TrainingPlan, error)
	GetTrainingPlansForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.TrainingPlan, error)
	DeleteTrainingPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error
}

// --- Service Implementation ---

type trainerService struct {
	userRepo repository.UserRepository
	planRepo repository.TrainingPlanRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(userRepo repository.UserRepository, planRepo repository.TrainingPlanRepository) TrainerService {
	return &trainerService{
		userRepo: userRepo,
		planRepo: planRepo,
	}
}

// === Client Management ===

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			// Already managed by this trainer.
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		return nil, err
	}

	client.TrainerID = &trainerID
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// === Training Plan Management ===

// CreateTrainingPlan validates and persists a new plan for a managed client.
// Structural invariants (unique day slots, mode-appropriate anchors) are
// enforced here, at the loader boundary, so the schedule engine can assume
// well-formed plans.
func (s *trainerService) CreateTrainingPlan(ctx context.Context, trainerID, clientID primitive.ObjectID, input PlanInput) (*domain.TrainingPlan, error) {
	if trainerID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and client ID are required")
	}
	if err := s.requireManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	plan, err := buildPlan(trainerID, clientID, input)
	if err != nil {
		return nil, err
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// GetTrainingPlansForClient retrieves plans the trainer created for a client.
func (s *trainerService) GetTrainingPlansForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	if trainerID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and client ID are required")
	}
	return s.planRepo.GetByClientAndTrainerID(ctx, clientID, trainerID)
}

// DeleteTrainingPlan removes a plan owned by the trainer.
func (s *trainerService) DeleteTrainingPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTrainingPlanNotFound
	}
	return err
}

func (s *trainerService) requireManagedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return ErrClientNotManaged
	}
	return nil
}

// buildPlan turns authoring input into a domain plan: ids minted, week
// numbers assigned from position, anchors derived from date keys, and every
// day anchor aligned to its week start.
func buildPlan(trainerID, clientID primitive.ObjectID, input PlanInput) (*domain.TrainingPlan, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPlanStructure)
	}
	if len(input.Weeks) == 0 {
		return nil, fmt.Errorf("%w: at least one week is required", ErrInvalidPlanStructure)
	}
	switch input.Mode {
	case domain.PlanModeCalendar, domain.PlanModeOffset:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidPlanStructure, input.Mode)
	}
	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	plan := &domain.TrainingPlan{
		TrainerID:   trainerID,
		ClientID:    clientID,
		Name:        input.Name,
		Description: input.Description,
		Mode:        input.Mode,
		IsActive:    true,
	}

	if input.Mode == domain.PlanModeOffset {
		if input.StartDate == "" {
			return nil, fmt.Errorf("%w: offset plans require a start date", ErrInvalidPlanStructure)
		}
		start, err := schedule.KeyToInstant(input.StartDate, timezone)
		if err != nil {
			return nil, err
		}
		plan.StartDate = &start
	}

	for i, wi := range input.Weeks {
		week := domain.Week{
			ID:         uuid.NewString(),
			WeekNumber: i + 1,
		}
		if input.Mode == domain.PlanModeCalendar && wi.ScheduledAt == "" {
			return nil, fmt.Errorf("%w: calendar plans require every week anchored", ErrInvalidPlanStructure)
		}
		if wi.ScheduledAt != "" {
			anchor, err := schedule.KeyToInstant(wi.ScheduledAt, timezone)
			if err != nil {
				return nil, err
			}
			week.ScheduledAt = &anchor
		}

		seen := make(map[int]bool, len(wi.Days))
		for _, di := range wi.Days {
			if di.DayOfWeek < 0 || di.DayOfWeek > 6 {
				return nil, fmt.Errorf("%w: dayOfWeek %d out of range", ErrInvalidPlanStructure, di.DayOfWeek)
			}
			if seen[di.DayOfWeek] {
				return nil, fmt.Errorf("%w: duplicate dayOfWeek %d in week %d", ErrInvalidPlanStructure, di.DayOfWeek, week.WeekNumber)
			}
			if di.ExercisesCount < 0 {
				return nil, fmt.Errorf("%w: negative exercisesCount", ErrInvalidPlanStructure)
			}
			seen[di.DayOfWeek] = true

			day := domain.Day{
				ID:             uuid.NewString(),
				DayOfWeek:      di.DayOfWeek,
				IsRestDay:      di.IsRestDay,
				ExercisesCount: di.ExercisesCount,
			}
			if week.ScheduledAt != nil {
				at := week.ScheduledAt.AddDate(0, 0, di.DayOfWeek)
				day.ScheduledAt = &at
			}
			week.Days = append(week.Days, day)
		}
		plan.Weeks = append(plan.Weeks, week)
	}
	return plan, nil
}
