package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/service"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs for Client Management ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// --- DTOs for Training Plans ---

type CreateTrainingPlanRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Mode        domain.PlanMode     `json:"mode" binding:"required,oneof=calendar offset"`
	StartDate   string              `json:"startDate"` // YYYY-MM-DD, required for offset mode
	Timezone    string              `json:"timezone"`
	Weeks       []CreateWeekRequest `json:"weeks" binding:"required,min=1,dive"`
}

type CreateWeekRequest struct {
	ScheduledAt string             `json:"scheduledAt"` // YYYY-MM-DD, required for calendar mode
	Days        []CreateDayRequest `json:"days" binding:"dive"`
}

type CreateDayRequest struct {
	DayOfWeek      int  `json:"dayOfWeek" binding:"min=0,max=6"`
	IsRestDay      bool `json:"isRestDay"`
	ExercisesCount int  `json:"exercisesCount" binding:"min=0"`
}

type DayResponse struct {
	ID             string     `json:"id"`
	DayOfWeek      int        `json:"dayOfWeek"`
	IsRestDay      bool       `json:"isRestDay"`
	ScheduledAt    *time.Time `json:"scheduledAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	ExercisesCount int        `json:"exercisesCount"`
}

type WeekResponse struct {
	ID          string        `json:"id"`
	WeekNumber  int           `json:"weekNumber"`
	ScheduledAt *time.Time    `json:"scheduledAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Days        []DayResponse `json:"days"`
}

type TrainingPlanResponse struct {
	ID          string          `json:"id"`
	TrainerID   string          `json:"trainerId"`
	ClientID    string          `json:"clientId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Mode        domain.PlanMode `json:"mode"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	IsActive    bool            `json:"isActive"`
	Weeks       []WeekResponse  `json:"weeks"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// --- Handler Methods for Client Management ---

// AddClientByEmail associates an existing client user with the authenticated trainer.
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotRole) || errors.Is(err, service.ErrClientAlreadyAssigned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients retrieves the clients managed by the authenticated trainer.
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}

	if clients == nil {
		c.JSON(http.StatusOK, []UserResponse{})
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// --- Handler Methods for Training Plans ---

// CreateTrainingPlan creates a plan for one of the trainer's clients.
func (h *TrainerHandler) CreateTrainingPlan(c *gin.Context) {
	var req CreateTrainingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	input := service.PlanInput{
		Name:        req.Name,
		Description: req.Description,
		Mode:        req.Mode,
		StartDate:   req.StartDate,
		Timezone:    req.Timezone,
	}
	for _, w := range req.Weeks {
		week := service.WeekInput{ScheduledAt: w.ScheduledAt}
		for _, d := range w.Days {
			week.Days = append(week.Days, service.DayInput{
				DayOfWeek:      d.DayOfWeek,
				IsRestDay:      d.IsRestDay,
				ExercisesCount: d.ExercisesCount,
			})
		}
		input.Weeks = append(input.Weeks, week)
	}

	plan, err := h.trainerService.CreateTrainingPlan(c.Request.Context(), trainerID, clientID, input)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotManaged) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrInvalidPlanStructure) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create training plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapTrainingPlanToResponse(plan))
}

// GetTrainingPlansForClient lists the plans the trainer created for a client.
func (h *TrainerHandler) GetTrainingPlansForClient(c *gin.Context) {
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	plans, err := h.trainerService.GetTrainingPlansForClient(c.Request.Context(), trainerID, clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve training plans.")
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlansToResponse(plans))
}

// DeleteTrainingPlan removes a plan owned by the trainer.
func (h *TrainerHandler) DeleteTrainingPlan(c *gin.Context) {
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	if err := h.trainerService.DeleteTrainingPlan(c.Request.Context(), trainerID, planID); err != nil {
		if errors.Is(err, service.ErrTrainingPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete training plan.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// objectIDFromToken reads the authenticated user's id from the request
// context. On failure it writes the error response and returns ok=false.
func objectIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// MapUsersToResponse converts a slice of domain.User to UserResponse DTOs.
func MapUsersToResponse(users []domain.User) []UserResponse {
	userResponses := make([]UserResponse, len(users))
	for i, u := range users {
		userResponses[i] = MapUserToResponse(&u)
	}
	return userResponses
}

// MapTrainingPlanToResponse converts a domain plan, weeks and days included.
func MapTrainingPlanToResponse(plan *domain.TrainingPlan) TrainingPlanResponse {
	if plan == nil {
		return TrainingPlanResponse{}
	}

	resp := TrainingPlanResponse{
		ID:          plan.ID.Hex(),
		TrainerID:   plan.TrainerID.Hex(),
		ClientID:    plan.ClientID.Hex(),
		Name:        plan.Name,
		Description: plan.Description,
		Mode:        plan.Mode,
		StartDate:   plan.StartDate,
		CompletedAt: plan.CompletedAt,
		IsActive:    plan.IsActive,
		Weeks:       make([]WeekResponse, 0, len(plan.Weeks)),
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
	for _, w := range plan.Weeks {
		week := WeekResponse{
			ID:          w.ID,
			WeekNumber:  w.WeekNumber,
			ScheduledAt: w.ScheduledAt,
			CompletedAt: w.CompletedAt,
			Days:        make([]DayResponse, 0, len(w.Days)),
		}
		for _, d := range w.Days {
			week.Days = append(week.Days, DayResponse{
				ID:             d.ID,
				DayOfWeek:      d.DayOfWeek,
				IsRestDay:      d.IsRestDay,
				ScheduledAt:    d.ScheduledAt,
				CompletedAt:    d.CompletedAt,
				ExercisesCount: d.ExercisesCount,
			})
		}
		resp.Weeks = append(resp.Weeks, week)
	}
	return resp
}

func MapTrainingPlansToResponse(plans []domain.TrainingPlan) []TrainingPlanResponse {
	out := make([]TrainingPlanResponse, len(plans))
	for i := range plans {
		out[i] = MapTrainingPlanToResponse(&plans[i])
	}
	return out
}
