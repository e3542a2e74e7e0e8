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

type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscleGroup"`
	Difficulty  string `json:"difficulty" binding:"omitempty,oneof=novice medium advanced"`
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"`
}

type ExerciseResponse struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// --- Handler Methods ---

// CreateExercise adds a new exercise to the trainer's library.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), trainerID, req.Name, req.Description, req.MuscleGroup, req.Difficulty, req.VideoURL)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetTrainerExercises lists the authenticated trainer's exercise library.
func (h *ExerciseHandler) GetTrainerExercises(c *gin.Context) {
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.GetExercisesByTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	if exercises == nil {
		c.JSON(http.StatusOK, []ExerciseResponse{})
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// UpdateExercise modifies an exercise owned by the trainer.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), trainerID, exerciseID, req.Name, req.Description, req.MuscleGroup, req.Difficulty, req.VideoURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise removes an exercise owned by the trainer.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

func MapExerciseToResponse(e *domain.Exercise) ExerciseResponse {
	if e == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          e.ID.Hex(),
		TrainerID:   e.TrainerID.Hex(),
		Name:        e.Name,
		Description: e.Description,
		MuscleGroup: e.MuscleGroup,
		Difficulty:  e.Difficulty,
		VideoURL:    e.VideoURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	out := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		out[i] = MapExerciseToResponse(&exercises[i])
	}
	return out
}
