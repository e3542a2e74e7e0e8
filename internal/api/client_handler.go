package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/service"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type SetDayCompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type PhotoUploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0"`
	ContentType string `json:"contentType" binding:"required"`
}

type PhotoUploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ConfirmPhotoRequest struct {
	ObjectKey   string     `json:"objectKey" binding:"required"`
	FileName    string     `json:"fileName" binding:"required"`
	FileSize    int64      `json:"fileSize" binding:"required,gt=0"`
	ContentType string     `json:"contentType" binding:"required"`
	TakenAt     *time.Time `json:"takenAt"`
}

type ProgressPhotoResponse struct {
	ID          string     `json:"id"`
	FileName    string     `json:"fileName"`
	FileSize    int64      `json:"fileSize"`
	ContentType string     `json:"contentType"`
	TakenAt     *time.Time `json:"takenAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DownloadURL string     `json:"downloadUrl"`
}

// --- Handler Methods for Training Plans ---

// GetMyTrainingPlans lists the authenticated client's plans.
func (h *ClientHandler) GetMyTrainingPlans(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	plans, err := h.clientService.GetMyTrainingPlans(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve training plans.")
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlansToResponse(plans))
}

// GetMyTrainingPlan fetches one of the client's plans by id.
func (h *ClientHandler) GetMyTrainingPlan(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	plan, err := h.clientService.GetMyTrainingPlan(c.Request.Context(), clientID, planID)
	if err != nil {
		respondPlanAccessError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlanToResponse(plan))
}

// SetDayCompletion marks or clears completion of a single day in a plan.
func (h *ClientHandler) SetDayCompletion(c *gin.Context) {
	var req SetDayCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	dayID := c.Param("dayId")

	err = h.clientService.SetDayCompletion(c.Request.Context(), clientID, planID, dayID, *req.Completed)
	if err != nil {
		if errors.Is(err, service.ErrDayNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			respondPlanAccessError(c, err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteMyPlan marks the whole plan as finished.
func (h *ClientHandler) CompleteMyPlan(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	if err := h.clientService.CompleteMyPlan(c.Request.Context(), clientID, planID); err != nil {
		respondPlanAccessError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Handler Methods for Progress Photos ---

// RequestPhotoUploadURL hands back a presigned PUT URL for a new photo.
func (h *ClientHandler) RequestPhotoUploadURL(c *gin.Context) {
	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	result, err := h.clientService.RequestProgressPhotoUploadURL(c.Request.Context(), clientID, service.PhotoUploadRequest{
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		ContentType: req.ContentType,
	})
	if err != nil {
		if errors.Is(err, service.ErrProgressPhotoNotAllowed) || errors.Is(err, service.ErrProgressPhotoSizeInvalid) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, PhotoUploadURLResponse{
		UploadURL: result.UploadURL,
		ObjectKey: result.ObjectKey,
	})
}

// ConfirmPhoto records metadata after the client uploaded the object.
func (h *ClientHandler) ConfirmPhoto(c *gin.Context) {
	var req ConfirmPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	photo, err := h.clientService.ConfirmProgressPhoto(c.Request.Context(), clientID, req.ObjectKey, req.FileName, req.ContentType, req.FileSize, req.TakenAt)
	if err != nil {
		if errors.Is(err, service.ErrProgressPhotoNotAllowed) || errors.Is(err, service.ErrProgressPhotoSizeInvalid) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to record progress photo.")
		}
		return
	}

	c.JSON(http.StatusCreated, ProgressPhotoResponse{
		ID:          photo.ID.Hex(),
		FileName:    photo.FileName,
		FileSize:    photo.FileSize,
		ContentType: photo.ContentType,
		TakenAt:     photo.TakenAt,
		CreatedAt:   photo.CreatedAt,
	})
}

// GetMyProgressPhotos lists the client's photos with fresh download URLs.
func (h *ClientHandler) GetMyProgressPhotos(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	views, err := h.clientService.GetMyProgressPhotos(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve progress photos.")
		return
	}

	out := make([]ProgressPhotoResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ProgressPhotoResponse{
			ID:          v.Photo.ID.Hex(),
			FileName:    v.Photo.FileName,
			FileSize:    v.Photo.FileSize,
			ContentType: v.Photo.ContentType,
			TakenAt:     v.Photo.TakenAt,
			CreatedAt:   v.Photo.CreatedAt,
			DownloadURL: v.DownloadURL,
		})
	}
	c.JSON(http.StatusOK, out)
}

// respondPlanAccessError maps plan lookup/ownership errors to HTTP statuses.
func respondPlanAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrainingPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanNotAssignedToClient):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
