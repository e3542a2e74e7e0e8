package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachly/fitness-backend/internal/schedule"
	"coachly/fitness-backend/internal/service"
)

// ScheduleHandler exposes the schedule navigation and rescheduling surface of
// a training plan. Timezone and week-start query parameters fall back to the
// server-configured defaults.
type ScheduleHandler struct {
	scheduleService     service.ScheduleService
	defaultTimezone     string
	defaultWeekStartsOn time.Weekday
}

func NewScheduleHandler(scheduleService service.ScheduleService, defaultTimezone string, defaultWeekStartsOn time.Weekday) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService:     scheduleService,
		defaultTimezone:     defaultTimezone,
		defaultWeekStartsOn: defaultWeekStartsOn,
	}
}

// --- DTOs ---

type SelectionResponse struct {
	WeekID string `json:"weekId"`
	DayID  string `json:"dayId"`
}

type OverdueStatusResponse struct {
	Overdue    bool `json:"overdue"`
	MissedDays int  `json:"missedDays"`
}

type MinStartDateResponse struct {
	MinStartDate string `json:"minStartDate"`
}

type ShiftScheduleRequest struct {
	FromWeekID string `json:"fromWeekId" binding:"required"`
	StartDate  string `json:"startDate" binding:"required"` // YYYY-MM-DD
	Timezone   string `json:"timezone"`
}

// --- Handler Methods ---

// GetDefaultSelection resolves which week and day the app should open on.
func (h *ScheduleHandler) GetDefaultSelection(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}

	sel, err := h.scheduleService.GetDefaultSelection(c.Request.Context(), userID, planID, h.timezoneParam(c))
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SelectionResponse{WeekID: sel.WeekID, DayID: sel.DayID})
}

// GetOverdueStatus reports whether the plan ran past its end and how many
// scheduled days were missed.
func (h *ScheduleHandler) GetOverdueStatus(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}

	status, err := h.scheduleService.GetOverdueStatus(c.Request.Context(), userID, planID, h.timezoneParam(c))
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, OverdueStatusResponse{
		Overdue:    status.Overdue,
		MissedDays: status.MissedDays,
	})
}

// GetMinStartDate returns the earliest date a shift of the given week may target.
func (h *ScheduleHandler) GetMinStartDate(c *gin.Context) {
	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}
	fromWeekID := c.Query("fromWeekId")
	if fromWeekID == "" {
		abortWithError(c, http.StatusBadRequest, "fromWeekId query parameter is required.")
		return
	}
	weekStartsOn, err := h.weekStartsOnParam(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.scheduleService.GetMinStartDate(c.Request.Context(), userID, planID, fromWeekID, weekStartsOn, h.timezoneParam(c))
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MinStartDateResponse{MinStartDate: key})
}

// ShiftSchedule moves the given week and every later one onto a new start
// date and returns the shifted plan.
func (h *ScheduleHandler) ShiftSchedule(c *gin.Context) {
	var req ShiftScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, planID, ok := h.planRequestIDs(c)
	if !ok {
		return
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = h.defaultTimezone
	}

	plan, err := h.scheduleService.ShiftSchedule(c.Request.Context(), userID, planID, req.FromWeekID, req.StartDate, timezone)
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlanToResponse(plan))
}

// --- Helpers ---

func (h *ScheduleHandler) planRequestIDs(c *gin.Context) (userID, planID primitive.ObjectID, ok bool) {
	userID, ok = objectIDFromToken(c)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, planID, true
}

func (h *ScheduleHandler) timezoneParam(c *gin.Context) string {
	if tz := c.Query("timezone"); tz != "" {
		return tz
	}
	return h.defaultTimezone
}

func (h *ScheduleHandler) weekStartsOnParam(c *gin.Context) (time.Weekday, error) {
	raw := c.Query("weekStartsOn")
	if raw == "" {
		return h.defaultWeekStartsOn, nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(raw, wd.String()) {
			return wd, nil
		}
	}
	return 0, errors.New("weekStartsOn must be a weekday name, e.g. Monday")
}

func (h *ScheduleHandler) respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrainingPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrWeekNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanNotAssignedToClient):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrShiftInFlight):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrInvalidTimezone), errors.Is(err, schedule.ErrInvalidDateKey):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
