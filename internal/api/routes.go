package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	defaultTimezone string,
	defaultWeekStartsOn time.Weekday,
	authService service.AuthService,
	trainerService service.TrainerService,
	clientService service.ClientService,
	exerciseService service.ExerciseService,
	scheduleService service.ScheduleService,
) {
	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	trainerHandler := NewTrainerHandler(trainerService)
	clientHandler := NewClientHandler(clientService)
	scheduleHandler := NewScheduleHandler(scheduleService, defaultTimezone, defaultWeekStartsOn)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Library (trainer only) ---
		exerciseGroup := protected.Group("/exercises")
		exerciseGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetTrainerExercises)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		// --- Trainer Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)

			trainerApiGroup.POST("/clients/:clientId/plans", trainerHandler.CreateTrainingPlan)
			trainerApiGroup.GET("/clients/:clientId/plans", trainerHandler.GetTrainingPlansForClient)
			trainerApiGroup.DELETE("/plans/:planId", trainerHandler.DeleteTrainingPlan)
		}

		// --- Client Routes ---
		clientApiGroup := protected.Group("/client")
		clientApiGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientApiGroup.GET("/plans", clientHandler.GetMyTrainingPlans)
			clientApiGroup.GET("/plans/:planId", clientHandler.GetMyTrainingPlan)
			clientApiGroup.PATCH("/plans/:planId/days/:dayId/completion", clientHandler.SetDayCompletion)
			clientApiGroup.POST("/plans/:planId/complete", clientHandler.CompleteMyPlan)

			clientApiGroup.POST("/progress-photos/upload-url", clientHandler.RequestPhotoUploadURL)
			clientApiGroup.POST("/progress-photos", clientHandler.ConfirmPhoto)
			clientApiGroup.GET("/progress-photos", clientHandler.GetMyProgressPhotos)
		}

		// --- Schedule Routes (client or owning trainer) ---
		scheduleGroup := protected.Group("/plans/:planId/schedule")
		{
			scheduleGroup.GET("/selection", scheduleHandler.GetDefaultSelection)
			scheduleGroup.GET("/overdue", scheduleHandler.GetOverdueStatus)
			scheduleGroup.GET("/min-start", scheduleHandler.GetMinStartDate)
			scheduleGroup.POST("/shift", scheduleHandler.ShiftSchedule)
		}
	}
}
