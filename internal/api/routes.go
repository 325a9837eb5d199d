package api

import (
	"alcyxob/fitness-planner/internal/domain" // Needed for RoleMiddleware
	"alcyxob/fitness-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	clientService service.ClientService,
	exerciseService service.ExerciseService,
	planService service.PlanService,
) {

	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	trainerHandler := NewTrainerHandler(trainerService, planService)
	clientHandler := NewClientHandler(clientService)

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

		// --- Exercise Library Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			// Reads are open to any authenticated user; clients need them to
			// render the prescriptions in their plan.
			exerciseGroup.GET("/:id", exerciseHandler.GetExerciseByID)
			exerciseGroup.GET("/:id/video", exerciseHandler.GetDemoVideoDownloadURL)

			// Writes are trainer-only.
			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.GetTrainerExercises)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/video/upload-url", RoleMiddleware(domain.RoleTrainer), exerciseHandler.RequestDemoVideoUpload)
			exerciseGroup.POST("/:id/video/confirm", RoleMiddleware(domain.RoleTrainer), exerciseHandler.ConfirmDemoVideoUpload)
		}

		// --- Trainer Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// Roster
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)
			trainerApiGroup.GET("/clients/:clientId/logs", trainerHandler.GetClientWorkoutLogs)

			// Weekly plan composition
			trainerApiGroup.POST("/clients/:clientId/plans", trainerHandler.CreatePlan)
			trainerApiGroup.GET("/clients/:clientId/plans", trainerHandler.GetPlansForClient)
			trainerApiGroup.GET("/plans/:planId", trainerHandler.GetPlanHierarchy)
			trainerApiGroup.PUT("/plans/:planId", trainerHandler.SavePlan)
			trainerApiGroup.POST("/plans/:planId/duplicate", trainerHandler.DuplicatePlan)
			trainerApiGroup.DELETE("/plans/:planId", trainerHandler.DeletePlan)
		}

		// --- Client Routes ---
		clientApiGroup := protected.Group("/client")
		clientApiGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientApiGroup.GET("/plan", clientHandler.GetMyPlan)
			clientApiGroup.POST("/logs", clientHandler.LogWorkout)
			clientApiGroup.GET("/logs", clientHandler.GetMyWorkoutLogs)
		}
	}
}
