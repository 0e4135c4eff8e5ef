package api

import (
	"net/http"

	"github.com/Albadylic/couch-potato/internal/agent"
	"github.com/Albadylic/couch-potato/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	planService service.PlanService,
	coachService service.CoachService,
	generator agent.PlanGenerator,
	goalAgent agent.GoalAgent,
) {
	planHandler := NewPlanHandler(planService, generator)
	coachHandler := NewCoachHandler(coachService, goalAgent)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		// --- Goal definition chat (stateless, no plan yet) ---
		apiV1.POST("/goal/chat", coachHandler.GoalChat)

		// --- Plan lifecycle ---
		planGroup := apiV1.Group("/plans")
		{
			planGroup.GET("", planHandler.ListPlans)
			planGroup.POST("", planHandler.SavePlan)
			planGroup.POST("/generate", planHandler.GeneratePlan)

			// Two-phase create: reserve an id, then commit content under it.
			planGroup.POST("/stage", planHandler.StagePlan)
			planGroup.PUT("/:id/commit", planHandler.CommitPlan)

			planGroup.GET("/:id", planHandler.GetPlan)
			planGroup.DELETE("/:id", planHandler.DeletePlan)
			planGroup.GET("/:id/status", planHandler.PlanStatus)
			planGroup.POST("/:id/backup", planHandler.BackupPlan)

			// --- Per-day progress ---
			planGroup.PUT("/:id/weeks/:weekId/days/:dayId/feedback", planHandler.RecordRunFeedback)
			planGroup.DELETE("/:id/weeks/:weekId/days/:dayId/feedback", planHandler.ClearDayProgress)

			// --- Coach conversation ---
			coachGroup := planGroup.Group("/:id/coach")
			{
				coachGroup.GET("/messages", coachHandler.GetMessages)
				coachGroup.POST("/messages", coachHandler.SendMessage)
				coachGroup.POST("/evaluations", coachHandler.RequestEvaluation)
				coachGroup.POST("/modifications/:modId/accept", coachHandler.AcceptModification)
				coachGroup.POST("/modifications/:modId/reject", coachHandler.RejectModification)
			}
		}
	}
}
