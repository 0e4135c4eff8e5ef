package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Albadylic/couch-potato/internal/agent"
	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service and generator dependencies.
type PlanHandler struct {
	planService service.PlanService
	generator   agent.PlanGenerator
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService, generator agent.PlanGenerator) *PlanHandler {
	return &PlanHandler{planService: planService, generator: generator}
}

// --- DTOs ---

// SavePlanRequest carries a goal snapshot plus an already-generated plan.
type SavePlanRequest struct {
	Goal domain.Goal `json:"goal" binding:"required"`
	Plan domain.Plan `json:"plan" binding:"required"`
}

// GeneratePlanRequest carries the confirmed goal to generate a plan from.
type GeneratePlanRequest struct {
	Goal domain.Goal `json:"goal" binding:"required"`
}

// RunFeedbackRequest is the per-day progress payload.
type RunFeedbackRequest struct {
	Status          domain.RunStatus `json:"status" binding:"required"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	PerceivedEffort *int             `json:"perceivedEffort,omitempty" binding:"omitempty,min=1,max=10"`
	FeelingRating   *int             `json:"feelingRating,omitempty" binding:"omitempty,min=1,max=5"`
	Notes           string           `json:"notes,omitempty"`
}

// --- Handler Methods ---

// SavePlan persists a plan the client already holds (POST /plans).
func (h *PlanHandler) SavePlan(c *gin.Context) {
	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if len(req.Plan.Weeks) == 0 {
		abortWithError(c, http.StatusBadRequest, "Plan must have at least 1 week.")
		return
	}

	saved, err := h.planService.CreatePlan(c.Request.Context(), req.Goal, req.Plan)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save plan.")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// GeneratePlan runs the plan generator for a confirmed goal and saves the
// result (POST /plans/generate).
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	plan, err := h.generator.GeneratePlan(c.Request.Context(), req.Goal)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrEmptyPlan):
			abortWithError(c, http.StatusUnprocessableEntity, "The generated plan was empty. Please try again.")
		case errors.Is(err, agent.ErrSchemaValidation), errors.Is(err, agent.ErrEmptyAgentOutput):
			abortWithError(c, http.StatusUnprocessableEntity, "Plan generation failed. Please try again.")
		default:
			abortWithError(c, http.StatusBadGateway, "Plan generation is currently unavailable.")
		}
		return
	}

	saved, err := h.planService.CreatePlan(c.Request.Context(), req.Goal, *plan)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save generated plan.")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// StagePlan reserves a plan id ahead of a commit (POST /plans/stage).
func (h *PlanHandler) StagePlan(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": h.planService.StagePlan()})
}

// CommitPlan persists plan content under a staged id; repeating the call is
// idempotent (PUT /plans/:id/commit).
func (h *PlanHandler) CommitPlan(c *gin.Context) {
	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if len(req.Plan.Weeks) == 0 {
		abortWithError(c, http.StatusBadRequest, "Plan must have at least 1 week.")
		return
	}

	saved, err := h.planService.CommitPlan(c.Request.Context(), c.Param("id"), req.Goal, req.Plan)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to commit plan.")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetPlan returns one saved plan (GET /plans/:id).
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load plan.")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListPlans returns all saved plans (GET /plans).
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plans.")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// DeletePlan removes a saved plan (DELETE /plans/:id). Idempotent.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.planService.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
		return
	}
	c.Status(http.StatusNoContent)
}

// PlanStatus returns the derived current week and per-week summaries
// (GET /plans/:id/status).
func (h *PlanHandler) PlanStatus(c *gin.Context) {
	status, err := h.planService.PlanStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to compute plan status.")
		}
		return
	}
	c.JSON(http.StatusOK, status)
}

// RecordRunFeedback writes one day's progress entry
// (PUT /plans/:id/weeks/:weekId/days/:dayId/feedback).
func (h *PlanHandler) RecordRunFeedback(c *gin.Context) {
	weekID, ok := intParam(c, "weekId")
	if !ok {
		return
	}
	dayID, ok := intParam(c, "dayId")
	if !ok {
		return
	}

	var req RunFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	feedback := domain.RunFeedback{
		Status:          req.Status,
		PerceivedEffort: req.PerceivedEffort,
		FeelingRating:   req.FeelingRating,
		Notes:           req.Notes,
	}
	if req.CompletedAt != nil {
		feedback.CompletedAt = *req.CompletedAt
	}

	err := h.planService.RecordRunFeedback(c.Request.Context(), c.Param("id"), weekID, dayID, feedback)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to record feedback.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearDayProgress removes one day's progress entry
// (DELETE /plans/:id/weeks/:weekId/days/:dayId/feedback).
func (h *PlanHandler) ClearDayProgress(c *gin.Context) {
	weekID, ok := intParam(c, "weekId")
	if !ok {
		return
	}
	dayID, ok := intParam(c, "dayId")
	if !ok {
		return
	}

	if err := h.planService.ClearDayProgress(c.Request.Context(), c.Param("id"), weekID, dayID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to clear progress.")
		return
	}
	c.Status(http.StatusNoContent)
}

// BackupPlan snapshots the aggregate to object storage
// (POST /plans/:id/backup).
func (h *PlanHandler) BackupPlan(c *gin.Context) {
	receipt, err := h.planService.BackupPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBackupDisabled):
			abortWithError(c, http.StatusNotImplemented, "Plan backups are not configured.")
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "Plan not found.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to back up plan.")
		}
		return
	}
	c.JSON(http.StatusOK, receipt)
}
