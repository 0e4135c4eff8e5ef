package api

import (
	"errors"
	"net/http"

	"github.com/Albadylic/couch-potato/internal/agent"
	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/service"

	"github.com/gin-gonic/gin"
)

// CoachHandler holds the coach service and goal agent dependencies.
type CoachHandler struct {
	coachService service.CoachService
	goalAgent    agent.GoalAgent
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService, goalAgent agent.GoalAgent) *CoachHandler {
	return &CoachHandler{coachService: coachService, goalAgent: goalAgent}
}

// --- DTOs ---

// SendMessageRequest is one user turn of the coach conversation.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// EvaluationRequest names the completed week to evaluate.
type EvaluationRequest struct {
	WeekID int `json:"weekId" binding:"required"`
}

// GoalChatRequest is one user turn of the goal-definition conversation. The
// client carries the draft and history between turns; the server holds no
// goal-chat state.
type GoalChatRequest struct {
	Tone    string           `json:"tone"`
	Goal    domain.GoalDraft `json:"goal"`
	History []agent.ChatTurn `json:"history"`
	Content string           `json:"content" binding:"required"`
}

// --- Handler Methods ---

// GetMessages returns a plan's conversation history
// (GET /plans/:id/coach/messages).
func (h *CoachHandler) GetMessages(c *gin.Context) {
	messages, err := h.coachService.GetMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Plan not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load messages.")
		}
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage runs one coach conversation turn
// (POST /plans/:id/coach/messages).
func (h *CoachHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	message, err := h.coachService.SendMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.abortWithAgentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// RequestEvaluation runs the weekly evaluation turn for a completed week
// (POST /plans/:id/coach/evaluations).
func (h *CoachHandler) RequestEvaluation(c *gin.Context) {
	var req EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	message, err := h.coachService.RequestWeeklyEvaluation(c.Request.Context(), c.Param("id"), req.WeekID)
	if err != nil {
		if errors.Is(err, service.ErrWeekNotFound) {
			abortWithError(c, http.StatusNotFound, "Week not found in plan.")
			return
		}
		h.abortWithAgentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// AcceptModification applies a pending proposal to the plan
// (POST /plans/:id/coach/modifications/:modId/accept).
func (h *CoachHandler) AcceptModification(c *gin.Context) {
	err := h.coachService.AcceptModification(c.Request.Context(), c.Param("id"), c.Param("modId"))
	if err != nil {
		if errors.Is(err, service.ErrModificationNotFound) {
			abortWithError(c, http.StatusNotFound, "Modification not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to apply modification.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// RejectModification declines a pending proposal
// (POST /plans/:id/coach/modifications/:modId/reject).
func (h *CoachHandler) RejectModification(c *gin.Context) {
	err := h.coachService.RejectModification(c.Request.Context(), c.Param("id"), c.Param("modId"))
	if err != nil {
		if errors.Is(err, service.ErrModificationNotFound) {
			abortWithError(c, http.StatusNotFound, "Modification not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to reject modification.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GoalChat runs one turn of the goal-definition conversation
// (POST /goal/chat).
func (h *CoachHandler) GoalChat(c *gin.Context) {
	var req GoalChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	response, err := h.goalAgent.ProcessGoalConversation(c.Request.Context(), req.Tone, req.Goal, req.History, req.Content)
	if err != nil {
		h.abortWithAgentError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// abortWithAgentError maps the agent error taxonomy onto responses. Schema
// failures get the distinct retry-oriented message so the user knows trying
// again (more specifically) is the right move.
func (h *CoachHandler) abortWithAgentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, "Plan not found.")
	case errors.Is(err, agent.ErrSchemaValidation):
		abortWithError(c, http.StatusUnprocessableEntity, retryModificationMessage)
	case errors.Is(err, agent.ErrEmptyAgentOutput):
		abortWithError(c, http.StatusBadGateway, "The coach did not respond. Please try again.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Sorry, I had trouble responding. Please try again.")
	}
}
