// Package agent is the LLM call boundary: prompt construction, model
// invocation, and sanitization of what comes back. Everything behind the
// interfaces here is an external collaborator; the rest of the application
// only ever sees structured responses or one of the error classes below.
package agent

import (
	"context"
	"errors"

	"github.com/Albadylic/couch-potato/internal/domain"
)

var (
	// ErrSchemaValidation marks agent output that failed its structural
	// contract. The API layer pattern-matches on it to show a retry-oriented
	// message instead of a generic failure.
	ErrSchemaValidation = errors.New("coach schema validation failed")

	// ErrEmptyAgentOutput marks a call that nominally succeeded but produced
	// nothing usable. Hard failure of that single call; never auto-retried.
	ErrEmptyAgentOutput = errors.New("agent returned no output")

	// ErrEmptyPlan marks a generated plan with zero weeks: technically valid
	// output that is useless, rejected as its own failure reason.
	ErrEmptyPlan = errors.New("generated plan has no weeks")
)

// CoachAgent runs one turn of the coach conversation against the model.
type CoachAgent interface {
	ProcessConversation(ctx context.Context, coachCtx domain.CoachContext, userMessage string) (*domain.CoachAgentResponse, error)
}

// GoalAgentResponse is one turn of the goal-definition conversation: a
// conversational reply plus the accumulated goal draft and readiness flags.
type GoalAgentResponse struct {
	Reply                string           `json:"reply"`
	Goal                 domain.GoalDraft `json:"goal"`
	IsComplete           bool             `json:"isComplete"`
	ReadyForConfirmation bool             `json:"readyForConfirmation"`
}

// GoalAgent extracts a structured goal from a free-form conversation.
type GoalAgent interface {
	ProcessGoalConversation(ctx context.Context, tone string, current domain.GoalDraft, history []ChatTurn, userMessage string) (*GoalAgentResponse, error)
}

// PlanGenerator turns a confirmed goal into a structured training plan.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, goal domain.Goal) (*domain.Plan, error)
}

// ChatTurn is one prior exchange in the goal conversation.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "agent"
	Content string `json:"content"`
}
