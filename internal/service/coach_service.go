package service

import (
	"context"
	"errors"
	"time"

	"github.com/Albadylic/couch-potato/internal/agent"
	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/repository"

	"github.com/google/uuid"
)

// CoachService orchestrates coach conversation turns: it is the only caller
// of the coach agent, and the only writer of conversation history and
// proposal state.
type CoachService interface {
	GetMessages(ctx context.Context, planID string) ([]domain.CoachMessage, error)
	SendMessage(ctx context.Context, planID, content string) (*domain.CoachMessage, error)
	RequestWeeklyEvaluation(ctx context.Context, planID string, weekID int) (*domain.CoachMessage, error)
	AcceptModification(ctx context.Context, planID, modificationID string) error
	RejectModification(ctx context.Context, planID, modificationID string) error
}

// coachService implements CoachService.
type coachService struct {
	plans       PlanService
	messageRepo repository.CoachMessageRepository
	coach       agent.CoachAgent
	now         func() time.Time
}

// NewCoachService creates a new coach service.
func NewCoachService(plans PlanService, messageRepo repository.CoachMessageRepository, coach agent.CoachAgent) CoachService {
	return &coachService{
		plans:       plans,
		messageRepo: messageRepo,
		coach:       coach,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetMessages returns a plan's conversation history in chronological order.
func (s *coachService) GetMessages(ctx context.Context, planID string) ([]domain.CoachMessage, error) {
	if _, err := s.plans.GetPlan(ctx, planID); err != nil {
		return nil, err
	}
	return s.messageRepo.GetByPlanID(ctx, planID)
}

// SendMessage runs one conversation turn: persist the user message, call the
// agent with the full context, persist the coach reply, and attach a pending
// modification proposal when the agent returned one.
//
// Agent errors propagate to the caller after the user message is saved, so a
// failed turn leaves the user's words in the history; schema-validation
// errors keep their identity through the wrapping for the API layer to match.
func (s *coachService) SendMessage(ctx context.Context, planID, content string) (*domain.CoachMessage, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	userMessage := &domain.CoachMessage{
		ID:        uuid.NewString(),
		PlanID:    planID,
		Role:      domain.RoleUser,
		Content:   content,
		Timestamp: s.now(),
	}
	if err := s.messageRepo.Append(ctx, userMessage); err != nil {
		return nil, err
	}

	coachCtx := domain.BuildCoachContext(
		plan.Goal,
		plan.Plan,
		plan.Progress,
		domain.CurrentWeek(plan.Plan, plan.Progress),
		history,
	)
	return s.runAgentTurn(ctx, plan, coachCtx, content)
}

// RequestWeeklyEvaluation runs the scripted weekly-evaluation turn for one
// completed week. Unlike every other lookup in the system, a missing week id
// here is a hard error: there is nothing meaningful to evaluate without it.
// The synthesized user prompt is not persisted; only the coach reply joins
// the history, matching the manual-trigger behavior.
func (s *coachService) RequestWeeklyEvaluation(ctx context.Context, planID string, weekID int) (*domain.CoachMessage, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	summary, ok := domain.SummaryForWeek(plan.Plan, plan.Progress, weekID)
	if !ok {
		return nil, ErrWeekNotFound
	}

	history, err := s.messageRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	coachCtx := domain.BuildCoachContext(
		plan.Goal,
		plan.Plan,
		plan.Progress,
		domain.CurrentWeek(plan.Plan, plan.Progress),
		history,
	)
	return s.runAgentTurn(ctx, plan, coachCtx, agent.EvaluationPrompt(summary))
}

// runAgentTurn calls the agent and persists its reply, attaching a sanitized
// and validated proposal when one came back. Validation runs before the reply
// is appended: a schema-invalid proposal fails the whole turn, so the history
// never holds a coach message promising a modification that was never
// attached.
func (s *coachService) runAgentTurn(ctx context.Context, plan *domain.SavedPlan, coachCtx domain.CoachContext, prompt string) (*domain.CoachMessage, error) {
	response, err := s.coach.ProcessConversation(ctx, coachCtx, prompt)
	if err != nil {
		return nil, err
	}

	var proposal *domain.PlanModificationProposal
	if response.PlanModification != nil {
		sanitized := agent.SanitizeProposal(*response.PlanModification)
		if err := agent.ValidateProposal(plan.Plan, sanitized); err != nil {
			return nil, err
		}
		proposal = &domain.PlanModificationProposal{
			ID:            uuid.NewString(),
			Status:        domain.ModificationPending,
			Description:   sanitized.Description,
			Changes:       sanitized.Changes,
			ProposedWeeks: sanitized.ProposedWeeks,
			FromWeekID:    sanitized.FromWeekID,
		}
	}

	coachMessage := &domain.CoachMessage{
		ID:        uuid.NewString(),
		PlanID:    plan.ID,
		Role:      domain.RoleCoach,
		Content:   response.Reply,
		Timestamp: s.now(),
	}
	if err := s.messageRepo.Append(ctx, coachMessage); err != nil {
		return nil, err
	}

	if proposal != nil {
		if err := s.messageRepo.AttachModification(ctx, plan.ID, coachMessage.ID, *proposal); err != nil {
			return nil, err
		}
		coachMessage.PlanModification = proposal
	}
	return coachMessage, nil
}

// AcceptModification marks the proposal accepted and applies its replacement
// weeks to the plan. Accepted is terminal; the store does not guard against
// re-transitioning, so callers see last-write-wins semantics on a repeat.
func (s *coachService) AcceptModification(ctx context.Context, planID, modificationID string) error {
	mod, err := s.messageRepo.GetModification(ctx, planID, modificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrModificationNotFound
		}
		return err
	}
	if err := s.messageRepo.UpdateModificationStatus(ctx, planID, modificationID, domain.ModificationAccepted); err != nil {
		return err
	}
	return s.plans.ApplyModification(ctx, planID, mod.ProposedWeeks, mod.FromWeekID)
}

// RejectModification marks the proposal rejected. The plan is not touched.
func (s *coachService) RejectModification(ctx context.Context, planID, modificationID string) error {
	err := s.messageRepo.UpdateModificationStatus(ctx, planID, modificationID, domain.ModificationRejected)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrModificationNotFound
	}
	return err
}
