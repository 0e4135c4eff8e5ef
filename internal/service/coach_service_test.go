package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Albadylic/couch-potato/internal/agent"
	"github.com/Albadylic/couch-potato/internal/domain"
	"github.com/Albadylic/couch-potato/internal/repository"
	"github.com/Albadylic/couch-potato/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCoachAgent returns a scripted response and records what it was asked.
type fakeCoachAgent struct {
	response    *domain.CoachAgentResponse
	err         error
	lastContext domain.CoachContext
	lastPrompt  string
	calls       int
}

func (f *fakeCoachAgent) ProcessConversation(_ context.Context, coachCtx domain.CoachContext, userMessage string) (*domain.CoachAgentResponse, error) {
	f.calls++
	f.lastContext = coachCtx
	f.lastPrompt = userMessage
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type coachFixture struct {
	plans       PlanService
	messageRepo repository.CoachMessageRepository
	coach       *fakeCoachAgent
	svc         CoachService
	planID      string
}

func newCoachFixture(t *testing.T, fake *fakeCoachAgent) *coachFixture {
	t.Helper()
	messageRepo := memory.NewMemoryCoachMessageRepository()
	plans := NewPlanService(memory.NewMemoryPlanRepository(), messageRepo, nil)

	saved, err := plans.CreatePlan(context.Background(), testGoal(), testPlan())
	require.NoError(t, err)

	return &coachFixture{
		plans:       plans,
		messageRepo: messageRepo,
		coach:       fake,
		svc:         NewCoachService(plans, messageRepo, fake),
		planID:      saved.ID,
	}
}

func chatResponse(reply string) *domain.CoachAgentResponse {
	return &domain.CoachAgentResponse{Reply: reply, ResponseType: domain.ResponseChat}
}

func modificationResponse(fromWeekID int, weeks ...domain.Week) *domain.CoachAgentResponse {
	return &domain.CoachAgentResponse{
		Reply:        "Done, I've eased off the remaining weeks.",
		ResponseType: domain.ResponseModification,
		PlanModification: &domain.ProposedModification{
			Description:   "Reduce intensity",
			Changes:       []domain.PlanChange{{Type: domain.ChangeDecreaseIntensity, Description: "Shorter jogs", AffectedWeeks: []int{fromWeekID}}},
			ProposedWeeks: weeks,
			FromWeekID:    fromWeekID,
		},
	}
}

func easierWeeks(ids ...int) []domain.Week {
	weeks := make([]domain.Week, len(ids))
	for i, id := range ids {
		weeks[i] = domain.Week{ID: id, Days: []domain.Day{
			{ID: 1, Day: "Monday", Distance: 1.5, JogInterval: 2, WalkInterval: 2, Intervals: 4},
		}}
	}
	return weeks
}

func TestCoachService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("turn persists both sides of the exchange", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: chatResponse("Keep it up!")})

		reply, err := fx.svc.SendMessage(ctx, fx.planID, "How am I doing?")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCoach, reply.Role)
		assert.Equal(t, "Keep it up!", reply.Content)
		assert.Nil(t, reply.PlanModification)

		history, err := fx.svc.GetMessages(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, domain.RoleUser, history[0].Role)
		assert.Equal(t, "How am I doing?", history[0].Content)
		assert.Equal(t, domain.RoleCoach, history[1].Role)
	})

	t.Run("agent context carries the derived current week", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: chatResponse("ok")})
		require.NoError(t, fx.plans.RecordRunFeedback(ctx, fx.planID, 1, 1, domain.RunFeedback{Status: domain.RunCompleted}))
		require.NoError(t, fx.plans.RecordRunFeedback(ctx, fx.planID, 1, 2, domain.RunFeedback{Status: domain.RunMissed}))

		_, err := fx.svc.SendMessage(ctx, fx.planID, "hi")
		require.NoError(t, err)
		assert.Equal(t, 2, fx.coach.lastContext.CurrentWeek)
		assert.Len(t, fx.coach.lastContext.Plan.Weeks, 2)
	})

	t.Run("failed agent turn still keeps the user message", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{err: agent.ErrEmptyAgentOutput})

		_, err := fx.svc.SendMessage(ctx, fx.planID, "hello?")
		assert.ErrorIs(t, err, agent.ErrEmptyAgentOutput)

		history, err := fx.svc.GetMessages(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.RoleUser, history[0].Role)
	})

	t.Run("missing plan maps to ErrPlanNotFound without calling the agent", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: chatResponse("ok")})
		_, err := fx.svc.SendMessage(ctx, "ghost", "hi")
		assert.ErrorIs(t, err, ErrPlanNotFound)
		assert.Zero(t, fx.coach.calls)
	})
}

func TestCoachService_Proposals(t *testing.T) {
	ctx := context.Background()

	t.Run("valid proposal is attached pending", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: modificationResponse(2, easierWeeks(2)...)})

		reply, err := fx.svc.SendMessage(ctx, fx.planID, "yes, make it easier")
		require.NoError(t, err)
		require.NotNil(t, reply.PlanModification)
		assert.NotEmpty(t, reply.PlanModification.ID)
		assert.Equal(t, domain.ModificationPending, reply.PlanModification.Status)
		assert.Equal(t, 2, reply.PlanModification.FromWeekID)

		// The attached proposal is readable back from the history.
		history, err := fx.svc.GetMessages(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.NotNil(t, history[1].PlanModification)
		assert.Equal(t, reply.PlanModification.ID, history[1].PlanModification.ID)
	})

	t.Run("incomplete proposal surfaces as a schema violation", func(t *testing.T) {
		// fromWeekId 1 but only week 1 proposed: week 2 uncovered.
		fx := newCoachFixture(t, &fakeCoachAgent{response: modificationResponse(1, easierWeeks(1)...)})

		_, err := fx.svc.SendMessage(ctx, fx.planID, "make it all easier")
		assert.ErrorIs(t, err, agent.ErrSchemaValidation)

		// The failed turn keeps the user message only; a coach reply that
		// promises a modification which was never attached must not persist.
		history, err := fx.svc.GetMessages(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.RoleUser, history[0].Role)
	})

	t.Run("duplicate proposed week ids fail the turn without a coach message", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: modificationResponse(2, easierWeeks(2, 2)...)})

		_, err := fx.svc.SendMessage(ctx, fx.planID, "easier please")
		assert.ErrorIs(t, err, agent.ErrSchemaValidation)

		history, err := fx.svc.GetMessages(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.RoleUser, history[0].Role)
	})

	t.Run("out-of-range day values are clamped before attachment", func(t *testing.T) {
		weeks := easierWeeks(2)
		weeks[0].Days[0].Distance = 0
		weeks[0].Days[0].Intervals = 0
		fx := newCoachFixture(t, &fakeCoachAgent{response: modificationResponse(2, weeks...)})

		reply, err := fx.svc.SendMessage(ctx, fx.planID, "easier please")
		require.NoError(t, err)
		day := reply.PlanModification.ProposedWeeks[0].Days[0]
		assert.Equal(t, 0.1, day.Distance)
		assert.Equal(t, 1, day.Intervals)
	})

	t.Run("accept merges and marks the proposal accepted", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: modificationResponse(2, easierWeeks(2)...)})
		reply, err := fx.svc.SendMessage(ctx, fx.planID, "yes")
		require.NoError(t, err)

		require.NoError(t, fx.svc.AcceptModification(ctx, fx.planID, reply.PlanModification.ID))

		plan, err := fx.plans.GetPlan(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, plan.Plan.Weeks, 2)
		assert.Equal(t, 1.5, plan.Plan.Weeks[1].Days[0].Distance)
		// Week 1 untouched.
		assert.Equal(t, 2.0, plan.Plan.Weeks[0].Days[0].Distance)

		mod, err := fx.messageRepo.GetModification(ctx, fx.planID, reply.PlanModification.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ModificationAccepted, mod.Status)
	})

	t.Run("reject leaves the plan untouched", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: modificationResponse(2, easierWeeks(2)...)})
		reply, err := fx.svc.SendMessage(ctx, fx.planID, "yes")
		require.NoError(t, err)

		before, err := fx.plans.GetPlan(ctx, fx.planID)
		require.NoError(t, err)

		require.NoError(t, fx.svc.RejectModification(ctx, fx.planID, reply.PlanModification.ID))

		after, err := fx.plans.GetPlan(ctx, fx.planID)
		require.NoError(t, err)
		assert.Equal(t, before.Plan, after.Plan)

		mod, err := fx.messageRepo.GetModification(ctx, fx.planID, reply.PlanModification.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ModificationRejected, mod.Status)
	})

	t.Run("unknown modification id maps to ErrModificationNotFound", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: chatResponse("ok")})
		assert.ErrorIs(t, fx.svc.AcceptModification(ctx, fx.planID, "nope"), ErrModificationNotFound)
		assert.ErrorIs(t, fx.svc.RejectModification(ctx, fx.planID, "nope"), ErrModificationNotFound)
	})
}

func TestCoachService_RequestWeeklyEvaluation(t *testing.T) {
	ctx := context.Background()

	t.Run("synthesized prompt carries the week summary", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: &domain.CoachAgentResponse{
			Reply:        "Great week! Two for two.",
			ResponseType: domain.ResponseEvaluation,
		}})
		effort := 5
		require.NoError(t, fx.plans.RecordRunFeedback(ctx, fx.planID, 1, 1, domain.RunFeedback{Status: domain.RunCompleted, PerceivedEffort: &effort}))
		require.NoError(t, fx.plans.RecordRunFeedback(ctx, fx.planID, 1, 2, domain.RunFeedback{Status: domain.RunMissed, Notes: "twisted ankle"}))

		reply, err := fx.svc.RequestWeeklyEvaluation(ctx, fx.planID, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCoach, reply.Role)

		assert.Contains(t, fx.coach.lastPrompt, "week 1")
		assert.Contains(t, fx.coach.lastPrompt, "1 out of 2")
		assert.Contains(t, fx.coach.lastPrompt, "missed 1")
		assert.Contains(t, fx.coach.lastPrompt, "5.0/10")
		assert.Contains(t, fx.coach.lastPrompt, "twisted ankle")
		assert.False(t, strings.Contains(fx.coach.lastPrompt, "week1-day1"), "raw ledger keys must not leak into the prompt")
	})

	t.Run("only the coach reply joins the history", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: chatResponse("Solid week.")})
		require.NoError(t, fx.plans.RecordRunFeedback(ctx, fx.planID, 1, 1, domain.RunFeedback{Status: domain.RunCompleted}))
		require.NoError(t, fx.plans.RecordRunFeedback(ctx, fx.planID, 1, 2, domain.RunFeedback{Status: domain.RunCompleted}))

		_, err := fx.svc.RequestWeeklyEvaluation(ctx, fx.planID, 1)
		require.NoError(t, err)

		history, err := fx.svc.GetMessages(ctx, fx.planID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.RoleCoach, history[0].Role)
	})

	t.Run("unknown week is a hard error", func(t *testing.T) {
		fx := newCoachFixture(t, &fakeCoachAgent{response: chatResponse("ok")})
		_, err := fx.svc.RequestWeeklyEvaluation(ctx, fx.planID, 9)
		assert.ErrorIs(t, err, ErrWeekNotFound)
		assert.Zero(t, fx.coach.calls)
	})
}
