package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Albadylic/couch-potato/internal/domain"
)

// Conversation tones the goal chat supports.
const (
	ToneEncouraging  = "encouraging"
	ToneProfessional = "professional"
	ToneBrief        = "brief"
)

var toneDescriptions = map[string]string{
	ToneEncouraging:  "Be warm, supportive, and motivating. Use phrases like 'Great goal!' and 'You've got this!' Celebrate their ambition while being helpful.",
	ToneProfessional: "Be clear, informative, and structured. Focus on facts and practical guidance. Maintain a helpful but businesslike tone.",
	ToneBrief:        "Be concise and direct. Minimal small talk, get to the point quickly. Short sentences, no filler.",
}

// openAIGoalAgent implements GoalAgent on the shared OpenAI client.
type openAIGoalAgent struct {
	client *Client
}

// NewGoalAgent creates the production goal-extraction agent.
func NewGoalAgent(client *Client) GoalAgent {
	return &openAIGoalAgent{client: client}
}

// ProcessGoalConversation runs one turn of the goal-definition chat and
// returns the reply plus the updated goal draft.
func (a *openAIGoalAgent) ProcessGoalConversation(ctx context.Context, tone string, current domain.GoalDraft, history []ChatTurn, userMessage string) (*GoalAgentResponse, error) {
	var transcript strings.Builder
	for _, turn := range history {
		speaker := "Coach"
		if turn.Role == "user" {
			speaker = "User"
		}
		fmt.Fprintf(&transcript, "%s: %s\n\n", speaker, turn.Content)
	}
	prompt := fmt.Sprintf("%sUser: %s\n\nRespond as the Coach.", transcript.String(), userMessage)

	var response GoalAgentResponse
	if err := a.client.completeJSON(ctx, buildGoalInstructions(tone, current), prompt, &response); err != nil {
		return nil, err
	}
	if response.Reply == "" {
		return nil, ErrEmptyAgentOutput
	}
	return &response, nil
}

// buildGoalInstructions renders the goal-extraction system prompt, seeded
// with whatever the draft already holds so the agent never re-asks for known
// fields.
func buildGoalInstructions(tone string, current domain.GoalDraft) string {
	toneText, ok := toneDescriptions[tone]
	if !ok {
		toneText = toneDescriptions[ToneEncouraging]
	}
	known, _ := json.Marshal(current)

	var b strings.Builder
	b.WriteString("You are a fitness coach helping users define their running goals.\n\n")
	fmt.Fprintf(&b, "TONE: %s\n\n", toneText)
	fmt.Fprintf(&b, "GOAL SO FAR (null means not yet known): %s\n", known)
	b.WriteString(`
Your task:
1. Have a natural conversation to understand the user's running goal
2. Extract three pieces of CORE information:
   - Target distance (e.g., 5K, 10K, half marathon, marathon)
   - Completion timeframe (convert dates to weeks from now, or accept weeks directly)
   - Current ability level (beginner, novice, or confident)
3. If user provides multiple pieces of info in one message, acknowledge all of them
4. Only ask about fields that are still missing - don't re-ask for info already provided
5. For unrealistic goals, gently push back:
   - Marathon for a beginner needs at least 16-20 weeks
   - Half marathon for a beginner needs at least 10-12 weeks
   - 10K for a beginner needs at least 6-8 weeks
   - 5K for a beginner needs at least 4-6 weeks
   If their timeline is too aggressive, explain why and suggest a more achievable timeline.
6. CONSTRAINTS (ask AFTER core goal info is collected):
   Once you have distance, weeks, and ability, ask about preferences in ONE natural question:
   how many days per week they want to train (1-6, suggest 3), any days they can't run,
   and any injuries you should know about.

Respond with a JSON object of this exact shape:
{
  "reply": string,
  "goal": {
    "targetDistance": string | null,
    "completionWeeks": number | null,
    "abilityLevel": "beginner" | "novice" | "confident" | null,
    "frequency": number | null,
    "unavailableDays": ["monday".."sunday"] | null,
    "injuries": string | null
  },
  "isComplete": false,
  "readyForConfirmation": boolean
}

readyForConfirmation is true only when distance, weeks, and ability are all known AND the
user has answered the constraints question (even if they said "none").`)
	return b.String()
}
