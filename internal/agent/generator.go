package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Albadylic/couch-potato/internal/domain"
)

// openAIPlanGenerator implements PlanGenerator on the shared OpenAI client.
type openAIPlanGenerator struct {
	client *Client
}

// NewPlanGenerator creates the production plan generator.
func NewPlanGenerator(client *Client) PlanGenerator {
	return &openAIPlanGenerator{client: client}
}

// GeneratePlan asks the model for a full interval-training plan matching the
// goal. A response with zero weeks is rejected with ErrEmptyPlan even though
// the call itself succeeded.
func (g *openAIPlanGenerator) GeneratePlan(ctx context.Context, goal domain.Goal) (*domain.Plan, error) {
	var plan domain.Plan
	if err := g.client.completeJSON(ctx, "You are a running coach generating structured training plans.", buildPlanPrompt(goal), &plan); err != nil {
		return nil, err
	}
	if len(plan.Weeks) == 0 {
		return nil, ErrEmptyPlan
	}
	return &plan, nil
}

// buildPlanPrompt renders the generation prompt. The JSON shape is the wire
// format every stored plan already uses, so it is spelled out verbatim.
func buildPlanPrompt(goal domain.Goal) string {
	var b strings.Builder
	b.WriteString(`Return ONLY valid JSON.
Do NOT include explanations, markdown, or extra text.

The JSON must follow this exact schema:

{
  "weeks": [
    {
      "id": number,
      "days": [
        {
          "id": number,
          "day": string,
          "distance": number,
          "jogging-interval-time": number,
          "walking-intervals-time": number,
          "number-of-intervals": number,
          "instructions": string[]
        }
      ]
    }
  ]
}

Every day is a uniform jog/walk interval workout: "jogging-interval-time" minutes of jogging
followed by "walking-intervals-time" minutes of walking (0 for a continuous run), repeated
"number-of-intervals" times. Distances are kilometres and must be positive.

`)
	fmt.Fprintf(&b, "Generate a couch to %s plan for a %s runner to complete within %d weeks. Include a maximum of %d days each week.\n",
		goal.Distance, goal.Ability, goal.Weeks, goal.Frequency)
	if len(goal.UnavailableDays) > 0 {
		fmt.Fprintf(&b, "The user cannot train on: %s.\n", strings.Join(goal.UnavailableDays, ", "))
	}
	if goal.Injuries != "" {
		fmt.Fprintf(&b, "Account for the following injuries or conditions: %s.\n", goal.Injuries)
	}
	return b.String()
}
