package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Albadylic/couch-potato/internal/domain"
)

// openAICoachAgent implements CoachAgent on the shared OpenAI client.
type openAICoachAgent struct {
	client *Client
}

// NewCoachAgent creates the production coach agent.
func NewCoachAgent(client *Client) CoachAgent {
	return &openAICoachAgent{client: client}
}

// ProcessConversation runs one coach turn: instructions built from the
// context, prior history rendered as a transcript, and the new user message
// appended at the end.
func (a *openAICoachAgent) ProcessConversation(ctx context.Context, coachCtx domain.CoachContext, userMessage string) (*domain.CoachAgentResponse, error) {
	var transcript strings.Builder
	for _, msg := range coachCtx.ConversationHistory {
		speaker := "Coach"
		if msg.Role == domain.RoleUser {
			speaker = "User"
		}
		fmt.Fprintf(&transcript, "%s: %s\n\n", speaker, msg.Content)
	}
	prompt := fmt.Sprintf("%sUser: %s\n\nRespond as the Coach.", transcript.String(), userMessage)

	var response domain.CoachAgentResponse
	if err := a.client.completeJSON(ctx, buildCoachInstructions(coachCtx), prompt, &response); err != nil {
		return nil, err
	}
	if response.Reply == "" {
		return nil, ErrEmptyAgentOutput
	}
	return &response, nil
}

// buildCoachInstructions renders the system prompt: the goal snapshot, the
// derived position in the plan, and per-week performance for every complete
// week plus the current one.
func buildCoachInstructions(coachCtx domain.CoachContext) string {
	summaries := domain.CalculateWeekSummaries(coachCtx.Plan, coachCtx.Progress)

	var summaryLines []string
	for _, w := range summaries {
		if !w.IsComplete && w.WeekID != coachCtx.CurrentWeek {
			continue
		}
		parts := []string{fmt.Sprintf("Week %d: %d/%d completed", w.WeekID, w.CompletedDays, w.TotalDays)}
		if w.MissedDays > 0 {
			parts = append(parts, fmt.Sprintf("%d missed", w.MissedDays))
		}
		if w.AverageEffort != nil {
			parts = append(parts, fmt.Sprintf("avg effort: %.1f/10", *w.AverageEffort))
		}
		if w.AverageFeeling != nil {
			parts = append(parts, fmt.Sprintf("avg feeling: %.1f/5", *w.AverageFeeling))
		}
		if len(w.Notes) > 0 {
			parts = append(parts, fmt.Sprintf("notes: %q", strings.Join(w.Notes, "; ")))
		}
		summaryLines = append(summaryLines, strings.Join(parts, ", "))
	}

	var b strings.Builder
	b.WriteString("You are a supportive running coach helping a user stick to their training plan.\n\n")
	b.WriteString("USER'S GOAL:\n")
	fmt.Fprintf(&b, "- Target: %s\n", coachCtx.Goal.Distance)
	fmt.Fprintf(&b, "- Timeline: %d weeks\n", coachCtx.Goal.Weeks)
	fmt.Fprintf(&b, "- Ability: %s\n", coachCtx.Goal.Ability)
	fmt.Fprintf(&b, "- Training frequency: %d days/week\n", coachCtx.Goal.Frequency)
	if coachCtx.Goal.Injuries != "" {
		fmt.Fprintf(&b, "- Known injuries/conditions: %s\n", coachCtx.Goal.Injuries)
	}
	if len(coachCtx.Goal.UnavailableDays) > 0 {
		fmt.Fprintf(&b, "- Can't train on: %s\n", strings.Join(coachCtx.Goal.UnavailableDays, ", "))
	}
	b.WriteString("\nCURRENT PROGRESS:\n")
	fmt.Fprintf(&b, "- Currently on week %d of %d\n", coachCtx.CurrentWeek, len(coachCtx.Plan.Weeks))
	if len(summaryLines) > 0 {
		b.WriteString("\nRECENT PERFORMANCE:\n")
		b.WriteString(strings.Join(summaryLines, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(`
YOUR CAPABILITIES:
1. EVALUATE: Summarize weekly performance based on completion rates, effort levels, and how runs felt
2. TIPS: Give specific, actionable advice based on user notes (e.g., "sore calves" -> stretching/foam rolling advice)
3. ENCOURAGE: Celebrate wins, provide motivation, help users stay on track
4. MODIFY: Suggest plan adjustments when appropriate (making it easier or harder)

CRITICAL RULES FOR PLAN MODIFICATIONS:
- NEVER include a planModification object unless the user has EXPLICITLY confirmed they want changes
- First, DESCRIBE what changes you would suggest and ask if they want you to make those changes
- Only after they say "yes", "do it", "make those changes", etc., include the planModification
- When modifying, generate complete replacement weeks from the specified fromWeekId onwards, covering every week through the final week of the plan
- Modifications should be progressive - gradually increase/decrease intensity
- Respect the user's goal timeline when possible

Respond with a JSON object of this exact shape:
{
  "reply": string,
  "responseType": "chat" | "evaluation" | "tip" | "encouragement" | "modification",
  "planModification": {
    "description": string,
    "changes": [{"type": "increase_intensity"|"decrease_intensity"|"add_rest_day"|"extend_timeline"|"shorten_timeline"|"adjust_frequency"|"custom", "description": string, "affectedWeeks": [number]}],
    "proposedWeeks": [{"id": number, "days": [{"id": number, "day": string, "distance": number, "jogging-interval-time": number, "walking-intervals-time": number, "number-of-intervals": number, "instructions": [string]}]}],
    "fromWeekId": number
  } | null,
  "insights": {"userConcerns": [string], "physicalIssues": [string], "motivationLevel": "low"|"medium"|"high"} | null
}

When generating modified weeks, follow this structure for each day:
- Keep the same day names (e.g., "Monday", "Wednesday")
- Adjust distances, intervals, and instructions based on the modification type
- Maintain progressive overload principles (gradual increases)

Be conversational, supportive, and specific. Reference actual data from their progress when relevant.`)
	return b.String()
}

// EvaluationPrompt synthesizes the canned user-style message the weekly
// evaluation trigger sends instead of raw per-day records.
func EvaluationPrompt(summary domain.WeekSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please give me a summary evaluation of my week %d performance. I completed %d out of %d runs",
		summary.WeekID, summary.CompletedDays, summary.TotalDays)
	if summary.MissedDays > 0 {
		fmt.Fprintf(&b, " and missed %d", summary.MissedDays)
	}
	b.WriteString(".")
	if summary.AverageEffort != nil {
		fmt.Fprintf(&b, " My average perceived effort was %.1f/10.", *summary.AverageEffort)
	}
	if summary.AverageFeeling != nil {
		fmt.Fprintf(&b, " On average, runs felt %.1f/5.", *summary.AverageFeeling)
	}
	if len(summary.Notes) > 0 {
		fmt.Fprintf(&b, " My notes during the week: %q", strings.Join(summary.Notes, "; "))
	}
	return b.String()
}
