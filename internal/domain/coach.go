package domain

import (
	"time"
)

// MessageRole distinguishes the two sides of the coach conversation.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleCoach MessageRole = "coach"
)

// CoachMessage is one entry in a plan's append-only conversation history.
// A coach message may carry an attached plan modification proposal; the
// proposal has its own lifecycle but is never detached from its message.
type CoachMessage struct {
	ID               string                    `bson:"_id" json:"id"`
	PlanID           string                    `bson:"planId" json:"-"`
	Role             MessageRole               `bson:"role" json:"role"`
	Content          string                    `bson:"content" json:"content"`
	Timestamp        time.Time                 `bson:"timestamp" json:"timestamp"`
	PlanModification *PlanModificationProposal `bson:"planModification,omitempty" json:"planModification,omitempty"`
}

// ModificationStatus is the proposal lifecycle state.
type ModificationStatus string

const (
	ModificationPending  ModificationStatus = "pending"
	ModificationAccepted ModificationStatus = "accepted"
	ModificationRejected ModificationStatus = "rejected"
)

// PlanModificationProposal is a coach-proposed partial plan replacement:
// complete replacement weeks covering FromWeekID through the plan's final
// week. pending -> accepted triggers the merge; pending -> rejected leaves
// the plan untouched. Both terminal states are final, though the store layer
// itself does not guard against a re-transition (last write wins).
type PlanModificationProposal struct {
	ID            string             `bson:"id" json:"id"`
	Status        ModificationStatus `bson:"status" json:"status"`
	Description   string             `bson:"description" json:"description"`
	Changes       []PlanChange       `bson:"changes" json:"changes"`
	ProposedWeeks []Week             `bson:"proposedWeeks" json:"proposedWeeks"`
	FromWeekID    int                `bson:"fromWeekId" json:"fromWeekId"`
}

// PlanChangeType classifies one change inside a proposal.
type PlanChangeType string

const (
	ChangeIncreaseIntensity PlanChangeType = "increase_intensity"
	ChangeDecreaseIntensity PlanChangeType = "decrease_intensity"
	ChangeAddRestDay        PlanChangeType = "add_rest_day"
	ChangeExtendTimeline    PlanChangeType = "extend_timeline"
	ChangeShortenTimeline   PlanChangeType = "shorten_timeline"
	ChangeAdjustFrequency   PlanChangeType = "adjust_frequency"
	ChangeCustom            PlanChangeType = "custom"
)

// PlanChange is one typed, human-readable change within a proposal.
type PlanChange struct {
	Type          PlanChangeType `bson:"type" json:"type"`
	Description   string         `bson:"description" json:"description"`
	AffectedWeeks []int          `bson:"affectedWeeks" json:"affectedWeeks"`
}

// CoachContext is the bounded read-model handed to the coach agent: goal
// snapshot, full plan, full ledger, the computed current week, and the full
// conversation history. Building it has no side effects and no I/O.
type CoachContext struct {
	Goal                Goal
	Plan                Plan
	Progress            ProgressLedger
	CurrentWeek         int
	ConversationHistory []CoachMessage
}

// BuildCoachContext assembles the agent context. It is used identically for
// ad-hoc chat turns and the scripted weekly-evaluation trigger.
func BuildCoachContext(goal Goal, plan Plan, progress ProgressLedger, currentWeek int, history []CoachMessage) CoachContext {
	return CoachContext{
		Goal:                goal,
		Plan:                plan,
		Progress:            progress,
		CurrentWeek:         currentWeek,
		ConversationHistory: history,
	}
}

// ResponseType classifies a coach reply.
type ResponseType string

const (
	ResponseChat          ResponseType = "chat"
	ResponseEvaluation    ResponseType = "evaluation"
	ResponseTip           ResponseType = "tip"
	ResponseEncouragement ResponseType = "encouragement"
	ResponseModification  ResponseType = "modification"
)

// ProposedModification is the not-yet-persisted modification payload inside
// an agent response, before an id and pending status are assigned.
type ProposedModification struct {
	Description   string       `json:"description"`
	Changes       []PlanChange `json:"changes"`
	ProposedWeeks []Week       `json:"proposedWeeks"`
	FromWeekID    int          `json:"fromWeekId"`
}

// CoachInsights are soft signals the agent extracts from the conversation.
type CoachInsights struct {
	UserConcerns    []string `json:"userConcerns,omitempty"`
	PhysicalIssues  []string `json:"physicalIssues,omitempty"`
	MotivationLevel string   `json:"motivationLevel,omitempty"` // low | medium | high
}

// CoachAgentResponse is the structured response the coach agent returns for
// one turn: a conversational reply plus classification, optionally carrying
// a plan modification.
type CoachAgentResponse struct {
	Reply            string                `json:"reply"`
	ResponseType     ResponseType          `json:"responseType"`
	PlanModification *ProposedModification `json:"planModification,omitempty"`
	Insights         *CoachInsights        `json:"insights,omitempty"`
}
