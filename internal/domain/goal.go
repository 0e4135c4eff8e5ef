package domain

// AbilityLevel buckets used by the goal conversation.
const (
	AbilityBeginner  = "beginner"
	AbilityNovice    = "novice"
	AbilityConfident = "confident"
)

// Goal is the snapshot of what the user wants to achieve, captured when the
// plan is first saved. It is immutable per saved plan and is used only as
// display/context metadata; the plan is never re-derived from it.
type Goal struct {
	Distance        string   `bson:"distance" json:"distance"` // Target distance label, e.g. "5K"
	Weeks           int      `bson:"weeks" json:"weeks"`
	Ability         string   `bson:"ability" json:"ability"`
	Frequency       int      `bson:"frequency" json:"frequency"` // Training days per week, 1-6
	UnavailableDays []string `bson:"unavailableDays,omitempty" json:"unavailableDays,omitempty"`
	Injuries        string   `bson:"injuries,omitempty" json:"injuries,omitempty"`
}

// GoalDraft is the partially-filled goal the extraction agent accumulates
// over the goal conversation. Pointer fields distinguish "not yet known"
// from a zero value.
type GoalDraft struct {
	TargetDistance  *string  `json:"targetDistance"`
	CompletionWeeks *int     `json:"completionWeeks"`
	AbilityLevel    *string  `json:"abilityLevel"`
	Frequency       *int     `json:"frequency"`
	UnavailableDays []string `json:"unavailableDays"`
	Injuries        *string  `json:"injuries"`
}
