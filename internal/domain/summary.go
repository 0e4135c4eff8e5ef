package domain

import (
	"time"
)

// WeekStatus is the derived completion state of a single week. A week is
// complete iff every one of its days has a non-nil ledger entry; completed
// and missed both count as "addressed", so CompletedDayCount is the number
// of addressed days, not the number of successful runs. A week with no days
// is vacuously complete, so CurrentWeek steps past it instead of stalling.
type WeekStatus struct {
	IsComplete             bool `json:"isComplete"`
	CompletedDayCount      int  `json:"completedDayCount"`
	TotalDayCount          int  `json:"totalDayCount"`
	IsLastDayJustCompleted bool `json:"isLastDayJustCompleted"`
}

// ComputeWeekStatus derives the completion state of one week from the plan
// and ledger. IsLastDayJustCompleted signals that the week's final day (by
// slice position, not id ordering) has an entry AND the week is now fully
// complete; it is the trigger condition for offering the weekly coach
// evaluation. Callers must remember the last week id they already evaluated,
// or the trigger re-fires on every recompute.
//
// An unknown week id yields a zero status.
func ComputeWeekStatus(plan Plan, ledger ProgressLedger, weekID int) WeekStatus {
	week, ok := plan.WeekByID(weekID)
	if !ok {
		return WeekStatus{}
	}

	now := time.Now().UTC()
	status := WeekStatus{TotalDayCount: len(week.Days)}
	lastDayAddressed := false
	for i, day := range week.Days {
		if ledger.Entry(week.ID, day.ID, now) != nil {
			status.CompletedDayCount++
			if i == len(week.Days)-1 {
				lastDayAddressed = true
			}
		}
	}
	status.IsComplete = status.CompletedDayCount == status.TotalDayCount
	status.IsLastDayJustCompleted = lastDayAddressed && status.IsComplete
	return status
}

// CurrentWeek is the single source of truth for which week the user is on:
// the id of the first incomplete week in plan order, or the last week's id
// once everything is complete. It is derived on demand and never stored.
//
// An empty plan yields 0; callers are expected to guard against empty plans
// before invoking week-scoped helpers.
func CurrentWeek(plan Plan, ledger ProgressLedger) int {
	if len(plan.Weeks) == 0 {
		return 0
	}
	for _, week := range plan.Weeks {
		if !ComputeWeekStatus(plan, ledger, week.ID).IsComplete {
			return week.ID
		}
	}
	return plan.Weeks[len(plan.Weeks)-1].ID
}

// WeekSummary aggregates one week's ledger entries for the coach: counts,
// average effort/feeling, and the concatenated free-text notes. Averages
// are arithmetic means over only the entries where the optional field is
// present; a week with zero qualifying entries reports a nil average,
// not zero.
type WeekSummary struct {
	WeekID         int      `json:"weekId"`
	TotalDays      int      `json:"totalDays"`
	CompletedDays  int      `json:"completedDays"`
	MissedDays     int      `json:"missedDays"`
	AverageEffort  *float64 `json:"averageEffort,omitempty"`
	AverageFeeling *float64 `json:"averageFeeling,omitempty"`
	Notes          []string `json:"notes"`
	IsComplete     bool     `json:"isComplete"`
}

// CalculateWeekSummaries builds one summary per plan week, in plan order.
func CalculateWeekSummaries(plan Plan, ledger ProgressLedger) []WeekSummary {
	now := time.Now().UTC()
	summaries := make([]WeekSummary, 0, len(plan.Weeks))

	for _, week := range plan.Weeks {
		summary := WeekSummary{
			WeekID:    week.ID,
			TotalDays: len(week.Days),
			Notes:     []string{},
		}
		var totalEffort, totalFeeling float64
		var effortCount, feelingCount int

		for _, day := range week.Days {
			entry := ledger.Entry(week.ID, day.ID, now)
			if entry == nil {
				continue
			}
			switch entry.Status {
			case RunCompleted:
				summary.CompletedDays++
				if entry.PerceivedEffort != nil {
					totalEffort += float64(*entry.PerceivedEffort)
					effortCount++
				}
				if entry.FeelingRating != nil {
					totalFeeling += float64(*entry.FeelingRating)
					feelingCount++
				}
			case RunMissed:
				summary.MissedDays++
			}
			if entry.Notes != "" {
				summary.Notes = append(summary.Notes, entry.Notes)
			}
		}

		if effortCount > 0 {
			avg := totalEffort / float64(effortCount)
			summary.AverageEffort = &avg
		}
		if feelingCount > 0 {
			avg := totalFeeling / float64(feelingCount)
			summary.AverageFeeling = &avg
		}
		summary.IsComplete = summary.CompletedDays+summary.MissedDays == summary.TotalDays
		summaries = append(summaries, summary)
	}
	return summaries
}

// SummaryForWeek returns the summary for a single week id, or false when the
// plan has no such week.
func SummaryForWeek(plan Plan, ledger ProgressLedger, weekID int) (WeekSummary, bool) {
	for _, s := range CalculateWeekSummaries(plan, ledger) {
		if s.WeekID == weekID {
			return s, true
		}
	}
	return WeekSummary{}, false
}
