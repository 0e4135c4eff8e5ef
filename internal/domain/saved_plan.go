package domain

import (
	"time"
)

// SavedPlan is the aggregate root the whole application revolves around:
// a goal snapshot, the (mutable, versioned) plan derived from it, and the
// sparse per-day progress ledger. It is created once when a freshly
// generated plan is first persisted, mutated in place by ledger writes and
// modification merges, and deleted only by explicit user action.
//
// Single actor, last-write-wins per field; there is no concurrent-writer
// model.
type SavedPlan struct {
	ID        string         `bson:"_id" json:"id"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	Goal      Goal           `bson:"goal" json:"goal"`
	Plan      Plan           `bson:"plan" json:"plan"`
	Progress  ProgressLedger `bson:"progress" json:"progress"`
}

// OverallProgress tallies the whole plan: how many days are completed,
// missed, and scheduled in total.
func (p *SavedPlan) OverallProgress(now time.Time) (completed, missed, total int) {
	for _, week := range p.Plan.Weeks {
		for _, day := range week.Days {
			total++
			entry := p.Progress.Entry(week.ID, day.ID, now)
			switch {
			case entry == nil:
			case entry.Status == RunCompleted:
				completed++
			case entry.Status == RunMissed:
				missed++
			}
		}
	}
	return completed, missed, total
}
