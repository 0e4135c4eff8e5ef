package agent

import (
	"fmt"

	"github.com/Albadylic/couch-potato/internal/domain"
)

// Minimum valid values for day fields, shared with the generation schema.
// Out-of-range agent output is clamped here rather than rejected: a slightly
// malformed proposal is still worth more to the user than a retry loop.
const (
	minDistance    = 0.1
	minJogInterval = 1
	minIntervals   = 1
)

// SanitizeProposal clamps out-of-range numeric fields in the proposed weeks
// to their minimum valid value. It returns a sanitized copy; the input is
// not mutated.
func SanitizeProposal(mod domain.ProposedModification) domain.ProposedModification {
	sanitized := mod
	sanitized.ProposedWeeks = make([]domain.Week, len(mod.ProposedWeeks))
	for i, week := range mod.ProposedWeeks {
		sanitized.ProposedWeeks[i] = week
		days := make([]domain.Day, len(week.Days))
		for j, day := range week.Days {
			if day.Distance < minDistance {
				day.Distance = minDistance
			}
			if day.JogInterval < minJogInterval {
				day.JogInterval = minJogInterval
			}
			if day.WalkInterval < 0 {
				day.WalkInterval = 0
			}
			if day.Intervals < minIntervals {
				day.Intervals = minIntervals
			}
			days[j] = day
		}
		sanitized.ProposedWeeks[i].Days = days
	}
	return sanitized
}

// ValidateProposal checks a modification proposal against the plan it would
// be merged into. The agent is contractually required to replace every week
// from fromWeekId through the plan's final week; a partial tail or duplicate
// week ids would silently corrupt the plan on merge, so both are rejected
// here as schema violations (retry-worthy) instead of being trusted.
func ValidateProposal(plan domain.Plan, mod domain.ProposedModification) error {
	if len(mod.ProposedWeeks) == 0 {
		return fmt.Errorf("proposal has no replacement weeks: %w", ErrSchemaValidation)
	}
	if _, ok := plan.WeekByID(mod.FromWeekID); !ok {
		return fmt.Errorf("proposal fromWeekId %d is not a plan week: %w", mod.FromWeekID, ErrSchemaValidation)
	}

	proposed := make(map[int]bool, len(mod.ProposedWeeks))
	for _, week := range mod.ProposedWeeks {
		if proposed[week.ID] {
			return fmt.Errorf("proposal contains duplicate week id %d: %w", week.ID, ErrSchemaValidation)
		}
		proposed[week.ID] = true
	}

	// Every surviving week id must stay below the boundary, and every week
	// id at or above it must be covered by the replacement tail.
	for _, week := range plan.Weeks {
		if week.ID < mod.FromWeekID {
			if proposed[week.ID] {
				return fmt.Errorf("proposal week id %d overlaps a surviving week: %w", week.ID, ErrSchemaValidation)
			}
			continue
		}
		if !proposed[week.ID] {
			return fmt.Errorf("proposal is missing replacement week %d: %w", week.ID, ErrSchemaValidation)
		}
	}
	return nil
}
