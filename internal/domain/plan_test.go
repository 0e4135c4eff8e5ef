package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekIDs(weeks []Week) []int {
	ids := make([]int, len(weeks))
	for i, w := range weeks {
		ids[i] = w.ID
	}
	return ids
}

func TestMergeWeeks(t *testing.T) {
	existing := []Week{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	t.Run("replaces from the boundary onward", func(t *testing.T) {
		proposed := []Week{
			{ID: 3, Days: []Day{{ID: 1, Day: "Tuesday"}}},
			{ID: 4, Days: []Day{{ID: 1, Day: "Tuesday"}}},
		}
		merged := MergeWeeks(existing, proposed, 3)
		assert.Equal(t, []int{1, 2, 3, 4}, weekIDs(merged))
		// Weeks 3 and 4 carry the proposed content, not the originals.
		assert.Equal(t, "Tuesday", merged[2].Days[0].Day)
	})

	t.Run("boundary at the first week replaces everything", func(t *testing.T) {
		merged := MergeWeeks(existing, []Week{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, 1)
		assert.Equal(t, []int{1, 2, 3, 4}, weekIDs(merged))
	})

	t.Run("proposal may extend the timeline", func(t *testing.T) {
		merged := MergeWeeks(existing, []Week{{ID: 3}, {ID: 4}, {ID: 5}}, 3)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, weekIDs(merged))
	})

	t.Run("overlapping ids are not deduplicated", func(t *testing.T) {
		merged := MergeWeeks(existing, []Week{{ID: 2}, {ID: 3}, {ID: 4}}, 3)
		assert.Equal(t, []int{1, 2, 2, 3, 4}, weekIDs(merged))
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		merged := MergeWeeks(existing, []Week{{ID: 3, Days: []Day{{ID: 1}}}}, 3)
		require.Len(t, merged, 3)
		assert.Equal(t, []int{1, 2, 3, 4}, weekIDs(existing))
	})
}

func TestPlan_WeekByID(t *testing.T) {
	plan := Plan{Weeks: []Week{{ID: 1}, {ID: 3}}}

	week, ok := plan.WeekByID(3)
	require.True(t, ok)
	assert.Equal(t, 3, week.ID)

	_, ok = plan.WeekByID(2)
	assert.False(t, ok)
}
