package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProgressKey(t *testing.T) {
	assert.Equal(t, "week1-day1", ProgressKey(1, 1))
	assert.Equal(t, "week3-day2", ProgressKey(3, 2))

	// Day ids repeat across weeks; the week component keeps keys distinct.
	assert.NotEqual(t, ProgressKey(1, 2), ProgressKey(2, 1))
	assert.NotEqual(t, ProgressKey(1, 2), ProgressKey(2, 2))
}

func TestProgressValue_Normalize(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("legacy true becomes completed stamped with read time", func(t *testing.T) {
		v := LegacyValue(true)
		fb := v.Normalize(now)
		require.NotNil(t, fb)
		assert.Equal(t, RunCompleted, fb.Status)
		assert.Equal(t, now, fb.CompletedAt)
		assert.Nil(t, fb.PerceivedEffort)
		assert.Nil(t, fb.FeelingRating)
	})

	t.Run("legacy false becomes no entry", func(t *testing.T) {
		v := LegacyValue(false)
		assert.Nil(t, v.Normalize(now))
	})

	t.Run("structured entry passes through", func(t *testing.T) {
		effort := 7
		v := FeedbackValue(RunFeedback{
			Status:          RunMissed,
			CompletedAt:     now.Add(-time.Hour),
			PerceivedEffort: &effort,
		})
		fb := v.Normalize(now)
		require.NotNil(t, fb)
		assert.Equal(t, RunMissed, fb.Status)
		assert.Equal(t, now.Add(-time.Hour), fb.CompletedAt)
		require.NotNil(t, fb.PerceivedEffort)
		assert.Equal(t, 7, *fb.PerceivedEffort)
	})

	t.Run("nil receiver is no entry", func(t *testing.T) {
		var v *ProgressValue
		assert.Nil(t, v.Normalize(now))
	})

	t.Run("normalization does not mutate the stored value", func(t *testing.T) {
		v := LegacyValue(true)
		_ = v.Normalize(now)
		require.NotNil(t, v.Legacy)
		assert.True(t, *v.Legacy)
		assert.Nil(t, v.Feedback)
	})

	t.Run("repeated reads are stable apart from the clock stamp", func(t *testing.T) {
		v := LegacyValue(true)
		first := v.Normalize(now)
		second := v.Normalize(now)
		assert.Equal(t, first, second)
	})
}

func TestProgressValue_JSON(t *testing.T) {
	t.Run("boolean decodes as legacy", func(t *testing.T) {
		var v ProgressValue
		require.NoError(t, json.Unmarshal([]byte(`true`), &v))
		require.NotNil(t, v.Legacy)
		assert.True(t, *v.Legacy)
		assert.Nil(t, v.Feedback)
	})

	t.Run("object decodes as feedback", func(t *testing.T) {
		var v ProgressValue
		raw := `{"status":"completed","completedAt":"2026-08-31T12:00:00Z","perceivedEffort":4,"notes":"sore calves"}`
		require.NoError(t, json.Unmarshal([]byte(raw), &v))
		assert.Nil(t, v.Legacy)
		require.NotNil(t, v.Feedback)
		assert.Equal(t, RunCompleted, v.Feedback.Status)
		require.NotNil(t, v.Feedback.PerceivedEffort)
		assert.Equal(t, 4, *v.Feedback.PerceivedEffort)
		assert.Equal(t, "sore calves", v.Feedback.Notes)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		var v ProgressValue
		assert.Error(t, json.Unmarshal([]byte(`"yes"`), &v))
	})

	t.Run("round trip keeps the original shape", func(t *testing.T) {
		legacy := LegacyValue(false)
		data, err := json.Marshal(legacy)
		require.NoError(t, err)
		assert.Equal(t, "false", string(data))

		fb := FeedbackValue(RunFeedback{Status: RunMissed, CompletedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)})
		data, err = json.Marshal(fb)
		require.NoError(t, err)
		var back ProgressValue
		require.NoError(t, json.Unmarshal(data, &back))
		require.NotNil(t, back.Feedback)
		assert.Equal(t, RunMissed, back.Feedback.Status)
	})
}

func TestProgressValue_BSON(t *testing.T) {
	type doc struct {
		Value ProgressValue `bson:"value"`
	}

	t.Run("boolean round trip", func(t *testing.T) {
		data, err := bson.Marshal(doc{Value: LegacyValue(true)})
		require.NoError(t, err)

		var out doc
		require.NoError(t, bson.Unmarshal(data, &out))
		require.NotNil(t, out.Value.Legacy)
		assert.True(t, *out.Value.Legacy)
		assert.Nil(t, out.Value.Feedback)
	})

	t.Run("document round trip", func(t *testing.T) {
		effort := 8
		data, err := bson.Marshal(doc{Value: FeedbackValue(RunFeedback{
			Status:          RunCompleted,
			CompletedAt:     time.Date(2026, 8, 30, 7, 30, 0, 0, time.UTC),
			PerceivedEffort: &effort,
			Notes:           "felt strong",
		})})
		require.NoError(t, err)

		var out doc
		require.NoError(t, bson.Unmarshal(data, &out))
		assert.Nil(t, out.Value.Legacy)
		require.NotNil(t, out.Value.Feedback)
		assert.Equal(t, RunCompleted, out.Value.Feedback.Status)
		require.NotNil(t, out.Value.Feedback.PerceivedEffort)
		assert.Equal(t, 8, *out.Value.Feedback.PerceivedEffort)
		assert.Equal(t, "felt strong", out.Value.Feedback.Notes)
	})
}

func TestProgressLedger_Entry(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ledger := ProgressLedger{
		ProgressKey(1, 1): LegacyValue(true),
		ProgressKey(1, 2): FeedbackValue(RunFeedback{Status: RunMissed, CompletedAt: now}),
		ProgressKey(2, 1): LegacyValue(false),
	}

	t.Run("mixed formats normalize side by side", func(t *testing.T) {
		legacy := ledger.Entry(1, 1, now)
		require.NotNil(t, legacy)
		assert.Equal(t, RunCompleted, legacy.Status)

		structured := ledger.Entry(1, 2, now)
		require.NotNil(t, structured)
		assert.Equal(t, RunMissed, structured.Status)
	})

	t.Run("legacy false and absent key both mean no entry", func(t *testing.T) {
		assert.Nil(t, ledger.Entry(2, 1, now))
		assert.Nil(t, ledger.Entry(3, 1, now))
	})
}

func TestRunStatus_Valid(t *testing.T) {
	assert.True(t, RunCompleted.Valid())
	assert.True(t, RunMissed.Valid())
	assert.False(t, RunStatus("done").Valid())
	assert.False(t, RunStatus("").Valid())
}
