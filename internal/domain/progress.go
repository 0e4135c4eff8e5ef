package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RunStatus is the outcome recorded for a scheduled run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunMissed    RunStatus = "missed"
)

// Valid reports whether s is one of the two enumerated outcomes.
func (s RunStatus) Valid() bool {
	return s == RunCompleted || s == RunMissed
}

// RunFeedback is the structured progress record for a single day.
type RunFeedback struct {
	Status          RunStatus `bson:"status" json:"status"`
	CompletedAt     time.Time `bson:"completedAt" json:"completedAt"`
	PerceivedEffort *int      `bson:"perceivedEffort,omitempty" json:"perceivedEffort,omitempty"` // 1-10
	FeelingRating   *int      `bson:"feelingRating,omitempty" json:"feelingRating,omitempty"`     // 1-5, 1=tough 5=easy
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ProgressValue is the stored per-day progress entry. Early versions of the
// app persisted a plain boolean (true = completed); current versions persist
// a RunFeedback document. There is no schema version field, so both shapes
// remain readable forever and the union is decoded once at the storage
// boundary into this tagged form.
type ProgressValue struct {
	Legacy   *bool
	Feedback *RunFeedback
}

// FeedbackValue wraps a structured record as a stored entry.
func FeedbackValue(fb RunFeedback) ProgressValue {
	return ProgressValue{Feedback: &fb}
}

// LegacyValue wraps an old-format boolean as a stored entry.
func LegacyValue(done bool) ProgressValue {
	return ProgressValue{Legacy: &done}
}

// Normalize coerces the stored value to the canonical representation: a
// RunFeedback record, or nil for "no entry". Legacy booleans migrate
// losslessly: true becomes a completed record stamped with the read-time
// clock, false becomes nil. Normalization never mutates storage.
func (v *ProgressValue) Normalize(now time.Time) *RunFeedback {
	if v == nil {
		return nil
	}
	if v.Legacy != nil {
		if !*v.Legacy {
			return nil
		}
		return &RunFeedback{Status: RunCompleted, CompletedAt: now}
	}
	return v.Feedback
}

// MarshalJSON writes the value back in the shape it carries: legacy entries
// stay booleans, structured entries stay objects.
func (v ProgressValue) MarshalJSON() ([]byte, error) {
	if v.Legacy != nil {
		return json.Marshal(*v.Legacy)
	}
	if v.Feedback != nil {
		return json.Marshal(*v.Feedback)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts either wire shape.
func (v *ProgressValue) UnmarshalJSON(data []byte) error {
	*v = ProgressValue{}
	if string(data) == "null" {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		v.Legacy = &b
		return nil
	}
	var fb RunFeedback
	if err := json.Unmarshal(data, &fb); err != nil {
		return fmt.Errorf("progress value is neither boolean nor feedback record: %w", err)
	}
	v.Feedback = &fb
	return nil
}

// MarshalBSONValue mirrors MarshalJSON for the mongo codec.
func (v ProgressValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.Legacy != nil {
		return bson.MarshalValue(*v.Legacy)
	}
	if v.Feedback != nil {
		return bson.MarshalValue(*v.Feedback)
	}
	return bson.MarshalValue(primitive.Null{})
}

// UnmarshalBSONValue accepts either stored shape.
func (v *ProgressValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*v = ProgressValue{}
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeBoolean:
		b := raw.Boolean()
		v.Legacy = &b
		return nil
	case bson.TypeEmbeddedDocument:
		var fb RunFeedback
		if err := raw.Unmarshal(&fb); err != nil {
			return err
		}
		v.Feedback = &fb
		return nil
	case bson.TypeNull:
		return nil
	default:
		return fmt.Errorf("unsupported progress value bson type %s", t)
	}
}

// ProgressKey builds the composite ledger key for a (week, day) pair. Day
// ids are only unique within their week, so the week id is always part of
// the key. All key construction goes through here; nothing else formats
// these strings.
func ProgressKey(weekID, dayID int) string {
	return fmt.Sprintf("week%d-day%d", weekID, dayID)
}

// ProgressLedger is the sparse (week, day) -> outcome mapping of a saved
// plan. Absent keys mean "no entry yet".
type ProgressLedger map[string]ProgressValue

// Entry returns the normalized record for a day, or nil when the day has no
// entry. now stamps legacy-boolean upgrades.
func (l ProgressLedger) Entry(weekID, dayID int, now time.Time) *RunFeedback {
	v, ok := l[ProgressKey(weekID, dayID)]
	if !ok {
		return nil
	}
	return v.Normalize(now)
}
