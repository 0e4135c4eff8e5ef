package domain

// Day is a single scheduled run. Workouts are uniform repeating jog/walk
// intervals: JogInterval minutes of jogging, WalkInterval minutes of walking
// (0 means a continuous run), repeated Intervals times. Heterogeneous
// structure (warm-up / main set / cool-down) is not representable and has to
// be approximated through the instructions list.
//
// The json field names match the wire format the plan generator produces and
// the stored plans already use, so they stay hyphenated.
type Day struct {
	ID           int      `bson:"id" json:"id"`
	Day          string   `bson:"day" json:"day"` // Weekday label, e.g. "Monday"
	Distance     float64  `bson:"distance" json:"distance"` // km, positive
	JogInterval  float64  `bson:"jogInterval" json:"jogging-interval-time"` // minutes per jog interval, >= 1
	WalkInterval float64  `bson:"walkInterval" json:"walking-intervals-time"` // minutes per walk interval, >= 0
	Intervals    int      `bson:"intervals" json:"number-of-intervals"` // repeat count, >= 1
	Instructions []string `bson:"instructions" json:"instructions"`
}

// Week groups the days of one training week. ID is a stable, user-facing
// ordinal. It is NOT an index into Plan.Weeks: after a modification merge the
// ids keep their original numbering even though slice positions shift.
// Day ids are only unique within their own week.
type Week struct {
	ID   int   `bson:"id" json:"id"`
	Days []Day `bson:"days" json:"days"`
}

// Plan is the versioned structural training plan: an ordered sequence of
// weeks. Order in the slice is plan order.
type Plan struct {
	Weeks []Week `bson:"weeks" json:"weeks"`
}

// WeekByID returns the week with the given id, or false when the plan has no
// such week.
func (p Plan) WeekByID(weekID int) (Week, bool) {
	for _, w := range p.Weeks {
		if w.ID == weekID {
			return w, true
		}
	}
	return Week{}, false
}

// MergeWeeks integrates a proposed replacement tail into an existing week
// sequence: every existing week with id below fromWeekID survives untouched,
// everything from fromWeekID onward is replaced wholesale by proposed.
//
// The caller is contractually required to supply every week from fromWeekID
// through the original final week id; completeness is enforced upstream at
// the agent output validation layer, not re-checked here. Overlapping ids
// across the boundary are not deduplicated.
func MergeWeeks(existing, proposed []Week, fromWeekID int) []Week {
	merged := make([]Week, 0, len(existing)+len(proposed))
	for _, w := range existing {
		if w.ID < fromWeekID {
			merged = append(merged, w)
		}
	}
	return append(merged, proposed...)
}
