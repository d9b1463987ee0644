package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Event kinds
const (
	KindAssignment = "assignment"
	KindLecture    = "lecture"
	KindContent    = "content"
	KindAlert      = "alert"
	KindCustom     = "custom"
)

var Kinds = []string{KindAssignment, KindLecture, KindContent, KindAlert, KindCustom}

func KnownKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Source tags. Every externally-sourced Event carries its source tag as an
// ID prefix ("<tag>:<recordID>") so that a reconcile for one source can
// replace exactly its own events and nothing else.
const (
	TagAssignment = "assignment"
	TagContent    = "content"
	TagLecture    = "lecture"
	TagAlert      = "alert"
	TagPrep       = "prep"
	TagCustom     = "custom"
)

// SourceTags are the tags reconciled from the external store, in refresh order.
// TagPrep is derived after them, TagCustom is never reconciled.
var SourceTags = []string{TagAssignment, TagContent, TagLecture, TagAlert}

// EventID builds the deterministic ID of a sourced event.
func EventID(tag, recordID string) string {
	return tag + ":" + recordID
}

// Event is a single timestamped occurrence surfaced on the faculty calendar.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Timestamp   time.Time `json:"timestamp"` // UTC
	CourseID    string    `json:"course_id,omitempty"`
	CourseTitle string    `json:"course_title,omitempty"` // resolved once at adaptation time
	Important   bool      `json:"important"`
	AISuggested bool      `json:"ai_suggested,omitempty"`
	Recurrence  string    `json:"recurrence,omitempty"`
}

// Notification is a derived reminder pointing back at the Event that
// produced it. Notifications are recomputed wholesale on every timeline
// change and never mutated on their own.
type Notification struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"` // UTC
	EventID string    `json:"event_id"`
}

// NotificationID builds the deterministic ID of the Notification derived
// from the given Event.
func NotificationID(eventID string) string {
	return "notif-" + eventID
}

// NewEvent contains information needed to create a new user Event.
type NewEvent struct {
	Title     string    `json:"title" validate:"required"`
	Kind      string    `json:"kind" validate:"required,eventkind"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	CourseID  string    `json:"course_id"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Kind = core.CleanString(ne.Kind, true /* lower */)
	ne.CourseID = core.CleanString(ne.CourseID)
	return validate.Struct(ne)
}

// View granularities
const (
	GranularityMonth = "month"
	GranularityWeek  = "week"
)

// FilterAll matches every kind.
const FilterAll = "all"

// ViewState is pure display configuration: it gates what the calendar
// projection and the notification list surface, it never mutates events.
type ViewState struct {
	Granularity string `json:"granularity" validate:"omitempty,oneof=month week"`
	TypeFilter  string `json:"type_filter" validate:"omitempty,oneof=all assignment lecture content alert custom"`
}

func DefaultViewState() ViewState {
	return ViewState{Granularity: GranularityMonth, TypeFilter: FilterAll}
}

func (vs *ViewState) Validate(validate *validator.Validate) error {
	vs.Granularity = core.CleanString(vs.Granularity, true /* lower */)
	vs.TypeFilter = core.CleanString(vs.TypeFilter, true /* lower */)
	return validate.Struct(vs)
}

// matchesFilter reports whether an event kind passes a type filter.
// An empty filter behaves like FilterAll.
func matchesFilter(kind, filter string) bool {
	return filter == "" || filter == FilterAll || kind == filter
}
