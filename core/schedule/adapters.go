package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

// RecordError flags a single malformed upstream record. It is logged and the
// record skipped; the rest of the batch always goes through.
type RecordError struct {
	Source   string
	RecordID string
	Reason   string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record %q skipped: %s", e.Source, e.RecordID, e.Reason)
}

// courseIndex restricts adaptation to the acting faculty member's courses
// and resolves denormalized course titles.
type courseIndex map[string]string // id -> title

func newCourseIndex(courses []course.Course) courseIndex {
	idx := make(courseIndex, len(courses))
	for _, crs := range courses {
		idx[crs.ID] = crs.Title
	}
	return idx
}

// AssignmentEvents adapts assignment records into one Event per record.
// Records outside the given course set are dropped silently (tenancy, not an
// error); malformed records are skipped with a warning.
func AssignmentEvents(assignments []course.Assignment, courses []course.Course, logger core.Logger) []Event {
	idx := newCourseIndex(courses)
	events := make([]Event, 0, len(assignments))
	for _, a := range assignments {
		title, ok := idx[a.CourseID]
		if !ok {
			continue
		}
		if err := checkRecord(TagAssignment, a.ID, a.DueDate); err != nil {
			logger.Warn(err.Error(), err)
			continue
		}
		events = append(events, Event{
			ID:          EventID(TagAssignment, a.ID),
			Title:       a.Title,
			Kind:        KindAssignment,
			Timestamp:   a.DueDate.UTC(),
			CourseID:    a.CourseID,
			CourseTitle: title,
		})
	}
	return events
}

// ContentEvents adapts content records; titles get a "Content: " prefix to
// tell releases apart from assignments in mixed lists.
func ContentEvents(contents []course.Content, courses []course.Course, logger core.Logger) []Event {
	idx := newCourseIndex(courses)
	events := make([]Event, 0, len(contents))
	for _, c := range contents {
		title, ok := idx[c.CourseID]
		if !ok {
			continue
		}
		if err := checkRecord(TagContent, c.ID, c.UploadDate); err != nil {
			logger.Warn(err.Error(), err)
			continue
		}
		events = append(events, Event{
			ID:          EventID(TagContent, c.ID),
			Title:       "Content: " + c.Name,
			Kind:        KindContent,
			Timestamp:   c.UploadDate.UTC(),
			CourseID:    c.CourseID,
			CourseTitle: title,
		})
	}
	return events
}

// LectureEvents adapts lecture slot definitions. A recurring definition is
// materialized as its next occurrence only, resolved against `now`;
// exhausted series emit nothing.
func LectureEvents(lectures []course.Lecture, courses []course.Course, now time.Time, logger core.Logger) []Event {
	idx := newCourseIndex(courses)
	events := make([]Event, 0, len(lectures))
	for _, l := range lectures {
		title, ok := idx[l.CourseID]
		if !ok {
			continue
		}
		if err := checkRecord(TagLecture, l.ID, l.StartTime); err != nil {
			logger.Warn(err.Error(), err)
			continue
		}
		ts, err := nextOccurrence(l.StartTime.UTC(), l.Recurrence, now)
		if err != nil {
			recErr := &RecordError{Source: TagLecture, RecordID: l.ID, Reason: err.Error()}
			logger.Warn(recErr.Error(), recErr)
			continue
		}
		if ts.IsZero() { // series exhausted
			continue
		}
		events = append(events, Event{
			ID:          EventID(TagLecture, l.ID),
			Title:       l.Title,
			Kind:        KindLecture,
			Timestamp:   ts,
			CourseID:    l.CourseID,
			CourseTitle: title,
			Recurrence:  l.Recurrence,
		})
	}
	return events
}

// AlertEvents adapts system alerts; alerts carry no course association and
// are never tenancy-filtered.
func AlertEvents(alerts []course.Alert, logger core.Logger) []Event {
	events := make([]Event, 0, len(alerts))
	for _, a := range alerts {
		if err := checkRecord(TagAlert, a.ID, a.CreatedAt); err != nil {
			logger.Warn(err.Error(), err)
			continue
		}
		events = append(events, Event{
			ID:        EventID(TagAlert, a.ID),
			Title:     a.Message,
			Kind:      KindAlert,
			Timestamp: a.CreatedAt.UTC(),
		})
	}
	return events
}

// PrepEvents derives AI-suggested prep reminders from the future assignment
// events already on the timeline, one per assignment, `lead` ahead of its
// due date. Derived events never derive further prep events.
func PrepEvents(ctx context.Context, events []Event, now time.Time, lead time.Duration, texts core.TextService, logger core.Logger) []Event {
	prep := make([]Event, 0, len(events))
	for _, evt := range events {
		if evt.Kind != KindAssignment || evt.AISuggested || !evt.Timestamp.After(now) {
			continue
		}
		title, err := texts.PrepTitle(ctx, evt.Title)
		if err != nil {
			logger.Warn(fmt.Sprintf("text service failed for %q, using fallback title", evt.ID), err)
			title = "Prep for " + evt.Title
		}
		prep = append(prep, Event{
			ID:          EventID(TagPrep, evt.ID),
			Title:       title,
			Kind:        KindAssignment,
			Timestamp:   evt.Timestamp.Add(-lead),
			CourseID:    evt.CourseID,
			CourseTitle: evt.CourseTitle,
			AISuggested: true,
		})
	}
	return prep
}

func checkRecord(source, id string, ts time.Time) *RecordError {
	if id == "" {
		return &RecordError{Source: source, RecordID: id, Reason: "missing id"}
	}
	if ts.IsZero() {
		return &RecordError{Source: source, RecordID: id, Reason: "missing timestamp"}
	}
	return nil
}

var recurrenceFreqs = map[string]rrule.Frequency{
	"daily":   rrule.DAILY,
	"weekly":  rrule.WEEKLY,
	"monthly": rrule.MONTHLY,
	"yearly":  rrule.YEARLY,
}

// nextOccurrence resolves the next occurrence of a possibly recurring slot.
// The zero time means the series has no occurrence left. A one-shot slot is
// its own single occurrence, past or future.
func nextOccurrence(start time.Time, recurrence string, now time.Time) (time.Time, error) {
	recurrence = strings.TrimSpace(recurrence)
	if recurrence == "" {
		return start, nil
	}

	var rule *rrule.RRule
	var err error
	if freq, ok := recurrenceFreqs[strings.ToLower(recurrence)]; ok {
		rule, err = rrule.NewRRule(rrule.ROption{Freq: freq, Dtstart: start})
	} else {
		rule, err = rrule.StrToRRule(recurrence)
		if err == nil {
			rule.DTStart(start)
		}
	}
	if err != nil {
		return time.Time{}, err
	}
	return rule.After(now, true /* inclusive */), nil
}
