package schedule

import (
	"sort"
	"time"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func dayKeyOf(t time.Time) dayKey {
	y, m, d := t.UTC().Date()
	return dayKey{year: y, month: m, day: d}
}

// DaySummary condenses one calendar day for cell rendering.
type DaySummary struct {
	Date      string         `json:"date"` // YYYY-MM-DD
	Count     int            `json:"count"`
	ByKind    map[string]int `json:"by_kind,omitempty"`
	Important bool           `json:"important"` // any important event that day
}

// Calendar is a read-only date index over the timeline, rebuilt wholesale on
// every mutation. Calendar dates are evaluated in UTC.
type Calendar struct {
	byDay map[dayKey][]Event
}

// ProjectCalendar indexes the given (already ordered) event list by calendar
// date.
func ProjectCalendar(events []Event) *Calendar {
	cal := &Calendar{byDay: make(map[dayKey][]Event)}
	for _, evt := range events {
		key := dayKeyOf(evt.Timestamp)
		cal.byDay[key] = append(cal.byDay[key], evt)
	}
	for _, day := range cal.byDay {
		sort.Slice(day, func(i, j int) bool {
			if day[i].Timestamp.Equal(day[j].Timestamp) {
				return day[i].ID < day[j].ID
			}
			return day[i].Timestamp.Before(day[j].Timestamp)
		})
	}
	return cal
}

// EventsOn returns the full set of events falling on the given calendar
// date and matching the type filter, ordered by timestamp. Zero matches is
// an empty slice, not an error; display truncation is the caller's problem.
func (cal *Calendar) EventsOn(date time.Time, filter string) []Event {
	day := cal.byDay[dayKeyOf(date)]
	events := make([]Event, 0, len(day))
	for _, evt := range day {
		if matchesFilter(evt.Kind, filter) {
			events = append(events, evt)
		}
	}
	return events
}

// HasEvents reports whether any event at all falls on the given date,
// regardless of filter; used for calendar-cell highlighting.
func (cal *Calendar) HasEvents(date time.Time) bool {
	return len(cal.byDay[dayKeyOf(date)]) > 0
}

// Summarize condenses the (filtered) events of the given date.
func (cal *Calendar) Summarize(date time.Time, filter string) DaySummary {
	events := cal.EventsOn(date, filter)
	summary := DaySummary{Date: date.UTC().Format("2006-01-02"), Count: len(events)}
	if len(events) == 0 {
		return summary
	}
	summary.ByKind = make(map[string]int, len(Kinds))
	for _, evt := range events {
		summary.ByKind[evt.Kind]++
		if evt.Important {
			summary.Important = true
		}
	}
	return summary
}
