package schedule

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// errors
	ErrNotFound    = errors.New("event not found")
	ErrDuplicateID = errors.New("an event with this id already exists")
	ErrStaleBatch  = errors.New("batch superseded by a newer reconcile")
)

// localMutation records a user edit applied on top of a sourced event so it
// can be re-applied when the source is re-fetched. Entries are dropped the
// moment the source record disappears.
type localMutation struct {
	timestamp *time.Time
	important *bool
}

// Timeline is the authoritative in-memory event collection of one session.
// It is not safe for concurrent use; Service serializes access to it.
type Timeline struct {
	events map[string]*Event
	seqs   map[string]uint64 // last applied reconcile sequence per source tag
	local  map[string]*localMutation
}

func NewTimeline() *Timeline {
	return &Timeline{
		events: make(map[string]*Event),
		seqs:   make(map[string]uint64),
		local:  make(map[string]*localMutation),
	}
}

// Reconcile replaces all events carrying the tag's ID prefix with the given
// batch, re-applying surviving local mutations. Batches arriving with a
// sequence number lower than the last applied one for the same tag lost the
// race against a newer re-fetch and are rejected with ErrStaleBatch.
// Batch events whose ID does not carry the tag prefix are ignored.
func (tl *Timeline) Reconcile(tag string, seq uint64, batch []Event) error {
	if seq < tl.seqs[tag] {
		return ErrStaleBatch
	}
	tl.seqs[tag] = seq

	prefix := tag + ":"
	for id := range tl.events {
		if strings.HasPrefix(id, prefix) {
			delete(tl.events, id)
		}
	}

	for i := range batch {
		evt := batch[i]
		if !strings.HasPrefix(evt.ID, prefix) {
			continue
		}
		if mut, ok := tl.local[evt.ID]; ok {
			if mut.timestamp != nil {
				evt.Timestamp = *mut.timestamp
			}
			if mut.important != nil {
				evt.Important = *mut.important
			}
		}
		tl.events[evt.ID] = &evt
	}

	// local mutations whose record disappeared are gone for good
	for id := range tl.local {
		if strings.HasPrefix(id, prefix) {
			if _, ok := tl.events[id]; !ok {
				delete(tl.local, id)
			}
		}
	}
	return nil
}

// Add inserts a user- or derivation-created event.
func (tl *Timeline) Add(evt Event) error {
	if _, ok := tl.events[evt.ID]; ok {
		return ErrDuplicateID
	}
	tl.events[evt.ID] = &evt
	return nil
}

// Reschedule moves an event to a new timestamp. ID, kind and course
// association are untouched; the edit survives subsequent reconciles of the
// event's source while its record is still present upstream.
func (tl *Timeline) Reschedule(id string, ts time.Time) (Event, error) {
	evt, ok := tl.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	evt.Timestamp = ts
	tl.mutation(id).timestamp = &ts
	return *evt, nil
}

// ToggleImportant flips an event's importance marker.
func (tl *Timeline) ToggleImportant(id string) (Event, error) {
	evt, ok := tl.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	evt.Important = !evt.Important
	important := evt.Important
	tl.mutation(id).important = &important
	return *evt, nil
}

func (tl *Timeline) mutation(id string) *localMutation {
	mut, ok := tl.local[id]
	if !ok {
		mut = &localMutation{}
		tl.local[id] = mut
	}
	return mut
}

func (tl *Timeline) Get(id string) (Event, bool) {
	if evt, ok := tl.events[id]; ok {
		return *evt, true
	}
	return Event{}, false
}

func (tl *Timeline) Len() int {
	return len(tl.events)
}

// Events returns the timeline ordered by timestamp ascending, ties broken by
// lexical ID order for determinism. An optional kind filter restricts the
// result ("" and "all" match everything).
func (tl *Timeline) Events(filter ...string) []Event {
	var kind string
	if len(filter) > 0 {
		kind = filter[0]
	}

	events := make([]Event, 0, len(tl.events))
	for _, evt := range tl.events {
		if matchesFilter(evt.Kind, kind) {
			events = append(events, *evt)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].ID < events[j].ID
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}
