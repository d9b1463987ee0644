package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

// Service owns the timeline of one faculty member's dashboard session and
// keeps the derived state (notifications, calendar index) consistent with
// it. Source refreshes and user mutations are serialized: derived state is
// recomputed synchronously inside every mutation, so a caller never observes
// a timeline whose notifications or calendar disagree with its events.
type Service struct {
	facultyID string
	catalog   *course.Service
	texts     core.TextService
	logger    core.Logger
	validate  *validator.Validate
	conf      core.ScheduleConfig
	timeFmt   string
	now       func() time.Time // swapped in tests

	mu       sync.Mutex
	timeline *Timeline
	nextSeq  map[string]uint64
	view     ViewState
	notifs   []Notification
	cal      *Calendar
}

func NewService(
	facultyID string,
	catalog *course.Service,
	texts core.TextService,
	logger core.Logger,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	svc := &Service{
		facultyID: facultyID,
		catalog:   catalog,
		texts:     texts,
		logger:    logger,
		validate:  validate,
		conf:      conf.Schedule,
		timeFmt:   conf.TimeFormat,
		now:       time.Now,
		timeline:  NewTimeline(),
		nextSeq:   make(map[string]uint64),
		view:      DefaultViewState(),
	}
	svc.recompute()
	return svc
}

func (svc *Service) FacultyID() string { return svc.facultyID }

// Refresh re-runs every source adapter against the external store and
// reconciles the results. A failed source is skipped with a warning, leaving
// its previously reconciled batch in place: stale-but-consistent beats
// absent-and-broken. Sequence numbers are reserved before fetching so that a
// slow refresh overtaken by a newer one gets its batches discarded.
func (svc *Service) Refresh(ctx context.Context) error {
	seqs := svc.reserveSeqs()
	now := svc.now().UTC()

	courses, err := svc.catalog.CoursesByFaculty(ctx, svc.facultyID)
	if err != nil {
		// without the course set there is no tenancy boundary to adapt
		// against; abort wholesale, prior state stays intact
		return errors.Wrap(err, "querying faculty courses")
	}
	courseIDs := make([]string, 0, len(courses))
	for _, crs := range courses {
		courseIDs = append(courseIDs, crs.ID)
	}

	batches := make(map[string][]Event, len(SourceTags))
	if assignments, err := svc.catalog.AssignmentsByCourse(ctx, courseIDs...); err != nil {
		svc.logger.Warn("assignment source failed, keeping previous batch", err)
	} else {
		batches[TagAssignment] = AssignmentEvents(assignments, courses, svc.logger)
	}
	if contents, err := svc.catalog.ContentByCourse(ctx, courseIDs...); err != nil {
		svc.logger.Warn("content source failed, keeping previous batch", err)
	} else {
		batches[TagContent] = ContentEvents(contents, courses, svc.logger)
	}
	if lectures, err := svc.catalog.LecturesByCourse(ctx, courseIDs...); err != nil {
		svc.logger.Warn("lecture source failed, keeping previous batch", err)
	} else {
		batches[TagLecture] = LectureEvents(lectures, courses, now, svc.logger)
	}
	if alerts, err := svc.catalog.ActiveAlerts(ctx); err != nil {
		svc.logger.Warn("alert source failed, keeping previous batch", err)
	} else {
		batches[TagAlert] = AlertEvents(alerts, svc.logger)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	for _, tag := range SourceTags {
		batch, ok := batches[tag]
		if !ok {
			continue
		}
		if err := svc.timeline.Reconcile(tag, seqs[tag], batch); err != nil {
			svc.logger.Info(fmt.Sprintf("%s batch discarded: %v", tag, err))
		}
	}

	// prep reminders derive from the assignment events that just landed
	prep := PrepEvents(ctx, svc.timeline.Events(KindAssignment), now, svc.conf.PrepLead, svc.texts, svc.logger)
	if err := svc.timeline.Reconcile(TagPrep, seqs[TagPrep], prep); err != nil {
		svc.logger.Info(fmt.Sprintf("%s batch discarded: %v", TagPrep, err))
	}

	svc.recompute()
	return nil
}

func (svc *Service) reserveSeqs() map[string]uint64 {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	seqs := make(map[string]uint64, len(SourceTags)+1)
	for _, tag := range append(append([]string{}, SourceTags...), TagPrep) {
		svc.nextSeq[tag]++
		seqs[tag] = svc.nextSeq[tag]
	}
	return seqs
}

// CreateEvent validates a draft and inserts it as a user event with a fresh
// "custom:"-prefixed ID.
func (svc *Service) CreateEvent(ctx context.Context, ne NewEvent) (Event, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Event{}, err
	}

	evt := Event{
		ID:        EventID(TagCustom, uuid.New().String()),
		Title:     ne.Title,
		Kind:      ne.Kind,
		Timestamp: ne.Timestamp.UTC(),
	}
	if ne.CourseID != "" {
		crs, err := svc.catalog.GetByID(ctx, ne.CourseID)
		if err != nil {
			if errors.Cause(err) == course.ErrNotFound {
				return Event{}, core.NewValidationError(err, core.FieldError{Field: "course_id", Error: "unknown course"})
			}
			return Event{}, errors.Wrap(err, "resolving course")
		}
		evt.CourseID = crs.ID
		evt.CourseTitle = crs.Title
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if err := svc.timeline.Add(evt); err != nil {
		return Event{}, err
	}
	svc.recompute()
	return evt, nil
}

// Reschedule moves an event to a new timestamp and recomputes everything
// derived from it.
func (svc *Service) Reschedule(id string, ts time.Time) (Event, error) {
	if ts.IsZero() {
		return Event{}, core.NewValidationError(nil, core.FieldError{Field: "timestamp", Error: "this field is required"})
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	evt, err := svc.timeline.Reschedule(id, ts.UTC())
	if err != nil {
		return Event{}, err
	}
	svc.recompute()
	return evt, nil
}

func (svc *Service) ToggleImportant(id string) (Event, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	evt, err := svc.timeline.ToggleImportant(id)
	if err != nil {
		return Event{}, err
	}
	svc.recompute()
	return evt, nil
}

// Timeline returns the ordered event list. An empty filter falls back to
// the session's view-state type filter.
func (svc *Service) Timeline(filter string) []Event {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.timeline.Events(svc.effectiveFilter(filter))
}

// Notifications returns the active notification set, gated by the view-state
// type filter.
func (svc *Service) Notifications() []Notification {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	filter := svc.view.TypeFilter
	notifs := make([]Notification, 0, len(svc.notifs))
	for _, n := range svc.notifs {
		if evt, ok := svc.timeline.Get(n.EventID); ok && matchesFilter(evt.Kind, filter) {
			notifs = append(notifs, n)
		}
	}
	return notifs
}

// EventsOn returns the events falling on the given calendar date. An empty
// filter falls back to the view-state type filter.
func (svc *Service) EventsOn(date time.Time, filter string) []Event {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.cal.EventsOn(date, svc.effectiveFilter(filter))
}

func (svc *Service) HasEventsOn(date time.Time) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.cal.HasEvents(date)
}

func (svc *Service) Summarize(date time.Time, filter string) DaySummary {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.cal.Summarize(date, svc.effectiveFilter(filter))
}

func (svc *Service) View() ViewState {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.view
}

// SetView updates the display configuration; empty fields keep their current
// value. The timeline itself is never touched.
func (svc *Service) SetView(vs ViewState) (ViewState, error) {
	if err := vs.Validate(svc.validate); err != nil {
		return ViewState{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if vs.Granularity != "" {
		svc.view.Granularity = vs.Granularity
	}
	if vs.TypeFilter != "" {
		svc.view.TypeFilter = vs.TypeFilter
	}
	return svc.view, nil
}

// recompute rebuilds all derived state. Callers must hold svc.mu (except
// NewService, before the Service escapes).
func (svc *Service) recompute() {
	events := svc.timeline.Events()
	svc.notifs = DeriveNotifications(events, svc.now().UTC(), svc.conf.LookaheadWindow, svc.conf.ReminderLead, svc.timeFmt)
	svc.cal = ProjectCalendar(events)
}

func (svc *Service) effectiveFilter(filter string) string {
	if filter == "" {
		return svc.view.TypeFilter
	}
	return filter
}
