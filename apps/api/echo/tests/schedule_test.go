package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/schedule"
	testutil "github.com/trezcool/darasa/tests"
)

func seedFacultyCatalog(t *testing.T, facultyID string, now time.Time) (assignment, content schedule.Event) {
	t.Helper()

	crs := testutil.CreateCourse(t, db, facultyID+"-crs", "Go Programming", facultyID)
	a := testutil.CreateAssignment(t, db, facultyID+"-a1", "PS1", crs.ID, now.Add(5*24*time.Hour))
	c := testutil.CreateContent(t, db, facultyID+"-c1", "Week 1 Slides", crs.ID, now.Add(2*24*time.Hour))

	assignment = schedule.Event{
		ID:          schedule.EventID(schedule.TagAssignment, a.ID),
		Title:       a.Title,
		Kind:        schedule.KindAssignment,
		Timestamp:   a.DueDate,
		CourseID:    crs.ID,
		CourseTitle: crs.Title,
	}
	content = schedule.Event{
		ID:          schedule.EventID(schedule.TagContent, c.ID),
		Title:       "Content: " + c.Name,
		Kind:        schedule.KindContent,
		Timestamp:   c.UploadDate,
		CourseID:    crs.ID,
		CourseTitle: crs.Title,
	}
	return assignment, content
}

func prepEventFor(assignment schedule.Event) schedule.Event {
	return schedule.Event{
		ID:          schedule.EventID(schedule.TagPrep, assignment.ID),
		Title:       "Prep for " + assignment.Title,
		Kind:        schedule.KindAssignment,
		Timestamp:   assignment.Timestamp.Add(-conf.Schedule.PrepLead),
		CourseID:    assignment.CourseID,
		CourseTitle: assignment.CourseTitle,
		AISuggested: true,
	}
}

func Test_scheduleApi_timeline(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	assignment, content := seedFacultyCatalog(t, "fac-tl", now)
	prep := prepEventFor(assignment)
	token := getFacultyToken(t, "fac-tl")

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/schedule/timeline",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher required", path: "/v1/schedule/timeline", token: getStudentToken(t),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/schedule/timeline", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, content, prep, assignment),
		},
		{
			name: "type=content", path: "/v1/schedule/timeline?type=content", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, content),
		},
		{
			name: "type=assignment", path: "/v1/schedule/timeline?type=assignment", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, prep, assignment),
		},
		{
			name: "type=lecture", path: "/v1/schedule/timeline?type=lecture", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_scheduleApi_notifications(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	assignment, content := seedFacultyCatalog(t, "fac-nf", now)
	prep := prepEventFor(assignment)
	token := getFacultyToken(t, "fac-nf")

	reminder := func(evt schedule.Event) schedule.Notification {
		return schedule.Notification{
			ID:      schedule.NotificationID(evt.ID),
			Message: fmt.Sprintf("Reminder: %s on %s", evt.Title, evt.Timestamp.Format(conf.TimeFormat)),
			Time:    evt.Timestamp.Add(-conf.Schedule.ReminderLead),
			EventID: evt.ID,
		}
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/schedule/notifications", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallList(t, reminder(content), reminder(prep), reminder(assignment)),
	}, rec)
}

func Test_scheduleApi_calendar(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	assignment, _ := seedFacultyCatalog(t, "fac-cal", now)
	token := getFacultyToken(t, "fac-cal")

	day := assignment.Timestamp.Format("2006-01-02")

	type calendarDay struct {
		Summary schedule.DaySummary `json:"summary"`
		Events  []schedule.Event    `json:"events"`
	}

	tests := []httpTest{
		{
			name: "date required", path: "/v1/schedule/calendar", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"date": "this field is required"}),
		},
		{
			name: "bad date", path: "/v1/schedule/calendar?date=sometime", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"date": "must be a YYYY-MM-DD date"}),
		},
		{
			name: "due day", path: "/v1/schedule/calendar?date=" + day, token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, calendarDay{
				Summary: schedule.DaySummary{Date: day, Count: 1, ByKind: map[string]int{schedule.KindAssignment: 1}},
				Events:  []schedule.Event{assignment},
			}),
		},
		{
			name: "empty day", path: "/v1/schedule/calendar?date=1999-01-01", token: token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, calendarDay{
				Summary: schedule.DaySummary{Date: "1999-01-01"},
				Events:  []schedule.Event{},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_scheduleApi_createEvent(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	seedFacultyCatalog(t, "fac-new", now)
	token := getFacultyToken(t, "fac-new")

	t.Run("validation", func(t *testing.T) {
		tests := []httpTest{
			{
				name: "empty body",
				body: marchallObj(t, schedule.NewEvent{}),
				wantData: marchallObj(t, map[string]string{
					"title":     "this field is required",
					"kind":      "this field is required",
					"timestamp": "this field is required",
				}),
			},
			{
				name: "unknown kind",
				body: marchallObj(t, schedule.NewEvent{Title: "T", Kind: "party", Timestamp: now.Add(time.Hour)}),
				wantData: marchallObj(t, map[string]string{
					"kind": "must be one of: assignment, lecture, content, alert, custom",
				}),
			},
			{
				name: "unknown course",
				body: marchallObj(t, schedule.NewEvent{Title: "T", Kind: "custom", Timestamp: now.Add(time.Hour), CourseID: "nope"}),
				wantData: marchallObj(t, map[string]string{"course_id": "unknown course"}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.wantCode = http.StatusBadRequest
				req, rec := newAuthRequest(http.MethodPost, "/v1/schedule/events", token, tt.body)
				app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, schedule.NewEvent{
			Title:     "Office hours",
			Kind:      "custom",
			Timestamp: now.Add(3 * 24 * time.Hour),
			CourseID:  "fac-new-crs",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule/events", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v: %v", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var evt schedule.Event
		if err := json.Unmarshal(rec.Body.Bytes(), &evt); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if evt.Kind != schedule.KindCustom || evt.Title != "Office hours" {
			t.Errorf("event = %+v", evt)
		}
		if evt.CourseTitle != "Go Programming" {
			t.Errorf("CourseTitle = %v; want Go Programming", evt.CourseTitle)
		}

		// it shows up on the timeline
		req, rec = newAuthRequest(http.MethodGet, "/v1/schedule/timeline?type=custom", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, evt)}, rec)
	})
}

func Test_scheduleApi_reschedule(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	assignment, _ := seedFacultyCatalog(t, "fac-rs", now)
	token := getFacultyToken(t, "fac-rs")

	moved := now.Add(6 * 24 * time.Hour)
	body := marchallObj(t, map[string]interface{}{"timestamp": moved})

	t.Run("not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/schedule/events/custom:nope/schedule", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "event not found"}),
		}, rec)
	})

	t.Run("missing timestamp", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/schedule/events/"+assignment.ID+"/schedule", token, []byte(`{}`))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"timestamp": "this field is required"}),
		}, rec)
	})

	t.Run("moved", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/schedule/events/"+assignment.ID+"/schedule", token, body)
		app.ServeHTTP(rec, req)

		want := assignment
		want.Timestamp = moved
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)

		// the edit survives a source refresh
		req, rec = newAuthRequest(http.MethodPost, "/v1/schedule/refresh", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh code = %v: %v", rec.Code, rec.Body.String())
		}
		req, rec = newAuthRequest(http.MethodGet, "/v1/schedule/timeline?type=assignment", token)
		app.ServeHTTP(rec, req)
		prep := prepEventFor(want) // prep re-derives from the rescheduled due date
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, prep, want)}, rec)
	})
}

func Test_scheduleApi_toggleImportant(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	assignment, _ := seedFacultyCatalog(t, "fac-imp", now)
	token := getFacultyToken(t, "fac-imp")

	want := assignment
	want.Important = true
	req, rec := newAuthRequest(http.MethodPost, "/v1/schedule/events/"+assignment.ID+"/important", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)

	// toggling twice lands back where it started
	req, rec = newAuthRequest(http.MethodPost, "/v1/schedule/events/"+assignment.ID+"/important", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, assignment)}, rec)
}

func Test_scheduleApi_view(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	assignment, content := seedFacultyCatalog(t, "fac-vw", now)
	prep := prepEventFor(assignment)
	token := getFacultyToken(t, "fac-vw")

	t.Run("defaults", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schedule/view", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, schedule.DefaultViewState()),
		}, rec)
	})

	t.Run("invalid", func(t *testing.T) {
		body := marchallObj(t, schedule.ViewState{Granularity: "fortnight"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/schedule/view", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v: %v", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("filter gates reads", func(t *testing.T) {
		body := marchallObj(t, schedule.ViewState{Granularity: "week", TypeFilter: "content"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/schedule/view", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, schedule.ViewState{Granularity: "week", TypeFilter: "content"}),
		}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/v1/schedule/timeline", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, content)}, rec)

		// an explicit filter still overrides the view
		req, rec = newAuthRequest(http.MethodGet, "/v1/schedule/timeline?type=all", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t, content, prep, assignment),
		}, rec)
	})
}

func Test_home(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "Welcome to Darasa API!" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
