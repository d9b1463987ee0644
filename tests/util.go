package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/course"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

func CreateCourse(t *testing.T, db *inmemdb.DB, id, title, facultyID string) course.Course {
	t.Helper()
	return db.AddCourse(course.Course{ID: id, Title: title, FacultyID: facultyID})
}

func CreateAssignment(t *testing.T, db *inmemdb.DB, id, title, courseID string, due time.Time) course.Assignment {
	t.Helper()
	return db.AddAssignment(course.Assignment{ID: id, Title: title, CourseID: courseID, DueDate: due.UTC()})
}

func CreateContent(t *testing.T, db *inmemdb.DB, id, name, courseID string, uploaded time.Time) course.Content {
	t.Helper()
	return db.AddContent(course.Content{ID: id, Name: name, CourseID: courseID, UploadDate: uploaded.UTC()})
}

func CreateLecture(t *testing.T, db *inmemdb.DB, id, title, courseID string, start time.Time, recurrence string) course.Lecture {
	t.Helper()
	return db.AddLecture(course.Lecture{ID: id, Title: title, CourseID: courseID, StartTime: start.UTC(), Recurrence: recurrence})
}

func CreateAlert(t *testing.T, db *inmemdb.DB, id, msg, scope string, createdAt time.Time) course.Alert {
	t.Helper()
	return db.AddAlert(course.Alert{ID: id, Message: msg, Scope: scope, CreatedAt: createdAt.UTC()})
}

// Logger implements core.Logger, recording entries for assertions.
type Logger struct {
	mutex   sync.Mutex
	entries []string
}

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) record(level, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *Logger) Entries() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	entries := make([]string, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *Logger) Enable(enabled bool) {}
func (l *Logger) Debug(msg string, args ...interface{}) { l.record("DEBUG", msg) }
func (l *Logger) Info(msg string, args ...interface{})  { l.record("INFO", msg) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.record("WARN", msg) }
func (l *Logger) Error(msg string, args ...interface{}) { l.record("ERROR", msg) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.record("FATAL", msg)
	panic(fmt.Sprintf("fatal: %s", msg))
}
