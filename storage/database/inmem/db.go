package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/course"
)

// DB is a mutex-guarded in-memory rendition of the external store. The
// engine only reads from it; the Add* methods stand in for the writes the
// CRUD application performs elsewhere, and are what tests and the dev
// wiring use to seed records.
type DB struct {
	mutex       sync.RWMutex
	courses     map[string]*course.Course
	assignments map[string]*course.Assignment
	contents    map[string]*course.Content
	lectures    map[string]*course.Lecture
	alerts      map[string]*course.Alert
}

func Open() (*DB, error) {
	db := &DB{
		courses:     make(map[string]*course.Course),
		assignments: make(map[string]*course.Assignment),
		contents:    make(map[string]*course.Content),
		lectures:    make(map[string]*course.Lecture),
		alerts:      make(map[string]*course.Alert),
	}
	return db, nil
}

func (db *DB) AddCourse(crs course.Course) course.Course {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.courses[crs.ID] = &crs
	return crs
}

func (db *DB) AddAssignment(a course.Assignment) course.Assignment {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.assignments[a.ID] = &a
	return a
}

func (db *DB) AddContent(c course.Content) course.Content {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.contents[c.ID] = &c
	return c
}

func (db *DB) AddLecture(l course.Lecture) course.Lecture {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.lectures[l.ID] = &l
	return l
}

func (db *DB) AddAlert(a course.Alert) course.Alert {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.alerts[a.ID] = &a
	return a
}

func (db *DB) RemoveAssignment(id string) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	delete(db.assignments, id)
}

func (db *DB) RemoveContent(id string) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	delete(db.contents, id)
}

func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.courses = make(map[string]*course.Course)
	db.assignments = make(map[string]*course.Assignment)
	db.contents = make(map[string]*course.Content)
	db.lectures = make(map[string]*course.Lecture)
	db.alerts = make(map[string]*course.Alert)
}
