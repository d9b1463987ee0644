package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryCoursesByFaculty(_ context.Context, facultyID string) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if crs.FacultyID == facultyID {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryAssignmentsByCourse(_ context.Context, courseIDs ...string) ([]course.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := idSet(courseIDs)
	assignments := make([]course.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if wanted[a.CourseID] {
			assignments = append(assignments, *a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (repo *courseRepository) QueryContentByCourse(_ context.Context, courseIDs ...string) ([]course.Content, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := idSet(courseIDs)
	contents := make([]course.Content, 0, len(repo.db.contents))
	for _, c := range repo.db.contents {
		if wanted[c.CourseID] {
			contents = append(contents, *c)
		}
	}
	sort.Slice(contents, func(i, j int) bool { return contents[i].ID < contents[j].ID })
	return contents, nil
}

func (repo *courseRepository) QueryLecturesByCourse(_ context.Context, courseIDs ...string) ([]course.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := idSet(courseIDs)
	lectures := make([]course.Lecture, 0, len(repo.db.lectures))
	for _, l := range repo.db.lectures {
		if wanted[l.CourseID] {
			lectures = append(lectures, *l)
		}
	}
	sort.Slice(lectures, func(i, j int) bool { return lectures[i].ID < lectures[j].ID })
	return lectures, nil
}

func (repo *courseRepository) QueryActiveAlerts(_ context.Context) ([]course.Alert, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	alerts := make([]course.Alert, 0, len(repo.db.alerts))
	for _, a := range repo.db.alerts {
		alerts = append(alerts, *a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID < alerts[j].ID })
	return alerts, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
