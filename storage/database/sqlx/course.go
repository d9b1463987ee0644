package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	FacultyID string `db:"faculty_id"`
}

func (repo *courseRepository) QueryCoursesByFaculty(ctx context.Context, facultyID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, title, faculty_id FROM course WHERE faculty_id = $1 ORDER BY id`, facultyID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, course.Course(row))
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, title, faculty_id FROM course WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "querying course by id")
	}
	return course.Course(row), nil
}

func (repo *courseRepository) QueryAssignmentsByCourse(ctx context.Context, courseIDs ...string) ([]course.Assignment, error) {
	type row struct {
		ID       string    `db:"id"`
		Title    string    `db:"title"`
		CourseID string    `db:"course_id"`
		DueDate  time.Time `db:"due_date"`
	}
	var rows []row
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, title, course_id, due_date FROM assignment WHERE course_id = ANY($1) ORDER BY id`,
		pq.Array(courseIDs))
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	assignments := make([]course.Assignment, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, course.Assignment{ID: r.ID, Title: r.Title, CourseID: r.CourseID, DueDate: r.DueDate})
		ids = append(ids, r.ID)
	}

	if err = repo.attachSubmissions(ctx, assignments, ids); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (repo *courseRepository) attachSubmissions(ctx context.Context, assignments []course.Assignment, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	type row struct {
		AssignmentID string        `db:"assignment_id"`
		StudentID    string        `db:"student_id"`
		Grade        sql.NullInt64 `db:"grade"`
		SubmittedAt  time.Time     `db:"submitted_at"`
	}
	var rows []row
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT assignment_id, student_id, grade, submitted_at FROM submission WHERE assignment_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}

	byAssignment := make(map[string][]course.Submission, len(rows))
	for _, r := range rows {
		sub := course.Submission{StudentID: r.StudentID, SubmittedAt: r.SubmittedAt}
		if r.Grade.Valid {
			grade := int(r.Grade.Int64)
			sub.Grade = &grade
		}
		byAssignment[r.AssignmentID] = append(byAssignment[r.AssignmentID], sub)
	}
	for i := range assignments {
		assignments[i].Submissions = byAssignment[assignments[i].ID]
	}
	return nil
}

func (repo *courseRepository) QueryContentByCourse(ctx context.Context, courseIDs ...string) ([]course.Content, error) {
	type row struct {
		ID         string    `db:"id"`
		Name       string    `db:"name"`
		CourseID   string    `db:"course_id"`
		UploadDate time.Time `db:"upload_date"`
	}
	var rows []row
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, name, course_id, upload_date FROM content WHERE course_id = ANY($1) ORDER BY id`,
		pq.Array(courseIDs))
	if err != nil {
		return nil, errors.Wrap(err, "querying content")
	}

	contents := make([]course.Content, 0, len(rows))
	for _, r := range rows {
		contents = append(contents, course.Content(r))
	}
	return contents, nil
}

func (repo *courseRepository) QueryLecturesByCourse(ctx context.Context, courseIDs ...string) ([]course.Lecture, error) {
	type row struct {
		ID         string         `db:"id"`
		Title      string         `db:"title"`
		CourseID   string         `db:"course_id"`
		StartTime  time.Time      `db:"start_time"`
		Recurrence sql.NullString `db:"recurrence"`
	}
	var rows []row
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, title, course_id, start_time, recurrence FROM lecture WHERE course_id = ANY($1) ORDER BY id`,
		pq.Array(courseIDs))
	if err != nil {
		return nil, errors.Wrap(err, "querying lectures")
	}

	lectures := make([]course.Lecture, 0, len(rows))
	for _, r := range rows {
		lectures = append(lectures, course.Lecture{
			ID:         r.ID,
			Title:      r.Title,
			CourseID:   r.CourseID,
			StartTime:  r.StartTime,
			Recurrence: r.Recurrence.String,
		})
	}
	return lectures, nil
}

func (repo *courseRepository) QueryActiveAlerts(ctx context.Context) ([]course.Alert, error) {
	type row struct {
		ID        string    `db:"id"`
		Message   string    `db:"message"`
		Scope     string    `db:"scope"`
		CreatedAt time.Time `db:"created_at"`
	}
	var rows []row
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, message, scope, created_at FROM alert WHERE active ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}

	alerts := make([]course.Alert, 0, len(rows))
	for _, r := range rows {
		alerts = append(alerts, course.Alert(r))
	}
	return alerts, nil
}
