package course

import "time"

// Course is a teaching unit owned by one faculty member. Courses are the
// tenancy boundary: the schedule engine only ever sees records attached to
// the acting faculty member's courses.
type Course struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	FacultyID string `json:"faculty_id"`
}

// Submission is a student's answer to an Assignment. Only carried through
// for completeness of the upstream record shape; the engine ignores it.
type Submission struct {
	StudentID   string    `json:"student_id"`
	Grade       *int      `json:"grade,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Assignment struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	CourseID    string       `json:"course_id"`
	DueDate     time.Time    `json:"due_date"` // UTC
	Submissions []Submission `json:"submissions,omitempty"`
}

type Content struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CourseID   string    `json:"course_id"`
	UploadDate time.Time `json:"upload_date"` // UTC
}

// Alert is a system-wide or admin-issued announcement; it has no course
// association.
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Scope     string    `json:"scope"` // e.g. "system", "faculty"
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Lecture is a (possibly recurring) lecture slot definition.
// Recurrence is either empty (one-shot), a simple tag (daily, weekly,
// monthly) or a full RRULE string.
type Lecture struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CourseID   string    `json:"course_id"`
	StartTime  time.Time `json:"start_time"` // first occurrence, UTC
	Recurrence string    `json:"recurrence,omitempty"`
}
