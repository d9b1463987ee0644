package course

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
)

type (
	// Repository is the read side of the external store. Writes happen
	// elsewhere (the CRUD application owns durable records); the schedule
	// engine only ever queries.
	Repository interface {
		QueryCoursesByFaculty(ctx context.Context, facultyID string) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryAssignmentsByCourse(ctx context.Context, courseIDs ...string) ([]Assignment, error)
		QueryContentByCourse(ctx context.Context, courseIDs ...string) ([]Content, error)
		QueryLecturesByCourse(ctx context.Context, courseIDs ...string) ([]Lecture, error)
		QueryActiveAlerts(ctx context.Context) ([]Alert, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CoursesByFaculty(ctx context.Context, facultyID string) ([]Course, error) {
	return svc.repo.QueryCoursesByFaculty(ctx, facultyID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) AssignmentsByCourse(ctx context.Context, courseIDs ...string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourse(ctx, courseIDs...)
}

func (svc *Service) ContentByCourse(ctx context.Context, courseIDs ...string) ([]Content, error) {
	return svc.repo.QueryContentByCourse(ctx, courseIDs...)
}

func (svc *Service) LecturesByCourse(ctx context.Context, courseIDs ...string) ([]Lecture, error) {
	return svc.repo.QueryLecturesByCourse(ctx, courseIDs...)
}

func (svc *Service) ActiveAlerts(ctx context.Context) ([]Alert, error) {
	return svc.repo.QueryActiveAlerts(ctx)
}
