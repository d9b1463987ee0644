package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

// flakyCourseRepo fails the course query on demand.
type flakyCourseRepo struct {
	course.Repository
	fail bool
}

func (r *flakyCourseRepo) QueryCoursesByFaculty(ctx context.Context, facultyID string) ([]course.Course, error) {
	if r.fail {
		return nil, errors.New("store down")
	}
	return r.Repository.QueryCoursesByFaculty(ctx, facultyID)
}

func TestManagerSession(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	testutil.CreateCourse(t, db, "cs101", "Intro to CS", "fac-1")
	testutil.CreateAssignment(t, db, "a1", "PS1", "cs101", time.Now().UTC().Add(3*24*time.Hour))

	repo := &flakyCourseRepo{Repository: inmemdb.NewCourseRepository(db)}
	logger := testutil.NewLogger()
	validate := newTestValidator()
	conf := testConfig()

	mgr := NewManager(func(facultyID string) *Service {
		return NewService(facultyID, course.NewService(repo), &fakeTextService{}, logger, validate, conf)
	}, logger)
	ctx := context.Background()

	t.Run("priming failure is retried", func(t *testing.T) {
		repo.fail = true
		if _, err := mgr.Session(ctx, "fac-1"); err == nil {
			t.Fatal("Session() error = nil, want priming error")
		}

		// the failed prime must not leave an empty session behind
		repo.fail = false
		svc, err := mgr.Session(ctx, "fac-1")
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}
		if events := svc.Timeline(""); len(events) == 0 {
			t.Error("Timeline() empty, want a primed session")
		}
	})

	t.Run("sessions are reused", func(t *testing.T) {
		first, err := mgr.Session(ctx, "fac-1")
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}
		second, err := mgr.Session(ctx, "fac-1")
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}
		if first != second {
			t.Error("Session() created a second session for the same faculty member")
		}
	})
}
