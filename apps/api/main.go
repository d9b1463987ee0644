package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/schedule"
	logsvc "github.com/trezcool/darasa/services/logger"
	textgensvc "github.com/trezcool/darasa/services/textgen"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up the catalog store
	repo, cleanup, err := setUpCatalog(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up catalog store: %v", err), err)
	}
	defer func() {
		if err = cleanup(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	catalogSvc := course.NewService(repo)
	textSvc := textgensvc.NewStaticService()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	sessions := schedule.NewManager(
		func(facultyID string) *schedule.Service {
			return schedule.NewService(facultyID, catalogSvc, textSvc, logger, validate, conf)
		},
		logger,
	)

	// =========================================================================
	// Start Source Refresher
	//
	// Active sessions are periodically re-synced against the external store so
	// notifications stay fresh between faculty requests.

	refresher := cron.New()
	if _, err = refresher.AddFunc(conf.Schedule.RefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		sessions.RefreshAll(ctx)
	}); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling source refresher: %v", err), err)
	}
	refresher.Start()
	defer refresher.Stop()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Sessions:   sessions,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpCatalog opens the read-only catalog store. With no engine configured a
// seeded in-memory store backs local development.
func setUpCatalog(conf *core.Config) (course.Repository, func() error, error) {
	if conf.Database.Engine == "" {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		seedDemoCatalog(db)
		return inmemdb.NewCourseRepository(db), func() error { return nil }, nil
	}

	db, err := sqlxrepos.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	return sqlxrepos.NewCourseRepository(db), db.Close, nil
}

// seedDemoCatalog loads a small faculty catalog so the API is usable out of
// the box in DEV.
func seedDemoCatalog(db *inmemdb.DB) {
	now := time.Now().UTC()

	cs101 := db.AddCourse(course.Course{ID: "cs101", Title: "Intro to Computer Science", FacultyID: "fac-1"})
	ma201 := db.AddCourse(course.Course{ID: "ma201", Title: "Linear Algebra", FacultyID: "fac-1"})

	db.AddAssignment(course.Assignment{
		ID:       "a1",
		Title:    "Problem Set 1",
		CourseID: cs101.ID,
		DueDate:  now.Add(3 * 24 * time.Hour),
	})
	db.AddAssignment(course.Assignment{
		ID:       "a2",
		Title:    "Midterm Project",
		CourseID: ma201.ID,
		DueDate:  now.Add(6 * 24 * time.Hour),
	})
	db.AddContent(course.Content{
		ID:         "c1",
		Name:       "Week 1 Slides",
		CourseID:   cs101.ID,
		UploadDate: now.Add(24 * time.Hour),
	})
	db.AddLecture(course.Lecture{
		ID:         "l1",
		Title:      "Lecture: Algorithms",
		CourseID:   cs101.ID,
		StartTime:  now.Add(2 * 24 * time.Hour),
		Recurrence: "weekly",
	})
	db.AddAlert(course.Alert{
		ID:        "al1",
		Message:   "Grade submission deadline approaching",
		Scope:     "faculty",
		CreatedAt: now,
	})
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
