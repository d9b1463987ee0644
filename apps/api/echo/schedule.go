package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/schedule"
)

type scheduleApi struct {
	sessions *schedule.Manager
	validate *validator.Validate
}

func registerScheduleAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	sessions *schedule.Manager,
	validate *validator.Validate,
) {
	api := scheduleApi{
		sessions: sessions,
		validate: validate,
	}

	sg := g.Group("/schedule", jwt, teacherMiddleware())

	sg.GET("/timeline", api.timeline)
	sg.GET("/notifications", api.notifications)
	sg.GET("/calendar", api.calendar)
	sg.GET("/view", api.view)
	sg.PUT("/view", api.setView)
	sg.POST("/events", api.createEvent)
	sg.PUT("/events/:id/schedule", api.reschedule)
	sg.POST("/events/:id/important", api.toggleImportant)
	sg.POST("/refresh", api.refresh)
}

// session resolves the acting faculty member's schedule session.
func (api *scheduleApi) session(ctx echo.Context) (*schedule.Service, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting context claims")
	}
	svc, err := api.sessions.Session(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "getting schedule session")
	}
	return svc, nil
}

// Handlers

func (api *scheduleApi) timeline(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, svc.Timeline(ctx.QueryParam("type")))
}

func (api *scheduleApi) notifications(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, svc.Notifications())
}

func (api *scheduleApi) calendar(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}

	date, err := bindDateParam(ctx)
	if err != nil {
		return err
	}
	filter := ctx.QueryParam("type")

	return ctx.JSON(http.StatusOK, CalendarDayResponse{
		Summary: svc.Summarize(date, filter),
		Events:  svc.EventsOn(date, filter),
	})
}

func (api *scheduleApi) view(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, svc.View())
}

func (api *scheduleApi) setView(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data schedule.ViewState
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ViewState")
	}
	vs, err := svc.SetView(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, vs)
}

func (api *scheduleApi) createEvent(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data schedule.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	evt, err := svc.CreateEvent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *scheduleApi) reschedule(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data RescheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RescheduleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := svc.Reschedule(ctx.Param("id"), data.Timestamp)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *scheduleApi) toggleImportant(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}

	evt, err := svc.ToggleImportant(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *scheduleApi) refresh(ctx echo.Context) error {
	svc, err := api.session(ctx)
	if err != nil {
		return err
	}
	if err := svc.Refresh(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "refreshing sources")
	}
	return ctx.JSON(http.StatusOK, svc.Timeline(""))
}

func bindDateParam(ctx echo.Context) (time.Time, error) {
	raw := ctx.QueryParam("date")
	if raw == "" {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a YYYY-MM-DD date"})
	}
	return date, nil
}

type (
	RescheduleRequest struct {
		Timestamp time.Time `json:"timestamp" validate:"required"`
	}

	CalendarDayResponse struct {
		Summary schedule.DaySummary `json:"summary"`
		Events  []schedule.Event    `json:"events"`
	}
)

func (rr *RescheduleRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
