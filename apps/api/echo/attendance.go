package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

var todayFunc = func() string { return time.Now().Format("2006-01-02") } // mockable

type attendanceAPI struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceAPI{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.sheet)
	ag.GET("/stats", api.stats)
	ag.GET("/periods", api.periods)
	ag.PUT("/marks", api.setStatus, staffMiddleware())
}

func queryFilter(ctx echo.Context) attendance.QueryFilter {
	return attendance.QueryFilter{
		Search:  ctx.QueryParam("search"),
		Grade:   ctx.QueryParam("grade"),
		Section: ctx.QueryParam("section"),
	}
}

func queryDate(ctx echo.Context) string {
	if date := core.CleanString(ctx.QueryParam("date")); date != "" {
		return date
	}
	return todayFunc()
}

func (api attendanceAPI) sheet(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	return ctx.JSON(http.StatusOK, api.svc.Sheet(queryDate(ctx), queryFilter(ctx), actor))
}

func (api attendanceAPI) stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Stats(queryDate(ctx), queryFilter(ctx)))
}

func (api attendanceAPI) periods(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"periods": api.svc.Periods()})
}

// markResponse mirrors the persistence acknowledgement: on failure the
// working set has already been reverted and Data carries no record.
type markResponse struct {
	Success bool               `json:"success"`
	Data    *attendance.Record `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func (api attendanceAPI) setStatus(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var sc attendance.StatusChange
	if err := ctx.Bind(&sc); err != nil {
		return errors.Wrap(err, "binding status change")
	}

	res, err := api.svc.SetStatus(ctx.Request().Context(), actor, sc)
	if err != nil {
		var updErr *attendance.UpdateFailedError
		if errors.As(err, &updErr) {
			return ctx.JSON(http.StatusBadGateway, markResponse{Success: false, Error: updErr.Error()})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, markResponse{Success: true, Data: &res.Record})
}
