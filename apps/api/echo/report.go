package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/collections", api.collections)
	rg.GET("/outstanding", api.outstanding)
	rg.GET("/wallet", api.wallet)
}

type periodQueryRequest struct {
	AcademicYear string `query:"academic_year"`
	Term         string `query:"term"`
}

type collectionsQueryRequest struct {
	AcademicYear string `query:"academic_year"`
	Term         string `query:"term"`
	Method       string `query:"method"`
	FeeType      string `query:"fee_type"`
	PaidFrom     string `query:"paid_from"` // YYYY-MM-DD
	PaidTo       string `query:"paid_to"`   // YYYY-MM-DD
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	var query periodQueryRequest
	_ = ctx.Bind(&query)
	dash, err := api.svc.Dashboard(ctx.Request().Context(), query.AcademicYear, query.Term)
	if err != nil {
		return errors.Wrap(err, "building dashboard report")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) collections(ctx echo.Context) error {
	var query collectionsQueryRequest
	_ = ctx.Bind(&query)

	filter := fee.QueryFilter{
		AcademicYear: query.AcademicYear,
		Term:         query.Term,
		Method:       query.Method,
		FeeType:      query.FeeType,
	}
	if query.PaidFrom != "" {
		t, err := time.Parse("2006-01-02", query.PaidFrom)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "paid_from must be YYYY-MM-DD")
		}
		filter.PaidFrom = t
	}
	if query.PaidTo != "" {
		t, err := time.Parse("2006-01-02", query.PaidTo)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "paid_to must be YYYY-MM-DD")
		}
		filter.PaidTo = t.Add(24*time.Hour - time.Nanosecond)
	}

	col, err := api.svc.Collections(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building collections report")
	}
	return ctx.JSON(http.StatusOK, col)
}

func (api *reportApi) outstanding(ctx echo.Context) error {
	var query periodQueryRequest
	_ = ctx.Bind(&query)
	rows, err := api.svc.OutstandingByClass(ctx.Request().Context(), query.AcademicYear, query.Term)
	if err != nil {
		return errors.Wrap(err, "building outstanding report")
	}
	if rows == nil {
		rows = []report.ClassOutstanding{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) wallet(ctx echo.Context) error {
	sum, err := api.svc.WalletSummary(ctx.Request().Context(), 0)
	if err != nil {
		return errors.Wrap(err, "building wallet report")
	}
	return ctx.JSON(http.StatusOK, sum)
}
