package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/fee"
)

type feeApi struct {
	svc      *fee.Service
	validate *validator.Validate
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *fee.Service, validate *validator.Validate) {
	api := feeApi{svc: svc, validate: validate}

	fg := g.Group("/fees", jwt)
	fg.POST("", api.create, adminMiddleware())
	fg.GET("", api.query)
	fg.PUT("/:id", api.update, adminMiddleware())
	fg.DELETE("/:id", api.destroy, adminMiddleware())
}

type feeQueryRequest struct {
	AcademicYear string `query:"academic_year"`
	Term         string `query:"term"`
	Level        string `query:"level"`
}

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.CreateAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating fee assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *feeApi) query(ctx echo.Context) error {
	var query feeQueryRequest
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []fee.Assignment{})
	}
	assignments, err := api.svc.QueryAssignments(ctx.Request().Context(), query.AcademicYear, query.Term, query.Level)
	if err != nil {
		return errors.Wrap(err, "querying fee assignments")
	}
	if assignments == nil {
		assignments = []fee.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *feeApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data fee.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.UpdateAssignment(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating fee assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *feeApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.DeleteAssignment(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting fee assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
