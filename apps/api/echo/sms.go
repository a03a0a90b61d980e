package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/comms"
)

type smsApi struct {
	svc      *comms.Service
	validate *validator.Validate
}

func registerSMSAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *comms.Service, validate *validator.Validate) {
	api := smsApi{svc: svc, validate: validate}

	sg := g.Group("/sms", jwt)
	sg.POST("/send", api.send)
	sg.GET("/messages", api.messages)
	sg.POST("/templates", api.createTemplate, adminMiddleware())
	sg.GET("/templates", api.queryTemplates)
	sg.PUT("/templates/:id", api.updateTemplate, adminMiddleware())
	sg.DELETE("/templates/:id", api.destroyTemplate, adminMiddleware())
}

type smsMessagesRequest struct {
	Limit int `query:"limit"`
}

func (api *smsApi) send(ctx echo.Context) error {
	var data comms.SendRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	var (
		msg comms.Message
		err error
	)
	if data.Template != "" {
		msg, err = api.svc.SendTemplate(rctx, data.Template, data.Recipient, data.Data)
	} else {
		msg, err = api.svc.Send(rctx, data.Recipient, data.Message)
	}
	if err != nil {
		return errors.Wrap(err, "sending SMS")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *smsApi) messages(ctx echo.Context) error {
	var query smsMessagesRequest
	_ = ctx.Bind(&query)
	msgs, err := api.svc.Messages(ctx.Request().Context(), query.Limit)
	if err != nil {
		return errors.Wrap(err, "querying sms messages")
	}
	if msgs == nil {
		msgs = []comms.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *smsApi) createTemplate(ctx echo.Context) error {
	var data comms.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tpl, err := api.svc.CreateTemplate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating sms template")
	}
	return ctx.JSON(http.StatusCreated, tpl)
}

func (api *smsApi) queryTemplates(ctx echo.Context) error {
	tpls, err := api.svc.QueryTemplates(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sms templates")
	}
	if tpls == nil {
		tpls = []comms.Template{}
	}
	return ctx.JSON(http.StatusOK, tpls)
}

func (api *smsApi) updateTemplate(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data comms.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tpl, err := api.svc.UpdateTemplate(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating sms template")
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *smsApi) destroyTemplate(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.DeleteTemplate(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting sms template")
	}
	return ctx.NoContent(http.StatusNoContent)
}
