package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aula/core/forum"
)

type forumApi struct {
	svc      *forum.Service
	validate *validator.Validate
}

func registerForumAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *forum.Service, validate *validator.Validate) {
	api := forumApi{svc: svc, validate: validate}

	fg := g.Group("/forum", authed...)
	fg.GET("/subjects", api.subjects)
	fg.GET("/messages", api.thread)
	fg.POST("/messages", api.send)
}

// Handlers

func (api *forumApi) subjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *forumApi) thread(ctx echo.Context) error {
	msgs, err := api.svc.Thread(ctx.Request().Context(), ctx.QueryParam("subject"))
	if err != nil {
		return errors.Wrap(err, "getting thread")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *forumApi) send(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data forum.NewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.Send(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}
