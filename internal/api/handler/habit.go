package handler

import (
	"strconv"

	"karmabot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupHabit struct {
	container *do.Injector
}

func (gr *groupHabit) Register(g *echo.Group) {
	g.GET("", gr.List)
	g.POST("", gr.Create)
	g.POST("/:id/track", gr.Track)
	g.DELETE("/:id", gr.Delete)
}

func habitID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Validation)
	}
	return id, nil
}

func (gr *groupHabit) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceHabit, err := do.Invoke[*services.ServiceHabit](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	habits, err := serviceHabit.List(ctx, user.ID)
	return httpx.RestAbort(c, habits, err)
}

func (gr *groupHabit) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var body struct {
		Name   string `json:"name"`
		Target int    `json:"target"`
	}
	if err := c.Bind(&body); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceHabit, err := do.Invoke[*services.ServiceHabit](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	habit, err := serviceHabit.Create(ctx, user.ID, body.Name, body.Target)
	return httpx.RestAbort(c, habit, err)
}

func (gr *groupHabit) Track(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	id, err := habitID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceHabit, err := do.Invoke[*services.ServiceHabit](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	habit, completed, err := serviceHabit.Track(ctx, user.ID, id)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"habit":     habit,
		"completed": completed,
	}, nil)
}

func (gr *groupHabit) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	id, err := habitID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceHabit, err := do.Invoke[*services.ServiceHabit](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceHabit.Delete(ctx, user.ID, id)
	return httpx.RestAbort(c, nil, err)
}
