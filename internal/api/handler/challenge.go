package handler

import (
	"strconv"

	"karmabot/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupChallenge struct {
	container *do.Injector
}

func (gr *groupChallenge) Register(g *echo.Group) {
	g.GET("", gr.Public)
	g.GET("/mine", gr.Mine)
	g.GET("/:id", gr.Details)
	g.POST("/draft", gr.StartDraft)
	g.POST("/draft/advance", gr.AdvanceDraft)
	g.POST("/:id/join", gr.Join)
	g.POST("/:id/leave", gr.Leave)
	g.POST("/:id/progress", gr.Progress)
	g.POST("/:id/finish", gr.Finish)
}

func challengeID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Validation)
	}
	return id, nil
}

func (gr *groupChallenge) Public(c echo.Context) error {
	ctx := c.Request().Context()

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	challenges, err := serviceChallenge.PublicChallenges(ctx)
	return httpx.RestAbort(c, challenges, err)
}

func (gr *groupChallenge) Mine(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	challenges, err := serviceChallenge.MyChallenges(ctx, user.ID)
	return httpx.RestAbort(c, challenges, err)
}

func (gr *groupChallenge) Details(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := challengeID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	challenge, err := serviceChallenge.Details(ctx, id)
	return httpx.RestAbort(c, challenge, err)
}

func (gr *groupChallenge) StartDraft(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	draft, err := serviceChallenge.StartDraft(ctx, user)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"draft":  draft,
		"prompt": draft.Prompt(),
	}, nil)
}

func (gr *groupChallenge) AdvanceDraft(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var body struct {
		Input string `json:"input"`
	}
	if err := c.Bind(&body); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	draft, challenge, err := serviceChallenge.AdvanceDraft(ctx, user, body.Input)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"draft":     draft,
		"prompt":    draft.Prompt(),
		"challenge": challenge,
	}, nil)
}

func (gr *groupChallenge) Join(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	id, err := challengeID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	participant, err := serviceChallenge.Join(ctx, user, id)
	return httpx.RestAbort(c, participant, err)
}

func (gr *groupChallenge) Leave(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	id, err := challengeID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	err = serviceChallenge.Leave(ctx, user, id)
	return httpx.RestAbort(c, nil, err)
}

func (gr *groupChallenge) Progress(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	id, err := challengeID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	progress, finished, err := serviceChallenge.IncrementProgress(ctx, user, id)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"progress": progress,
		"finished": finished,
	}, nil)
}

func (gr *groupChallenge) Finish(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	id, err := challengeID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceChallenge, err := do.Invoke[*services.ServiceChallenge](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	challenge, err := serviceChallenge.FinishByCreator(ctx, user, id)
	return httpx.RestAbort(c, challenge, err)
}
